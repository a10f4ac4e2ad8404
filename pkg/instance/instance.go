package instance

import "os"

// GetID identifies this worker process in logs. Deployments set
// WORKER_ID per replica; a single-instance default is used otherwise.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
