package cron

import (
	"context"
	"testing"
)

type namedJob struct {
	name string
}

func (j *namedJob) Name() string              { return j.name }
func (j *namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	expiry := &namedJob{name: "reservation-expiry"}
	snapshot := &namedJob{name: "metrics-snapshot"}
	registry := NewRegistry(expiry)
	registry.Register(snapshot)
	registry.Register(nil)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != expiry || jobs[1] != snapshot {
		t.Fatal("jobs returned out of order")
	}

	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatal("Jobs must return a copy")
	}
}
