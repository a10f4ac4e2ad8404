package cars

import (
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/enums"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:cars_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Car{}); err != nil {
		t.Fatalf("migrate cars: %v", err)
	}
	return conn
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cars-test", Output: io.Discard})
}

func mustCreateTestCar(t *testing.T, conn *gorm.DB, id string, quantity int) *models.Car {
	t.Helper()
	car := &models.Car{
		CarID:           id,
		Brand:           "Toyota",
		Model:           "Corolla",
		Year:            2022,
		EngineType:      enums.EngineTypeGasoline,
		Price:           decimal.NewFromInt(21500),
		QuantityInStock: quantity,
		Status:          enums.CarStatusAvailable,
		ReorderPoint:    2,
	}
	if err := conn.Create(car).Error; err != nil {
		t.Fatalf("create car: %v", err)
	}
	return car
}

func uniqueCarID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}
