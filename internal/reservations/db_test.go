package reservations

import (
	"context"
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
	dsn := "file:reservations_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Car{}, &models.Reservation{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "reservations-test", Output: io.Discard})
}

func mustCreateTestCar(t *testing.T, conn *gorm.DB, id string, quantity int) *models.Car {
	t.Helper()
	car := &models.Car{
		CarID:           id,
		Brand:           "Honda",
		Model:           "Civic",
		Year:            2023,
		EngineType:      enums.EngineTypeGasoline,
		Price:           decimal.NewFromInt(24900),
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

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
