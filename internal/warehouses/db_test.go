package warehouses

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
	"github.com/angelmondragon/dealerstock-backend/pkg/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:warehouses_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Warehouse{}, &models.StockLocation{}, &models.TransferOrder{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "warehouses-test", Output: io.Discard})
}

func mustCreateTestWarehouse(t *testing.T, conn *gorm.DB, id, name string) *models.Warehouse {
	t.Helper()
	row := &models.Warehouse{
		WarehouseID:   id,
		Name:          name,
		Location:      "Monterrey, MX",
		CapacityTotal: 200,
		IsActive:      true,
	}
	if err := conn.Create(row).Error; err != nil {
		t.Fatalf("create warehouse: %v", err)
	}
	return row
}

func mustStockCar(t *testing.T, conn *gorm.DB, warehouseID, carID string, quantity, reserved int) {
	t.Helper()
	row := &models.StockLocation{
		WarehouseID:      warehouseID,
		CarID:            carID,
		Quantity:         quantity,
		ReservedQuantity: reserved,
	}
	if err := conn.Create(row).Error; err != nil {
		t.Fatalf("create stock location: %v", err)
	}
}

func uniqueWarehouseID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString()[:8])
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
