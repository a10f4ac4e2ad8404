package models

import "time"

// Warehouse is a physical storage site. WarehouseID is the business
// identifier ("W"-prefixed).
type Warehouse struct {
	WarehouseID   string    `gorm:"column:warehouse_id;primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Location      string    `gorm:"column:location;not null"`
	Latitude      *float64  `gorm:"column:latitude"`
	Longitude     *float64  `gorm:"column:longitude"`
	CapacityTotal int       `gorm:"column:capacity_total;not null;default:0"`
	CapacityUsed  int       `gorm:"column:capacity_used;not null;default:0"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName pins the plural table used by the migrations.
func (Warehouse) TableName() string { return "warehouses" }

// StockLocation tracks per-warehouse stock for a car. ReservedQuantity is
// stock earmarked by in-flight transfers and reservations.
type StockLocation struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	WarehouseID      string    `gorm:"column:warehouse_id;not null;uniqueIndex:ux_stock_locations_warehouse_car,priority:1"`
	CarID            string    `gorm:"column:car_id;not null;uniqueIndex:ux_stock_locations_warehouse_car,priority:2"`
	Zone             *string   `gorm:"column:zone"`
	Quantity         int       `gorm:"column:quantity;not null;default:0"`
	ReservedQuantity int       `gorm:"column:reserved_quantity;not null;default:0"`
	LastUpdated      time.Time `gorm:"column:last_updated;autoUpdateTime"`
}

// TableName pins the plural table used by the migrations.
func (StockLocation) TableName() string { return "stock_locations" }
