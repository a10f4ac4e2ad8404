package warehouses

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/dealerstock-backend/pkg/db/models"
)

// CreateWarehouseInput holds the validated payload for a new site.
type CreateWarehouseInput struct {
	WarehouseID   string
	Name          string
	Location      string
	Latitude      *float64
	Longitude     *float64
	CapacityTotal int
}

// WarehouseDTO is the wire representation of a storage site.
type WarehouseDTO struct {
	WarehouseID   string    `json:"warehouse_id"`
	Name          string    `json:"name"`
	Location      string    `json:"location"`
	Latitude      *float64  `json:"latitude,omitempty"`
	Longitude     *float64  `json:"longitude,omitempty"`
	CapacityTotal int       `json:"capacity_total"`
	CapacityUsed  int       `json:"capacity_used"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// StockLocationDTO is one car's stock position inside a warehouse.
type StockLocationDTO struct {
	CarID            string    `json:"car_id"`
	Zone             *string   `json:"zone,omitempty"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	LastUpdated      time.Time `json:"last_updated"`
}

// WarehouseDetailDTO adds the per-car stock breakdown to the site view.
type WarehouseDetailDTO struct {
	WarehouseDTO
	Stock []StockLocationDTO `json:"stock"`
}

// CreateTransferInput holds the validated payload for a transfer order.
type CreateTransferInput struct {
	FromWarehouseID string
	ToWarehouseID   string
	CarID           string
	Quantity        int
}

// TransferDTO is the wire representation of a transfer order.
type TransferDTO struct {
	ID              uuid.UUID  `json:"id"`
	FromWarehouseID string     `json:"from_warehouse_id"`
	ToWarehouseID   string     `json:"to_warehouse_id"`
	CarID           string     `json:"car_id"`
	Quantity        int        `json:"quantity"`
	Status          string     `json:"status"`
	RequestedAt     time.Time  `json:"requested_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func toWarehouseDTO(row *models.Warehouse) *WarehouseDTO {
	return &WarehouseDTO{
		WarehouseID:   row.WarehouseID,
		Name:          row.Name,
		Location:      row.Location,
		Latitude:      row.Latitude,
		Longitude:     row.Longitude,
		CapacityTotal: row.CapacityTotal,
		CapacityUsed:  row.CapacityUsed,
		IsActive:      row.IsActive,
		CreatedAt:     row.CreatedAt,
	}
}

func toStockLocationDTOs(rows []models.StockLocation) []StockLocationDTO {
	out := make([]StockLocationDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, StockLocationDTO{
			CarID:            row.CarID,
			Zone:             row.Zone,
			Quantity:         row.Quantity,
			ReservedQuantity: row.ReservedQuantity,
			LastUpdated:      row.LastUpdated,
		})
	}
	return out
}

func toTransferDTO(row *models.TransferOrder) *TransferDTO {
	return &TransferDTO{
		ID:              row.ID,
		FromWarehouseID: row.FromWarehouseID,
		ToWarehouseID:   row.ToWarehouseID,
		CarID:           row.CarID,
		Quantity:        row.Quantity,
		Status:          row.Status.String(),
		RequestedAt:     row.RequestedAt,
		CompletedAt:     row.CompletedAt,
	}
}
