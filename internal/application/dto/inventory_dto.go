package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

// InventoryMovementDTO movimiento de auditoría expuesto por GET /api/medicines/:id/movements.
type InventoryMovementDTO struct {
	ID         string          `json:"id"`
	MedicineID string          `json:"medicine_id"`
	Type       string          `json:"type"`
	Quantity   decimal.Decimal `json:"quantity"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes,omitempty"`
	UserID     string          `json:"user_id"`
	BatchNo    string          `json:"batch_no,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// MovementListResponse listado paginado de movimientos.
type MovementListResponse struct {
	Page      PageResponse           `json:"page"`
	Movements []InventoryMovementDTO `json:"movements"`
}

// ToInventoryMovementDTO mapea la entidad.
func ToInventoryMovementDTO(m *entity.InventoryMovement) InventoryMovementDTO {
	return InventoryMovementDTO{
		ID:         m.ID,
		MedicineID: m.MedicineID,
		Type:       m.Type,
		Quantity:   m.Quantity,
		Reference:  m.Reference,
		Notes:      m.Notes,
		UserID:     m.UserID,
		BatchNo:    m.BatchNo,
		ExpiryDate: m.ExpiryDate,
		CostPrice:  m.CostPrice,
		UnitPrice:  m.UnitPrice,
		CreatedAt:  m.CreatedAt,
	}
}
