package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeIn         = "in"         // entrada (recepción de compra)
	MovementTypeOut        = "out"        // salida (dispensación)
	MovementTypeAdjustment = "adjustment" // ajuste de conteo
	MovementTypeExpiry     = "expiry"     // baja por vencimiento
	MovementTypeDamage     = "damage"     // baja por daño
)

// InventoryMovement registro inmutable de auditoría: un cambio de cantidad sobre un StockRecord.
// Se inserta una vez y nunca se actualiza ni elimina.
type InventoryMovement struct {
	ID             string
	MedicineID     string
	OrganizationID string
	Type           string
	Quantity       decimal.Decimal
	Reference      string // ej. PO-<id de la orden>
	Notes          string
	UserID         string
	BatchNo        string
	ExpiryDate     *time.Time
	CostPrice      decimal.Decimal
	UnitPrice      decimal.Decimal
	CreatedAt      time.Time
}

// ValidMovementType indica si t es uno de los tipos conocidos.
func ValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeExpiry, MovementTypeDamage:
		return true
	}
	return false
}
