package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockRecord representa el inventario disponible de un medicamento en una organización
// (tabla medicines). Se crea de forma perezosa la primera vez que se recibe un producto sin registro.
type StockRecord struct {
	ID             string
	OrganizationID string
	Name           string
	Barcode        string // único por organización cuando no está vacío
	Category       string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	BatchNo        string
	ExpiryDate     *time.Time
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
