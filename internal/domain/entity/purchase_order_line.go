package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderLine representa un producto dentro de una orden de compra.
// MedicineID es una referencia (no propiedad) al registro de stock; se fija al descubrirlo o crearlo.
type PurchaseOrderLine struct {
	ID          string
	PurchaseID  string
	MedicineID  string // vacío hasta la primera recepción si el producto no existía
	ProductName string
	Category    string
	Barcode     string
	OrderedQty  decimal.Decimal
	ReceivedQty decimal.Decimal // nunca supera OrderedQty
	UnitPrice   decimal.Decimal
	BatchNo     string
	ExpiryDate  *time.Time
	UpdatedAt   time.Time
}

// PendingQty cantidad que falta por recibir.
func (l PurchaseOrderLine) PendingQty() decimal.Decimal {
	p := l.OrderedQty.Sub(l.ReceivedQty)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// IsComplete la línea recibió al menos lo pedido.
func (l PurchaseOrderLine) IsComplete() bool {
	return l.ReceivedQty.GreaterThanOrEqual(l.OrderedQty)
}
