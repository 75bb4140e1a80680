package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de compra. Transiciones válidas: draft → ordered → received,
// o draft|ordered → cancelled.
const (
	PurchaseStatusDraft     = "draft"
	PurchaseStatusOrdered   = "ordered"
	PurchaseStatusReceived  = "received"
	PurchaseStatusCancelled = "cancelled"
)

// PurchaseOrder representa una orden de compra a un proveedor (multi-organización).
// Es dueña de sus líneas; el receptor la muta al recibir mercancía y nunca la elimina.
type PurchaseOrder struct {
	ID              string
	OrganizationID  string
	SupplierID      string
	Status          string
	TotalAmount     decimal.Decimal
	ReceivedAmount  decimal.Decimal // Σ cantidad recibida × precio unitario
	RemainingAmount decimal.Decimal // TotalAmount - ReceivedAmount
	PaymentTerms    string
	OrderDate       time.Time
	ExpectedDate    *time.Time
	ReceivedAt      *time.Time
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Lines           []PurchaseOrderLine
}

// Line devuelve un puntero a la línea con el id dado (nil si no pertenece a la orden).
func (o *PurchaseOrder) Line(lineID string) *PurchaseOrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// CanReceive indica si la orden admite recepciones.
func (o *PurchaseOrder) CanReceive() bool {
	return o.Status == PurchaseStatusOrdered
}

// FullyReceived es verdadero si todas las líneas alcanzaron la cantidad pedida.
// Una orden sin líneas no se considera recibida.
func FullyReceived(lines []PurchaseOrderLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if !l.IsComplete() {
			return false
		}
	}
	return true
}

// ApplyReceipt recalcula estado y totales a partir de TODAS las líneas de la orden.
// El estado nunca retrocede de received a ordered: la cantidad recibida solo crece.
func (o *PurchaseOrder) ApplyReceipt(lines []PurchaseOrderLine, now time.Time) {
	received := decimal.Zero
	for _, l := range lines {
		received = received.Add(l.ReceivedQty.Mul(l.UnitPrice))
	}
	o.ReceivedAmount = received
	o.RemainingAmount = o.TotalAmount.Sub(received)
	if o.RemainingAmount.IsNegative() {
		o.RemainingAmount = decimal.Zero
	}
	if FullyReceived(lines) {
		o.Status = PurchaseStatusReceived
		o.ReceivedAt = &now
	} else if o.Status != PurchaseStatusReceived {
		o.Status = PurchaseStatusOrdered
	}
	o.Lines = lines
	o.UpdatedAt = now
}
