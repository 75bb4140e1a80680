package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
	"github.com/jhoicas/farmacia-api/internal/domain/purchasing"
)

// ReceivePurchaseRequest body para POST /api/purchases/:poId/receive.
type ReceivePurchaseRequest struct {
	Items []ReceivePurchaseItem `json:"items"`
}

// ReceivePurchaseItem una línea recibida. ExpiryDate acepta YYYY-MM-DD o RFC3339.
type ReceivePurchaseItem struct {
	PurchaseItemID string           `json:"purchase_item_id"`
	ReceivedQty    *decimal.Decimal `json:"received_qty"`
	BatchNo        string           `json:"batch_no,omitempty"`
	ExpiryDate     string           `json:"expiry_date,omitempty"`
}

// ToReceiptItems convierte el body a entradas de dominio.
// received_qty ausente o expiry_date mal formada → *domain.ValidationError.
func (r ReceivePurchaseRequest) ToReceiptItems() ([]purchasing.ReceiptItem, error) {
	if len(r.Items) == 0 {
		return nil, domain.NewValidationError("items", "items requeridos")
	}
	out := make([]purchasing.ReceiptItem, 0, len(r.Items))
	for i, it := range r.Items {
		if it.ReceivedQty == nil {
			return nil, domain.NewValidationError("received_qty", "item %d: received_qty requerido", i)
		}
		item := purchasing.ReceiptItem{
			LineID:   it.PurchaseItemID,
			Quantity: *it.ReceivedQty,
			BatchNo:  it.BatchNo,
		}
		if it.ExpiryDate != "" {
			d, err := ParseDate(it.ExpiryDate)
			if err != nil {
				return nil, domain.NewValidationError("expiry_date", "item %d: fecha inválida %q", i, it.ExpiryDate)
			}
			item.ExpiryDate = &d
		}
		out = append(out, item)
	}
	return out, nil
}

// ParseDate interpreta YYYY-MM-DD (UTC) o RFC3339.
func ParseDate(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, s)
}

// ReceivePurchaseResponse respuesta 200 de la recepción.
type ReceivePurchaseResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Purchase ReceivedPurchaseDTO `json:"purchase"`
}

// ReceivedPurchaseDTO estado de la orden tras la recepción.
type ReceivedPurchaseDTO struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ReceivedItems int    `json:"received_items"`
}

// PurchaseStatusResponse respuesta de las transiciones place/cancel.
type PurchaseStatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
	Status  string `json:"status"`
}

// ReceivingStatusDTO agregado explícito orden + líneas para la pantalla de recepción.
type ReceivingStatusDTO struct {
	ID              string             `json:"id"`
	SupplierID      string             `json:"supplier_id"`
	Status          string             `json:"status"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	ReceivedAmount  decimal.Decimal    `json:"received_amount"`
	RemainingAmount decimal.Decimal    `json:"remaining_amount"`
	PaymentTerms    string             `json:"payment_terms,omitempty"`
	OrderDate       time.Time          `json:"order_date"`
	ReceivedAt      *time.Time         `json:"received_at,omitempty"`
	Lines           []ReceivingLineDTO `json:"lines"`
}

// ReceivingLineDTO línea con cantidad pendiente.
type ReceivingLineDTO struct {
	ID          string          `json:"id"`
	MedicineID  string          `json:"medicine_id,omitempty"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category,omitempty"`
	Barcode     string          `json:"barcode,omitempty"`
	OrderedQty  decimal.Decimal `json:"ordered_qty"`
	ReceivedQty decimal.Decimal `json:"received_qty"`
	PendingQty  decimal.Decimal `json:"pending_qty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BatchNo     string          `json:"batch_no,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
}

// ToReceivingStatusDTO mapea el agregado de dominio.
func ToReceivingStatusDTO(o *entity.PurchaseOrder) ReceivingStatusDTO {
	lines := make([]ReceivingLineDTO, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, ReceivingLineDTO{
			ID:          l.ID,
			MedicineID:  l.MedicineID,
			ProductName: l.ProductName,
			Category:    l.Category,
			Barcode:     l.Barcode,
			OrderedQty:  l.OrderedQty,
			ReceivedQty: l.ReceivedQty,
			PendingQty:  l.PendingQty(),
			UnitPrice:   l.UnitPrice,
			BatchNo:     l.BatchNo,
			ExpiryDate:  l.ExpiryDate,
		})
	}
	return ReceivingStatusDTO{
		ID:              o.ID,
		SupplierID:      o.SupplierID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ReceivedAmount:  o.ReceivedAmount,
		RemainingAmount: o.RemainingAmount,
		PaymentTerms:    o.PaymentTerms,
		OrderDate:       o.OrderDate,
		ReceivedAt:      o.ReceivedAt,
		Lines:           lines,
	}
}
