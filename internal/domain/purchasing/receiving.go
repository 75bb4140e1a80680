// Package purchasing contiene las reglas puras de recepción de órdenes de compra:
// validación todo-o-nada del lote recibido y la precedencia para emparejar registros de stock.
package purchasing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

// ReceiptItem una entrada del lote recibido: cantidad recibida para una línea de la orden.
// BatchNo y ExpiryDate son opcionales; vacíos conservan el valor actual.
type ReceiptItem struct {
	LineID     string
	Quantity   decimal.Decimal
	BatchNo    string
	ExpiryDate *time.Time
}

// ValidateItems comprueba la forma del lote sin consultar la orden:
// lote no vacío, ids presentes y cantidades no negativas.
func ValidateItems(items []ReceiptItem) error {
	if len(items) == 0 {
		return domain.NewValidationError("items", "items requeridos")
	}
	for i, it := range items {
		if it.LineID == "" {
			return domain.NewValidationError("items", "item %d: purchase_item_id requerido", i)
		}
		if it.Quantity.IsNegative() {
			return domain.NewValidationError("items",
				"item %d (línea %s): received_qty no puede ser negativo", i, it.LineID)
		}
	}
	return nil
}

// ValidateAgainstOrder verifica TODO el lote contra la orden antes de mutar nada:
// cada línea debe pertenecer a la orden y lo recibido acumulado (previo + todas las
// entradas de este lote para esa línea) no puede superar lo pedido.
func ValidateAgainstOrder(order *entity.PurchaseOrder, items []ReceiptItem) error {
	incoming := make(map[string]decimal.Decimal, len(items))
	for _, it := range items {
		if order.Line(it.LineID) == nil {
			return domain.NewValidationError("purchase_item_id",
				"la línea %s no pertenece a la orden %s", it.LineID, order.ID)
		}
		incoming[it.LineID] = incoming[it.LineID].Add(it.Quantity)
	}
	for _, it := range items {
		qty, pending := incoming[it.LineID]
		if !pending {
			continue // ya verificada
		}
		delete(incoming, it.LineID)
		l := order.Line(it.LineID)
		if l.ReceivedQty.Add(qty).GreaterThan(l.OrderedQty) {
			return domain.NewValidationError("received_qty",
				"la línea %s (%s) admite como máximo %s (pedido %s, recibido %s), se enviaron %s",
				l.ID, l.ProductName, l.PendingQty().String(), l.OrderedQty.String(),
				l.ReceivedQty.String(), qty.String())
		}
	}
	return nil
}

// MatchStockRecord aplica la precedencia de emparejamiento: el registro encontrado por
// código de barras gana; el id enlazado en la línea es el respaldo. nil = crear registro nuevo.
func MatchStockRecord(byBarcode, byLinkedID *entity.StockRecord) *entity.StockRecord {
	if byBarcode != nil {
		return byBarcode
	}
	return byLinkedID
}

// MovementReference referencia de auditoría que identifica la orden de origen.
func MovementReference(orderID string) string {
	return "PO-" + orderID
}
