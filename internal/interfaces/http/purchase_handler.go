package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
	"github.com/jhoicas/farmacia-api/internal/application/purchasing"
	"github.com/jhoicas/farmacia-api/internal/domain/entity"
)

type purchaseReceiver interface {
	Receive(ctx context.Context, in purchasing.ReceiveInput) (*purchasing.ReceiveResult, error)
}

type purchaseOrderService interface {
	PlaceOrder(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error)
	Cancel(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error)
	ReceiptPDF(ctx context.Context, organizationID, orderID string) ([]byte, error)
}

type receivingStatusReader interface {
	ReceivingStatus(ctx context.Context, organizationID, orderID string) (*dto.ReceivingStatusDTO, error)
}

// PurchaseHandler maneja las rutas de órdenes de compra: recepción, transiciones, estado y acta PDF.
type PurchaseHandler struct {
	receiver  purchaseReceiver
	orders    purchaseOrderService
	receiving receivingStatusReader
}

// NewPurchaseHandler construye el handler de compras.
func NewPurchaseHandler(receiver purchaseReceiver, orders purchaseOrderService, receiving receivingStatusReader) *PurchaseHandler {
	return &PurchaseHandler{receiver: receiver, orders: orders, receiving: receiving}
}

// Receive godoc
// @Summary      Recibir mercancía de una orden de compra
// @Description  Valida el lote completo (todo-o-nada), crea o incrementa stock, registra un movimiento 'in' por ítem y pasa la orden a 'received' cuando se completa.
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        poId  path  string  true  "ID de la orden de compra"
// @Param        body  body  dto.ReceivePurchaseRequest  true  "Ítems recibidos"
// @Success      200  {object}  dto.ReceivePurchaseResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      401  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Failure      409  {object}  dto.APIResponse
// @Failure      500  {object}  dto.APIResponse
// @Router       /api/purchases/{poId}/receive [post]
func (h *PurchaseHandler) Receive(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	userID := GetUserID(c)
	if organizationID == "" || userID == "" {
		return unauthorized(c)
	}
	var req dto.ReceivePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.APIResponse{Success: false, Message: "cuerpo de la petición inválido"})
	}
	items, err := req.ToReceiptItems()
	if err != nil {
		return writeError(c, err)
	}

	res, err := h.receiver.Receive(c.Context(), purchasing.ReceiveInput{
		OrderID:        c.Params("poId"),
		OrganizationID: organizationID,
		UserID:         userID,
		Items:          items,
	})
	if err != nil {
		return writeError(c, err)
	}

	msg := "partially received"
	if res.FullyReceived {
		msg = "fully received"
	}
	return c.JSON(dto.ReceivePurchaseResponse{
		Success: true,
		Message: msg,
		Purchase: dto.ReceivedPurchaseDTO{
			ID:            res.OrderID,
			Status:        res.Status,
			ReceivedItems: res.ReceivedItems,
		},
	})
}

// PlaceOrder godoc
// @Summary      Emitir orden de compra
// @Description  Pasa una orden de 'draft' a 'ordered'. Requiere al menos una línea.
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        poId  path  string  true  "ID de la orden de compra"
// @Success      200  {object}  dto.PurchaseStatusResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/purchases/{poId}/order [post]
func (h *PurchaseHandler) PlaceOrder(c *fiber.Ctx) error {
	return h.transition(c, h.orders.PlaceOrder, "order placed")
}

// Cancel godoc
// @Summary      Cancelar orden de compra
// @Description  Cancela una orden en 'draft' u 'ordered' sin cantidades recibidas.
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        poId  path  string  true  "ID de la orden de compra"
// @Success      200  {object}  dto.PurchaseStatusResponse
// @Failure      400  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/purchases/{poId}/cancel [post]
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.orders.Cancel, "order cancelled")
}

func (h *PurchaseHandler) transition(
	c *fiber.Ctx,
	fn func(ctx context.Context, organizationID, orderID string) (*entity.PurchaseOrder, error),
	msg string,
) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return unauthorized(c)
	}
	o, err := fn(c.Context(), organizationID, c.Params("poId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PurchaseStatusResponse{Success: true, Message: msg, ID: o.ID, Status: o.Status})
}

// ReceivingStatus godoc
// @Summary      Estado de recepción de una orden
// @Description  Orden, líneas y cantidad pendiente por línea.
// @Tags         purchases
// @Produce      json
// @Security     BearerAuth
// @Param        poId  path  string  true  "ID de la orden de compra"
// @Success      200  {object}  dto.ReceivingStatusDTO
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/purchases/{poId}/receiving [get]
func (h *PurchaseHandler) ReceivingStatus(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return unauthorized(c)
	}
	out, err := h.receiving.ReceivingStatus(c.Context(), organizationID, c.Params("poId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReceiptPDF godoc
// @Summary      Acta de recepción en PDF
// @Tags         purchases
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        poId  path  string  true  "ID de la orden de compra"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/purchases/{poId}/receipt.pdf [get]
func (h *PurchaseHandler) ReceiptPDF(c *fiber.Ctx) error {
	organizationID := GetOrganizationID(c)
	if organizationID == "" {
		return unauthorized(c)
	}
	poID := c.Params("poId")
	pdf, err := h.orders.ReceiptPDF(c.Context(), organizationID, poID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, "inline; filename="+strconv.Quote("recepcion-"+poID+".pdf"))
	return c.Send(pdf)
}
