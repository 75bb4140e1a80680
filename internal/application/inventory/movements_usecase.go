package inventory

import (
	"context"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
	"github.com/jhoicas/farmacia-api/internal/domain"
	"github.com/jhoicas/farmacia-api/internal/domain/repository"
)

// MovementsUseCase consulta el registro de auditoría de un medicamento (solo lectura).
type MovementsUseCase struct {
	stockRepo repository.StockRecordRepository
	movRepo   repository.InventoryMovementRepository
}

// NewMovementsUseCase construye el caso de uso.
func NewMovementsUseCase(stockRepo repository.StockRecordRepository, movRepo repository.InventoryMovementRepository) *MovementsUseCase {
	return &MovementsUseCase{stockRepo: stockRepo, movRepo: movRepo}
}

// ListByMedicine lista los movimientos de un medicamento de la organización, más recientes primero.
func (uc *MovementsUseCase) ListByMedicine(ctx context.Context, organizationID, medicineID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	if organizationID == "" {
		return nil, domain.NewValidationError("organization_id", "organización requerida")
	}
	page.DefaultPage()

	rec, err := uc.stockRepo.GetByID(ctx, organizationID, medicineID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.NewNotFoundError("medicamento", medicineID, "")
	}

	list, err := uc.movRepo.ListByMedicine(ctx, organizationID, medicineID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		Movements: make([]dto.InventoryMovementDTO, 0, len(list)),
	}
	for _, m := range list {
		out.Movements = append(out.Movements, dto.ToInventoryMovementDTO(m))
	}
	return out, nil
}
