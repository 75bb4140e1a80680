package http_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/farmacia-api/internal/application/dto"
	"github.com/jhoicas/farmacia-api/internal/domain"
	apphttp "github.com/jhoicas/farmacia-api/internal/interfaces/http"
)

func TestListMovements_PasaPaginacion(t *testing.T) {
	app, d := newRouterApp(t, nil)
	d.movements.On("ListByMedicine", mock.Anything, testOrgID, "med-1", dto.PageRequest{Limit: 5, Offset: 10}).
		Return(&dto.MovementListResponse{
			Page: dto.PageResponse{Limit: 5, Offset: 10},
			Movements: []dto.InventoryMovementDTO{
				{ID: "mov-1", MedicineID: "med-1", Type: "in", Quantity: decimal.NewFromInt(3), Reference: "PO-po-1"},
			},
		}, nil).Once()

	resp, raw := send(t, app, http.MethodGet, "/api/medicines/med-1/movements?limit=5&offset=10", apphttp.RoleDoctor, "")

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Movements, 1)
	assert.Equal(t, "PO-po-1", out.Movements[0].Reference)
	assert.Equal(t, 5, out.Page.Limit)
}

func TestListMovements_SinPaginacion(t *testing.T) {
	app, d := newRouterApp(t, nil)
	d.movements.On("ListByMedicine", mock.Anything, testOrgID, "med-1", dto.PageRequest{}).
		Return(&dto.MovementListResponse{Page: dto.PageResponse{Limit: 20}}, nil).Once()

	resp, _ := send(t, app, http.MethodGet, "/api/medicines/med-1/movements", apphttp.RolePharmacist, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListMovements_PaginacionInvalida_Retorna400(t *testing.T) {
	app, d := newRouterApp(t, nil)
	resp, _ := send(t, app, http.MethodGet, "/api/medicines/med-1/movements?limit=muchos", apphttp.RolePharmacist, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	d.movements.AssertNotCalled(t, "ListByMedicine", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListMovements_MedicamentoInexistente_Retorna404(t *testing.T) {
	app, d := newRouterApp(t, nil)
	d.movements.On("ListByMedicine", mock.Anything, testOrgID, "med-x", dto.PageRequest{}).
		Return(nil, domain.NewNotFoundError("medicamento", "med-x", "")).Once()

	resp, raw := send(t, app, http.MethodGet, "/api/medicines/med-x/movements", apphttp.RoleAdmin, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, decodeAPI(t, raw).Success)
}
