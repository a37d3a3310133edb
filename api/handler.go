package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinttrack/internal/sales"
)

// salesHandler holds the sales service and implements the customer and sale
// endpoints.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

type customerResponse struct {
	Customer *sales.Customer `json:"customer"`
	Notice   *Notice         `json:"notice,omitempty"`
}

// handleRegisterSale handles POST /sales.
func (h *salesHandler) handleRegisterSale(ctx *gin.Context) {
	var form sales.SaleForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		badRequest(ctx, err)
		return
	}

	customer, err := h.salesService.RegisterSale(ctx.Request.Context(), form)
	if err != nil {
		respondError(ctx, err, "Não foi possível registrar a venda.")
		return
	}

	notice := success("Venda registrada e cliente atualizado.")
	ctx.JSON(http.StatusCreated, customerResponse{Customer: customer, Notice: &notice})
}

// handleUpdateSale handles PUT /customers/:cpf/sales/:saleId.
func (h *salesHandler) handleUpdateSale(ctx *gin.Context) {
	var form sales.SaleEditForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		badRequest(ctx, err)
		return
	}

	customer, err := h.salesService.UpdateSale(ctx.Request.Context(), ctx.Param("cpf"), ctx.Param("saleId"), form)
	if err != nil {
		respondError(ctx, err, "Não foi possível atualizar a venda.")
		return
	}

	notice := success("Venda atualizada com sucesso.")
	ctx.JSON(http.StatusOK, customerResponse{Customer: customer, Notice: &notice})
}

// handleDeleteSale handles DELETE /customers/:cpf/sales/:saleId.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	customer, err := h.salesService.DeleteSale(ctx.Request.Context(), ctx.Param("cpf"), ctx.Param("saleId"))
	if err != nil {
		respondError(ctx, err, "Não foi possível deletar a venda.")
		return
	}

	notice := success("Venda deletada com sucesso.")
	ctx.JSON(http.StatusOK, customerResponse{Customer: customer, Notice: &notice})
}

type salesQuery struct {
	Owner string `form:"owner"`
	CPF   string `form:"cpf" binding:"omitempty,cpf"`
}

// handleListSales handles GET /sales, the flat listing filtered by owner or
// customer CPF.
func (h *salesHandler) handleListSales(ctx *gin.Context) {
	var q salesQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		badRequest(ctx, err)
		return
	}

	records, err := h.salesService.ListSales(ctx.Request.Context(), sales.SalesQuery{
		OwnerID:     q.Owner,
		CustomerCPF: q.CPF,
	})
	if err != nil {
		respondError(ctx, err, "Não foi possível carregar os dados.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": records, "total": len(records)})
}

// handleListCustomers handles GET /customers?q=.
func (h *salesHandler) handleListCustomers(ctx *gin.Context) {
	listing, err := h.salesService.ListCustomers(ctx.Request.Context(), ctx.Query("q"))
	if err != nil {
		respondError(ctx, err, "Não foi possível carregar os dados.")
		return
	}
	ctx.JSON(http.StatusOK, listing)
}

// handleGetCustomer handles GET /customers/:cpf.
func (h *salesHandler) handleGetCustomer(ctx *gin.Context) {
	customer, err := h.salesService.GetCustomer(ctx.Request.Context(), ctx.Param("cpf"))
	if err != nil {
		respondError(ctx, err, "Erro ao buscar cliente.")
		return
	}
	ctx.JSON(http.StatusOK, customerResponse{Customer: customer})
}

// handleUpdateCustomer handles PATCH /customers/:cpf.
func (h *salesHandler) handleUpdateCustomer(ctx *gin.Context) {
	var form sales.CustomerForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		h.logger.Warn("failed to bind JSON request", zap.Error(err))
		badRequest(ctx, err)
		return
	}

	customer, err := h.salesService.UpdateCustomer(ctx.Request.Context(), ctx.Param("cpf"), form)
	if err != nil {
		respondError(ctx, err, "Não foi possível atualizar os dados do cliente.")
		return
	}

	notice := success("Dados do cliente atualizados.")
	ctx.JSON(http.StatusOK, customerResponse{Customer: customer, Notice: &notice})
}
