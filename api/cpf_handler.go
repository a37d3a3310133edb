package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinttrack/internal/cpf"
)

type cpfHandler struct {
	checker cpf.Checker
	logger  *zap.Logger
}

type cpfValidation struct {
	CPF     string `json:"cpf"`
	Masked  string `json:"masked"`
	IsValid bool   `json:"isValid"`
}

// handleValidate handles GET /cpf/validate?cpf=. Form fields call it while
// the user types, so a malformed CPF is a normal result rather than an error.
func (h *cpfHandler) handleValidate(ctx *gin.Context) {
	raw := ctx.Query("cpf")

	valid, err := h.checker.Check(ctx.Request.Context(), raw)
	if err != nil {
		h.logger.Warn("cpf validation failed", zap.String("cpf", cpf.Mask(raw)), zap.Error(err))
		respondError(ctx, err, "Não foi possível validar o CPF agora. Tente novamente.")
		return
	}

	ctx.JSON(http.StatusOK, cpfValidation{
		CPF:     cpf.Digits(raw),
		Masked:  cpf.Mask(raw),
		IsValid: valid,
	})
}
