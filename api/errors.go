package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinttrack/internal/cpf"
	"tinttrack/internal/identity"
	"tinttrack/internal/logger"
	"tinttrack/internal/sales"
)

const errorTitle = "Erro"

// ErrorBody is the payload of every failed request. Title and Message are
// meant to be shown to the user as-is.
type ErrorBody struct {
	Code    string            `json:"code"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Notice is the success message returned alongside mutated state.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func success(message string) Notice {
	return Notice{Title: "Sucesso!", Message: message}
}

func abortWithError(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

// respondError maps err to a status and a localized body. fallback is the
// message shown when err is not a known domain error.
func respondError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var formErr *sales.FormError
	switch {
	case errors.As(err, &formErr):
		abortWithError(c, http.StatusBadRequest, ErrorBody{
			Code:    "INVALID_FORM",
			Title:   "Dados inválidos",
			Message: "Verifique os campos destacados.",
			Fields:  formErr.Fields,
		})
	case errors.Is(err, sales.ErrCustomerNotFound):
		abortWithError(c, http.StatusNotFound, ErrorBody{
			Code:    "CUSTOMER_NOT_FOUND",
			Title:   "Cliente não encontrado",
			Message: "Nenhum cliente cadastrado com este CPF.",
		})
	case errors.Is(err, sales.ErrSaleNotFound):
		abortWithError(c, http.StatusNotFound, ErrorBody{
			Code:    "SALE_NOT_FOUND",
			Title:   errorTitle,
			Message: "Venda não encontrada.",
		})
	case errors.Is(err, sales.ErrDuplicateCPF):
		abortWithError(c, http.StatusConflict, ErrorBody{
			Code:    "DUPLICATE_CPF",
			Title:   errorTitle,
			Message: "Já existe um cliente com este CPF.",
		})
	case errors.Is(err, cpf.ErrValidatorUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, ErrorBody{
			Code:    "CPF_VALIDATOR_UNAVAILABLE",
			Title:   errorTitle,
			Message: "Não foi possível validar o CPF agora. Tente novamente.",
		})
	default:
		if msg, ok := identity.FriendlyMessage(err); ok {
			abortWithError(c, identityStatus(err), ErrorBody{
				Code:    identityCode(err),
				Title:   errorTitle,
				Message: msg,
			})
			return
		}
		logger.FromContext(c.Request.Context(), zap.L()).Error("request failed", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, ErrorBody{
			Code:    "INTERNAL_ERROR",
			Title:   errorTitle,
			Message: fallback,
		})
	}
}

func identityStatus(err error) int {
	switch {
	case errors.Is(err, identity.ErrEmailInUse):
		return http.StatusConflict
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusUnauthorized
	}
}

func identityCode(err error) string {
	switch {
	case errors.Is(err, identity.ErrEmailInUse):
		return "EMAIL_IN_USE"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "INVALID_EMAIL"
	case errors.Is(err, identity.ErrWeakPassword):
		return "WEAK_PASSWORD"
	case errors.Is(err, identity.ErrInvalidName):
		return "INVALID_NAME"
	case errors.Is(err, identity.ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	case errors.Is(err, identity.ErrUserNotFound):
		return "USER_NOT_FOUND"
	case errors.Is(err, identity.ErrUnauthenticated):
		return "UNAUTHENTICATED"
	default:
		return "INVALID_SESSION"
	}
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithError(c, http.StatusBadRequest, ErrorBody{
		Code:    "INVALID_REQUEST",
		Title:   errorTitle,
		Message: "Requisição inválida.",
	})
}
