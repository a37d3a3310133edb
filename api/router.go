package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"tinttrack/internal/cpf"
	"tinttrack/internal/identity"
	"tinttrack/internal/sales"
)

// Services are the collaborators the HTTP API is wired to.
type Services struct {
	Sales    *sales.Service
	Identity *identity.Service
	CPF      cpf.Checker
	Logger   *zap.Logger
}

// InitRoutes registers every endpoint on the given Gin engine. Customer and
// sale routes require a bearer token; sign-up, sign-in, CPF validation and
// the liveness probe do not.
func InitRoutes(e *gin.Engine, svc Services) error {
	logger := svc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	checker := svc.CPF
	if checker == nil {
		checker = cpf.FormatChecker{}
	}

	// Query and body binding understand the cpf and containersize tags.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := sales.RegisterValidations(v); err != nil {
			return err
		}
	}

	salesHandler := NewSalesHandler(svc.Sales, logger.Named("sales"))
	authHandler := newAuthHandler(svc.Identity, logger.Named("auth"))
	cpfHandler := &cpfHandler{checker: checker, logger: logger.Named("cpf")}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	v1 := e.Group("/api/v1")
	v1.POST("/auth/sign-up", authHandler.handleSignUp)
	v1.POST("/auth/sign-in", authHandler.handleSignIn)
	v1.GET("/cpf/validate", cpfHandler.handleValidate)

	authed := v1.Group("", requireAuth(svc.Identity))
	authed.POST("/auth/sign-out", authHandler.handleSignOut)
	authed.GET("/auth/me", authHandler.handleMe)

	authed.GET("/customers", salesHandler.handleListCustomers)
	authed.GET("/customers/:cpf", salesHandler.handleGetCustomer)
	authed.PATCH("/customers/:cpf", salesHandler.handleUpdateCustomer)
	authed.PUT("/customers/:cpf/sales/:saleId", salesHandler.handleUpdateSale)
	authed.DELETE("/customers/:cpf/sales/:saleId", salesHandler.handleDeleteSale)

	authed.POST("/sales", salesHandler.handleRegisterSale)
	authed.GET("/sales", salesHandler.handleListSales)

	return nil
}
