package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tinttrack/internal/identity"
)

type authHandler struct {
	identityService *identity.Service
	logger          *zap.Logger
}

func newAuthHandler(identityService *identity.Service, logger *zap.Logger) *authHandler {
	return &authHandler{identityService: identityService, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *authHandler) handleSignUp(ctx *gin.Context) {
	var in identity.SignUpInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		badRequest(ctx, err)
		return
	}

	session, err := h.identityService.SignUp(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err, "Não foi possível criar a conta.")
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

func (h *authHandler) handleSignIn(ctx *gin.Context) {
	var req signInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, identity.ErrInvalidCredentials, "")
		return
	}

	session, err := h.identityService.SignIn(ctx.Request.Context(), identity.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(ctx, err, "Não foi possível entrar.")
		return
	}
	ctx.JSON(http.StatusOK, session)
}

func (h *authHandler) handleSignOut(ctx *gin.Context) {
	if err := h.identityService.SignOut(ctx.Request.Context()); err != nil {
		respondError(ctx, err, "Não foi possível sair.")
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *authHandler) handleMe(ctx *gin.Context) {
	user, err := h.identityService.CurrentUser(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err, "Não foi possível carregar o usuário.")
		return
	}
	ctx.JSON(http.StatusOK, user)
}
