package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authUseCase "github.com/banterhq/banter/application/usecases/auth"
	"github.com/banterhq/banter/domain/model"
	"github.com/banterhq/banter/infrastructure/config"
	"github.com/banterhq/banter/infrastructure/security"
	"github.com/banterhq/banter/infrastructure/token"
	"github.com/banterhq/banter/presentation/middlewares"
)

type AuthController interface {
	Register(ctx *gin.Context)
	Login(ctx *gin.Context)
	Refresh(ctx *gin.Context)
	Logout(ctx *gin.Context)
	Me(ctx *gin.Context)
}

type authController struct {
	usecase authUseCase.AuthUseCase
	tokens  *token.Manager
	cfg     *config.Config
}

func NewAuthController(usecase authUseCase.AuthUseCase, tokens *token.Manager, cfg *config.Config) AuthController {
	return &authController{
		usecase: usecase,
		tokens:  tokens,
		cfg:     cfg,
	}
}

func (c *authController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	user, err := c.usecase.Register(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		status := http.StatusInternalServerError
		errorCode := "register_failed"

		switch {
		case errors.Is(err, authUseCase.ErrEmailTaken),
			errors.Is(err, authUseCase.ErrUsernameTaken):
			status = http.StatusConflict
			errorCode = "already_exists"
		}

		ctx.JSON(status, ErrorResponse{
			Error:   errorCode,
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, toUserResponse(user))
}

func (c *authController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: middlewares.TranslateValidationError(err),
		})
		return
	}

	user, pair, err := c.usecase.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authUseCase.ErrInvalidCredentials) {
			ctx.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "invalid_credentials",
				Message: "email or password is incorrect",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "login_failed",
			Message: err.Error(),
		})
		return
	}

	c.setCookies(ctx, pair)

	ctx.JSON(http.StatusOK, LoginResponse{
		User:         toUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh rotates the refresh token. The old token is revoked so it cannot
// be replayed.
func (c *authController) Refresh(ctx *gin.Context) {
	refresh := refreshFromRequest(ctx)
	if refresh == "" {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "refresh token is required",
		})
		return
	}

	pair, err := c.usecase.Refresh(ctx.Request.Context(), refresh)
	if err != nil {
		if errors.Is(err, token.ErrUnauthenticated) {
			security.ClearTokenCookies(ctx.Writer, c.cfg.IsProduction())
			ctx.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "refresh token is invalid or expired",
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "refresh_failed",
			Message: err.Error(),
		})
		return
	}

	c.setCookies(ctx, pair)

	ctx.JSON(http.StatusOK, RefreshResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (c *authController) Logout(ctx *gin.Context) {
	if refresh := refreshFromRequest(ctx); refresh != "" {
		// best effort, logout succeeds even if revocation fails
		_ = c.usecase.Logout(ctx.Request.Context(), refresh)
	}

	security.ClearTokenCookies(ctx.Writer, c.cfg.IsProduction())

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *authController) Me(ctx *gin.Context) {
	user, exists := middlewares.CurrentUser(ctx)
	if !exists {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "user not found in context",
		})
		return
	}

	ctx.JSON(http.StatusOK, toUserResponse(user))
}

func (c *authController) setCookies(ctx *gin.Context, pair *authUseCase.TokenPair) {
	security.SetTokenCookies(
		ctx.Writer,
		pair.AccessToken,
		pair.RefreshToken,
		c.tokens.AccessTokenExpiry(),
		c.tokens.RefreshTokenExpiry(),
		c.cfg.IsProduction(),
	)
}

func refreshFromRequest(ctx *gin.Context) string {
	if cookie, err := ctx.Request.Cookie(token.RefreshCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := ctx.ShouldBindJSON(&body); err == nil {
		return body.RefreshToken
	}
	return ""
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Avatar:    user.Avatar,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
