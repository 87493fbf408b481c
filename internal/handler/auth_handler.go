package handler

import (
	"net/http"

	"github.com/Eursukkul/parking-reservation/internal/dto"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout, authn)
	g.GET("/validate", h.Validate, authn)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.LoginResponse{
		Success:   true,
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.ToUserResponse(result.User),
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.Logout(c.Request().Context(), caller(c)); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "logged out"})
}

func (h *AuthHandler) Validate(c echo.Context) error {
	user, err := h.auth.Me(c.Request().Context(), caller(c))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ValidateResponse{Success: true, User: dto.ToUserResponse(user)})
}
