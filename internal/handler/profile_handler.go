package handler

import (
	"net/http"

	"github.com/Eursukkul/parking-reservation/internal/dto"
	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

type ProfileHandler struct {
	users service.UserService
	auth  service.AuthService
}

func NewProfileHandler(users service.UserService, auth service.AuthService) *ProfileHandler {
	return &ProfileHandler{users: users, auth: auth}
}

func (h *ProfileHandler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	g := e.Group("/api/user", authn)
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteProfile)
}

func (h *ProfileHandler) GetProfile(c echo.Context) error {
	user, reservations, err := h.users.Profile(c.Request().Context(), caller(c).UID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{
		Success:      true,
		User:         dto.ToUserResponse(user),
		Reservations: dto.ToReservationResponses(reservations),
	})
}

// UpdateProfile changes only name, username and department. Any other field
// in the body is ignored.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req dto.ProfileUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), caller(c).UID, toProfileUpdate(req))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ProfileResponse{Success: true, User: dto.ToUserResponse(user)})
}

// DeleteProfile deactivates the caller's own account and revokes the token
// used for the request.
func (h *ProfileHandler) DeleteProfile(c echo.Context) error {
	ctx := c.Request().Context()
	id := caller(c)
	if err := h.users.Deactivate(ctx, id.UID); err != nil {
		return serviceError(err)
	}
	if err := h.auth.Logout(ctx, id); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Account deactivated"})
}

func toProfileUpdate(req dto.ProfileUpdateRequest) service.ProfileUpdate {
	in := service.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
	}
	if req.Department != nil {
		dept := models.Department(*req.Department)
		in.Department = &dept
	}
	return in
}
