package handler

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/parking-reservation/internal/dto"
	"github.com/Eursukkul/parking-reservation/internal/middleware"
	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/repository"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

const (
	defaultReservationPageSize = 20
	maxReservationPageSize     = 100
)

type AdminHandler struct {
	users        service.UserService
	reservations service.ReservationService
	stats        service.StatsService
}

func NewAdminHandler(users service.UserService, reservations service.ReservationService, stats service.StatsService) *AdminHandler {
	return &AdminHandler{users: users, reservations: reservations, stats: stats}
}

func (h *AdminHandler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	g := e.Group("/api/admin", authn, middleware.RequireAdmin)

	g.GET("/users", h.ListUsers)
	g.POST("/users", h.CreateUser)
	g.POST("/users/bulk", h.BulkUsers)
	g.PUT("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeleteUser)

	g.GET("/reservations", h.ListReservations)
	g.PUT("/reservations/:id", h.ActOnReservation)
	g.DELETE("/reservations/:id", h.DeleteReservation)
	g.GET("/reservations/:id/document", h.GetDocument)

	g.GET("/stats", h.Stats)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	var q dto.UserListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	filter := repository.UserFilter{
		Role:       models.Role(q.Role),
		Department: models.Department(q.Department),
		Search:     strings.TrimSpace(q.Search),
		SortBy:     q.SortBy,
		SortDesc:   q.SortOrder == "desc",
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = service.DefaultUserPageSize
	}
	if filter.PageSize > service.MaxUserPageSize {
		filter.PageSize = service.MaxUserPageSize
	}

	users, total, err := h.users.ListUsers(c.Request().Context(), filter)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.UsersResponse{
		Success:    true,
		Users:      dto.ToUserResponses(users),
		Pagination: dto.NewPagination(filter.Page, filter.PageSize, total),
	})
}

func (h *AdminHandler) CreateUser(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, password, err := h.users.CreateUser(c.Request().Context(), service.CreateUserInput{
		Email:      req.Email,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Department: models.Department(req.Department),
		Role:       models.Role(req.Role),
	})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, dto.UserEnvelope{
		Success:           true,
		Message:           "User created successfully",
		User:              dto.ToUserResponse(user),
		TemporaryPassword: password,
	})
}

func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req dto.AdminUpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.AdminUserUpdate{
		ProfileUpdate: toProfileUpdate(req.ProfileUpdateRequest),
		Email:         req.Email,
		IsActive:      req.IsActive,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.users.UpdateUser(c.Request().Context(), caller(c), c.Param("id"), in)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.UserEnvelope{Success: true, Message: "User updated successfully", User: dto.ToUserResponse(user)})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), caller(c), c.Param("id")); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "User deactivated successfully"})
}

func (h *AdminHandler) BulkUsers(c echo.Context) error {
	var req dto.BulkUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.users.Bulk(c.Request().Context(), caller(c), service.BulkInput{
		Action:     req.Action,
		UserIDs:    req.UserIDs,
		Role:       models.Role(req.Data.Role),
		Department: models.Department(req.Data.Department),
	})
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.BulkResponse{Success: true, Results: result.Results, Errors: result.Errors})
}

func (h *AdminHandler) ListReservations(c echo.Context) error {
	var q dto.ReservationListQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	filter := repository.ReservationFilter{
		Status:   models.ReservationStatus(q.Status),
		UserID:   q.UserID,
		SpaceID:  q.SpaceID,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaultReservationPageSize
	}
	if filter.PageSize > maxReservationPageSize {
		filter.PageSize = maxReservationPageSize
	}

	list, total, err := h.reservations.List(c.Request().Context(), filter)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ReservationsResponse{
		Success:      true,
		Reservations: dto.ToReservationResponses(list),
		Pagination:   dto.NewPagination(filter.Page, filter.PageSize, total),
	})
}

// ActOnReservation applies approve, reject, cancel or update to one reservation.
func (h *AdminHandler) ActOnReservation(c echo.Context) error {
	var req dto.AdminReservationAction
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	admin := caller(c)

	var (
		res *models.Reservation
		err error
	)
	switch req.Action {
	case "approve":
		res, err = h.reservations.Approve(ctx, admin, id)
	case "reject":
		res, err = h.reservations.Reject(ctx, admin, id, req.Reason)
	case "cancel":
		res, err = h.reservations.Cancel(ctx, admin, id, req.Reason)
	case "update":
		if req.Data != nil {
			if err := c.Validate(req.Data); err != nil {
				return err
			}
		}
		in, convErr := toUpdateInput(req.Data)
		if convErr != nil {
			return convErr
		}
		res, err = h.reservations.Update(ctx, admin, id, in)
	}
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, dto.ReservationEnvelope{
		Success:     true,
		Message:     "Reservation " + req.Action + " completed",
		Reservation: dto.ToReservationResponse(res),
	})
}

func (h *AdminHandler) DeleteReservation(c echo.Context) error {
	if err := h.reservations.Delete(c.Request().Context(), caller(c), c.Param("id")); err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Reservation deleted successfully"})
}

func (h *AdminHandler) GetDocument(c echo.Context) error {
	res, doc, err := h.reservations.Document(c.Request().Context(), caller(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	resp := dto.ToReservationResponse(res)
	return c.JSON(http.StatusOK, dto.DocumentEnvelope{
		Success:       true,
		Document:      dto.ToDocumentResponse(doc),
		Reservation:   &resp,
		ExpiresInSecs: int(service.DocumentURLLifetime.Seconds()),
	})
}

func (h *AdminHandler) Stats(c echo.Context) error {
	var q dto.StatsQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	var start, end models.Date
	var err error
	if q.StartDate != "" {
		if start, err = parseDate("startDate", q.StartDate); err != nil {
			return err
		}
	}
	if q.EndDate != "" {
		if end, err = parseDate("endDate", q.EndDate); err != nil {
			return err
		}
	}

	stats, err := h.stats.Stats(c.Request().Context(), start, end)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToStatsResponse(stats))
}
