package handler

import (
	"net/http"

	"github.com/Eursukkul/parking-reservation/internal/dto"
	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

const documentField = "scheduleDocument"

type ParkingHandler struct {
	reservations service.ReservationService
	docs         service.DocumentService
}

func NewParkingHandler(reservations service.ReservationService, docs service.DocumentService) *ParkingHandler {
	return &ParkingHandler{reservations: reservations, docs: docs}
}

func (h *ParkingHandler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	g := e.Group("/api/parking", authn)
	g.GET("/spaces", h.ListSpaces)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/availability", h.CheckAvailability)
	g.POST("/upload", h.Upload)

	g.POST("/reservations", h.CreateReservation)
	g.GET("/reservations", h.ListMyReservations)
	g.PUT("/reservations/:id", h.UpdateReservation)
	g.DELETE("/reservations/:id", h.CancelReservation)
	g.GET("/reservations/:id/document", h.GetDocument)
	g.DELETE("/reservations/:id/document", h.DeleteDocument)
}

func (h *ParkingHandler) ListSpaces(c echo.Context) error {
	spaces, err := h.reservations.Spaces(c.Request().Context())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.SpacesResponse{Success: true, Spaces: dto.ToSpaceResponses(spaces)})
}

func (h *ParkingHandler) Dashboard(c echo.Context) error {
	var q dto.DashboardQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	var day models.Date
	if q.Date != "" {
		var err error
		if day, err = parseDate("date", q.Date); err != nil {
			return err
		}
	}

	day, spaces, err := h.reservations.Dashboard(c.Request().Context(), day)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ToDashboardResponse(day, spaces))
}

func (h *ParkingHandler) CheckAvailability(c echo.Context) error {
	var q dto.AvailabilityQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	query := service.AvailabilityQuery{SpaceID: q.SpaceID, ExcludeReservationID: q.ExcludeReservationID}
	var err error
	if query.StartDate, err = parseDate("startDate", q.StartDate); err != nil {
		return err
	}
	if query.EndDate, err = parseDate("endDate", q.EndDate); err != nil {
		return err
	}
	if query.ShiftType, err = parseShift(q.ShiftType); err != nil {
		return err
	}

	available, err := h.reservations.IsAvailable(c.Request().Context(), query)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.AvailabilityResponse{
		Success:   true,
		Available: available,
		SpaceID:   query.SpaceID,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		ShiftType: query.ShiftType,
	})
}

// Upload stores a validated PDF without attaching it to a reservation.
func (h *ParkingHandler) Upload(c echo.Context) error {
	if !isMultipart(c) {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart/form-data with a file field is required")
	}
	up, err := formDocument(c, "file")
	if err != nil {
		return err
	}
	if up == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "no file provided")
	}

	doc, err := h.docs.Upload(c.Request().Context(), caller(c).UID, up)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.UploadResponse{Success: true, Document: dto.ToDocumentResponse(doc)})
}

// CreateReservation accepts JSON, or multipart form data when a schedule
// document is attached.
func (h *ParkingHandler) CreateReservation(c echo.Context) error {
	var req dto.CreateReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	in := service.CreateReservationInput{UserID: caller(c).UID, SpaceID: req.SpaceID}
	var err error
	if in.StartDate, err = parseDate("startDate", req.StartDate); err != nil {
		return err
	}
	if in.EndDate, err = parseDate("endDate", req.EndDate); err != nil {
		return err
	}
	if in.ShiftType, err = parseShift(req.ShiftType); err != nil {
		return err
	}
	if in.Document, err = formDocument(c, documentField); err != nil {
		return err
	}

	res, err := h.reservations.Create(c.Request().Context(), in)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, dto.ReservationEnvelope{
		Success:     true,
		Message:     "Reservation created successfully",
		Reservation: dto.ToReservationResponse(res),
	})
}

func (h *ParkingHandler) ListMyReservations(c echo.Context) error {
	list, err := h.reservations.ListForUser(c.Request().Context(), caller(c).UID)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ReservationsResponse{Success: true, Reservations: dto.ToReservationResponses(list)})
}

func (h *ParkingHandler) UpdateReservation(c echo.Context) error {
	var req dto.UpdateReservationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	in, err := toUpdateInput(&req)
	if err != nil {
		return err
	}
	if in.Document, err = formDocument(c, documentField); err != nil {
		return err
	}

	res, err := h.reservations.Update(c.Request().Context(), caller(c), c.Param("id"), in)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ReservationEnvelope{
		Success:     true,
		Message:     "Reservation updated successfully",
		Reservation: dto.ToReservationResponse(res),
	})
}

func (h *ParkingHandler) CancelReservation(c echo.Context) error {
	var req dto.CancelReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := h.reservations.Cancel(c.Request().Context(), caller(c), c.Param("id"), req.Reason)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ReservationEnvelope{
		Success:     true,
		Message:     "Reservation cancelled successfully",
		Reservation: dto.ToReservationResponse(res),
	})
}

func (h *ParkingHandler) GetDocument(c echo.Context) error {
	_, doc, err := h.reservations.Document(c.Request().Context(), caller(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.DocumentEnvelope{
		Success:       true,
		Document:      dto.ToDocumentResponse(doc),
		ExpiresInSecs: int(service.DocumentURLLifetime.Seconds()),
	})
}

func (h *ParkingHandler) DeleteDocument(c echo.Context) error {
	res, err := h.reservations.RemoveDocument(c.Request().Context(), caller(c), c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, dto.ReservationEnvelope{
		Success:     true,
		Message:     "Document removed successfully",
		Reservation: dto.ToReservationResponse(res),
	})
}
