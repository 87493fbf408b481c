package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Eursukkul/parking-reservation/internal/dto"
	"github.com/Eursukkul/parking-reservation/internal/middleware"
	"github.com/Eursukkul/parking-reservation/internal/models"
	"github.com/Eursukkul/parking-reservation/internal/service"
	"github.com/labstack/echo/v4"
)

// serviceError maps a service failure onto an HTTP status. Validation errors
// pass through so the error handler can render their fields.
func serviceError(err error) error {
	if service.IsValidation(err) {
		return err
	}
	switch {
	case errors.Is(err, service.ErrSpaceNotFound),
		errors.Is(err, service.ErrReservationNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrDocumentNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSpaceUnavailable),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUserHasReservations):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDocumentRequired),
		errors.Is(err, service.ErrReservationClosed),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrSelfAction):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrAccountDisabled):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

// bindAndValidate binds the request into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

func caller(c echo.Context) *service.Identity {
	return middleware.CurrentIdentity(c)
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// formDocument reads an optional PDF part from a multipart request. A missing
// part returns nil.
func formDocument(c echo.Context, field string) (*service.DocumentUpload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// one byte over the limit is enough for the size check to fail
	data, err := io.ReadAll(io.LimitReader(f, service.MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	return &service.DocumentUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

func parseDate(field, value string) (models.Date, error) {
	d, err := models.ParseDate(value)
	if err != nil {
		return models.Date{}, &service.ValidationError{Message: "validation failed", Fields: map[string]string{field: err.Error()}}
	}
	return d, nil
}

func optionalDate(field string, value *string) (*models.Date, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := parseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseShift(value string) (models.ShiftType, error) {
	s, err := models.ParseShiftType(value)
	if err != nil {
		return "", &service.ValidationError{Message: "validation failed", Fields: map[string]string{"shiftType": "must be one of MORNING, AFTERNOON, FULL_DAY"}}
	}
	return s, nil
}

func toUpdateInput(req *dto.UpdateReservationRequest) (service.UpdateReservationInput, error) {
	var in service.UpdateReservationInput
	if req == nil {
		return in, nil
	}
	var err error
	if in.StartDate, err = optionalDate("startDate", req.StartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = optionalDate("endDate", req.EndDate); err != nil {
		return in, err
	}
	if req.ShiftType != nil && *req.ShiftType != "" {
		shift, err := parseShift(*req.ShiftType)
		if err != nil {
			return in, err
		}
		in.ShiftType = &shift
	}
	return in, nil
}
