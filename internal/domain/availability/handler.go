package availability

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/availability", h.GetAvailability)
}

func (h *Handler) GetAvailability(c echo.Context) error {
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required")
	}

	slots, err := h.svc.AvailableSlots(c.Request().Context(), doctorID, date)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		case errors.Is(err, ErrDoctorNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "doctor not found")
		case errors.Is(err, ErrInvalidScheduleConfig):
			// Bad stored schedule data; needs admin attention, not a retry.
			h.logger.Error().Err(err).
				Str("doctor_id", doctorID.String()).
				Str("date", date).
				Msg("schedule misconfiguration")
			return echo.NewHTTPError(http.StatusInternalServerError, "schedule misconfigured")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	if slots == nil {
		slots = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": slots})
}
