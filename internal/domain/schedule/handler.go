package schedule

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/api/internal/platform/auth"
)

// CacheInvalidator drops cached availability state for a (doctor, date) after
// staff change special dates.
type CacheInvalidator interface {
	InvalidateSpecialDate(doctorID uuid.UUID, date string)
}

type Handler struct {
	svc   *Service
	cache CacheInvalidator
}

func NewHandler(svc *Service, cache CacheInvalidator) *Handler {
	return &Handler{svc: svc, cache: cache}
}

// RegisterRoutes wires schedule management endpoints. All of them are staff
// operations behind the given authn middleware.
func (h *Handler) RegisterRoutes(api *echo.Group, authn echo.MiddlewareFunc) {
	staff := api.Group("", authn, auth.RequireRole("admin", "staff"))
	staff.GET("/doctors/:id/schedule", h.ListWeeklyRules)
	staff.PUT("/doctors/:id/schedule", h.ReplaceWeeklyRules)
	staff.GET("/doctors/:id/special-dates", h.ListSpecialDates)
	staff.POST("/doctors/:id/special-dates", h.CreateSpecialDate)
	staff.DELETE("/doctors/:id/special-dates/:dateId", h.DeleteSpecialDate)
}

func (h *Handler) ReplaceWeeklyRules(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	var req struct {
		Rules []*WeeklyRule `json:"rules"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.ReplaceWeeklyRules(c.Request().Context(), doctorID, req.Rules); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rules": req.Rules})
}

func (h *Handler) ListWeeklyRules(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	rules, err := h.svc.ListWeeklyRules(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rules == nil {
		rules = []*WeeklyRule{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rules": rules})
}

func (h *Handler) CreateSpecialDate(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}

	var sd SpecialDate
	if err := c.Bind(&sd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sd.DoctorID = doctorID

	if err := h.svc.CreateSpecialDate(c.Request().Context(), &sd); err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
		case errors.Is(err, ErrDuplicateSpecialDate):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if h.cache != nil {
		h.cache.InvalidateSpecialDate(sd.DoctorID, sd.Date)
	}
	return c.JSON(http.StatusCreated, sd)
}

func (h *Handler) DeleteSpecialDate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("dateId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sd, err := h.svc.DeleteSpecialDate(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrSpecialDateNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "special date not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if h.cache != nil {
		h.cache.InvalidateSpecialDate(sd.DoctorID, sd.Date)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListSpecialDates(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor id")
	}
	dates, err := h.svc.ListSpecialDates(c.Request().Context(), doctorID,
		c.QueryParam("from"), c.QueryParam("to"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if dates == nil {
		dates = []*SpecialDate{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"special_dates": dates})
}
