package purchase

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/platform/auth"
	"github.com/ehealth/ehealth/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/my-purchases", h.ListOwn)

	authed.POST("/purchases", h.Create, auth.RequireRole("pharmacist"))
	authed.DELETE("/purchases/:id", h.Delete, auth.RequireRole("pharmacist"))
	authed.GET("/organization-purchases", h.ListByOrganization,
		auth.RequireRole("admin", "pharmacist"))
	authed.GET("/purchase-statistics", h.Statistics,
		auth.RequireRole("admin", "pharmacist"))
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "purchase record not found")
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "you did not log this purchase")
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) Create(c echo.Context) error {
	in := new(Input)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	rec, err := h.svc.Create(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":  "Purchase recorded successfully",
		"purchase": rec,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid purchase id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, auth.UserIDFromContext(c.Request().Context())); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Purchase record deleted successfully"})
}

func (h *Handler) ListOwn(c echo.Context) error {
	recs, err := h.svc.ListForUser(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) ListByOrganization(c echo.Context) error {
	p := pagination.FromContext(c)
	ctx := c.Request().Context()
	recs, total, err := h.svc.ListByOrganization(ctx, auth.OrganizationIDFromContext(ctx), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, int(total), p.Limit, p.Offset))
}

func (h *Handler) Statistics(c echo.Context) error {
	stats, err := h.svc.Statistics(c.Request().Context(), auth.OrganizationIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
