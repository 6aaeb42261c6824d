package appointment

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
	authed.GET("/appointments", h.List)
	authed.POST("/appointments", h.Book)
	authed.GET("/appointments/:id", h.Get)
	authed.DELETE("/appointments/:id", h.Cancel)
	authed.GET("/appointments/:id/prescriptions", h.Prescriptions)

	authed.GET("/organization-appointments", h.ListByOrganization,
		auth.RequireRole("admin", "doctor", "nurse", "pharmacist"))
	authed.GET("/my-patients", h.Patients, auth.RequireRole("doctor"))
	authed.PUT("/appointments/:id/complete", h.Complete, auth.RequireRole("doctor"))
	authed.PUT("/appointments/:id/status", h.UpdateStatus,
		auth.RequireRole("admin", "doctor", "nurse"))

	authed.POST("/admin-book-appointment", h.AdminBook, auth.RequireOrganizationAdmin())
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "you do not have access to this appointment")
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func paramID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handler) Book(c echo.Context) error {
	in := new(BookInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	a, err := h.svc.Book(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "Appointment booked successfully",
		"appointment": a,
	})
}

type adminBookRequest struct {
	BookInput
	UserID int64 `json:"user_id"`
}

func (h *Handler) AdminBook(c echo.Context) error {
	req := new(adminBookRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	orgID := auth.OrganizationIDFromContext(c.Request().Context())
	a, err := h.svc.AdminBook(c.Request().Context(), orgID, req.UserID, &req.BookInput)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":     "Appointment booked successfully",
		"appointment": a,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	ctx := c.Request().Context()
	detail, err := h.svc.Get(ctx, id,
		auth.UserIDFromContext(ctx), auth.OrganizationIDFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	appts, err := h.svc.ListForActor(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, appts)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.svc.Cancel(c.Request().Context(), id, auth.UserIDFromContext(c.Request().Context())); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Appointment cancelled successfully"})
}

func (h *Handler) ListByOrganization(c echo.Context) error {
	p := pagination.FromContext(c)
	ctx := c.Request().Context()
	appts, total, err := h.svc.ListByOrganization(ctx, auth.OrganizationIDFromContext(ctx), p)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(appts, int(total), p.Limit, p.Offset))
}

type completeRequest struct {
	Prescriptions []*PrescriptionInput `json:"prescriptions"`
}

func (h *Handler) Complete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	req := new(completeRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	detail, err := h.svc.Complete(c.Request().Context(), id,
		auth.UserIDFromContext(c.Request().Context()), req.Prescriptions)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":     "Appointment completed successfully",
		"appointment": detail,
	})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Appointment status updated successfully"})
}

func (h *Handler) Prescriptions(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	prescriptions, err := h.svc.Prescriptions(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, prescriptions)
}

func (h *Handler) Patients(c echo.Context) error {
	patients, err := h.svc.PatientsByDoctor(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, patients)
}
