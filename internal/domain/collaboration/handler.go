package collaboration

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the lifecycle endpoints. Filing a request is public;
// everything else belongs to the platform operator.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/collaboration-request", h.CreateRequest)

	authed.GET("/collaboration-requests", h.ListPending, auth.RequirePlatformAdmin())
	authed.POST("/collaboration-request/approve/:userID", h.Approve, auth.RequirePlatformAdmin())
	authed.POST("/collaboration-request/decline/:userID", h.Decline, auth.RequirePlatformAdmin())
	authed.POST("/stop-collaboration", h.Stop, auth.RequirePlatformAdmin())
	authed.POST("/recollaborate", h.Recollaborate, auth.RequirePlatformAdmin())
}

// Validation and uniqueness failures on a request both come back as 400,
// matching the original controller's validator responses.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Collaboration request not found")
	case errors.Is(err, errs.ErrValidation), errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) CreateRequest(c echo.Context) error {
	in := new(RequestInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	res, err := h.svc.CreateRequest(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":      "Collaboration request submitted successfully, please wait for 1 to 3 working days for approval.",
		"organization": res.Organization,
		"user":         res.Admin,
	})
}

func paramInt64(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// organizationRef is the body of the stop and recollaborate actions, which
// address an organization rather than a single user.
type organizationRef struct {
	OrganizationID int64 `json:"organization_id"`
}

func (h *Handler) Approve(c echo.Context) error {
	userID, err := paramInt64(c, "userID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	u, err := h.svc.Approve(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Collaboration request approved successfully",
		"user":    u,
	})
}

func (h *Handler) Decline(c echo.Context) error {
	userID, err := paramInt64(c, "userID")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	u, err := h.svc.Decline(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Collaboration request declined successfully",
		"user":    u,
	})
}

func (h *Handler) Stop(c echo.Context) error {
	in := new(organizationRef)
	if err := c.Bind(in); err != nil || in.OrganizationID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "organization_id is required")
	}
	if err := h.svc.Stop(c.Request().Context(), in.OrganizationID); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Collaboration stopped successfully"})
}

func (h *Handler) Recollaborate(c echo.Context) error {
	in := new(organizationRef)
	if err := c.Bind(in); err != nil || in.OrganizationID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "organization_id is required")
	}
	admin, err := h.svc.Recollaborate(c.Request().Context(), in.OrganizationID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Organization recollaborated successfully",
		"admin":   admin,
	})
}

func (h *Handler) ListPending(c echo.Context) error {
	requests, err := h.svc.ListPending(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, requests)
}
