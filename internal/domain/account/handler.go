package account

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehealth/ehealth/internal/domain/errs"
	"github.com/ehealth/ehealth/internal/platform/auth"
)

type Handler struct {
	svc         *Service
	revocations *auth.RevocationStore
}

func NewHandler(svc *Service, revocations *auth.RevocationStore) *Handler {
	return &Handler{svc: svc, revocations: revocations}
}

// RegisterRoutes mounts the account endpoints. public carries no auth
// middleware; authed requires a valid bearer token.
func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/user-register", h.RegisterUser)
	public.POST("/login", h.Login)

	authed.POST("/logout", h.Logout)
	authed.GET("/profile", h.Profile)
	authed.PUT("/update-profile", h.UpdateProfile)
	authed.PUT("/update-password", h.UpdatePassword)
	authed.GET("/search-user", h.SearchPatients,
		auth.RequireRole(RoleAdmin, RoleDoctor, RoleNurse, RolePharmacist))

	authed.POST("/admin-register", h.RegisterAdmin, auth.RequirePlatformAdmin())
	authed.PUT("/update-status/:id", h.UpdateStatus, auth.RequirePlatformAdmin())

	authed.POST("/staff-register", h.RegisterStaff, auth.RequireOrganizationAdmin())
	authed.GET("/view-all-staff", h.ListMembers, auth.RequireOrganizationAdmin())
	authed.GET("/view-staff/:role", h.ListMembersByRole, auth.RequireOrganizationAdmin())
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func toHTTPError(err error) error {
	var gerr *GateError
	switch {
	case errors.As(err, &gerr):
		return echo.NewHTTPError(gerr.Code, gerr.Message)
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	case errors.Is(err, errs.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) RegisterUser(c echo.Context) error {
	in := new(RegisterInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

func (h *Handler) RegisterAdmin(c echo.Context) error {
	in := new(RegisterInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.RegisterAdmin(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Admin registered successfully",
		"user":    u,
	})
}

func (h *Handler) RegisterStaff(c echo.Context) error {
	in := new(RegisterInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	orgID := auth.OrganizationIDFromContext(c.Request().Context())
	u, err := h.svc.RegisterStaff(c.Request().Context(), in, orgID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Staff registered successfully",
		"user":    u,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, token, _, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user":         u,
		"access_token": token,
		"token_type":   "Bearer",
	})
}

// Logout revokes the presented token so it cannot be replayed until expiry.
func (h *Handler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	jti := auth.JTIFromContext(ctx)
	exp := auth.TokenExpiryFromContext(ctx)
	if err := h.revocations.Revoke(ctx, jti, exp); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Logged out successfully"})
}

func (h *Handler) Profile(c echo.Context) error {
	u, err := h.svc.Get(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	in := new(ProfileUpdate)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Profile updated successfully",
		"user":    u,
	})
}

type passwordUpdateRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) UpdatePassword(c echo.Context) error {
	req := new(passwordUpdateRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	err := h.svc.ChangePassword(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()),
		req.CurrentPassword, req.NewPassword)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Password updated successfully"})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
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
	return c.JSON(http.StatusOK, map[string]any{"message": "Status updated successfully"})
}

func (h *Handler) SearchPatients(c echo.Context) error {
	users, err := h.svc.SearchPatients(c.Request().Context(), c.QueryParam("icno"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) ListMembers(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.svc.ListMembers(ctx,
		auth.OrganizationIDFromContext(ctx), auth.UserIDFromContext(ctx))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *Handler) ListMembersByRole(c echo.Context) error {
	ctx := c.Request().Context()
	role := c.Param("role")
	switch role {
	case RoleAdmin, RoleDoctor, RoleNurse, RolePharmacist, RoleUser:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}
	users, err := h.svc.ListMembersByRole(ctx, auth.OrganizationIDFromContext(ctx), role)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}
