package blog

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

func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.GET("/blogposts", h.ListPublished)
	authed.GET("/blogposts/search", h.Search)
	authed.GET("/my-blogposts", h.ListOwn)
	authed.GET("/blogposts/:id", h.Get)
	authed.POST("/blogposts", h.Create)
	authed.PUT("/blogposts/:id", h.Update)
	authed.DELETE("/blogposts/:id", h.Delete)
	authed.PUT("/blogposts/:id/status", h.UpdateStatus)
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "blogpost not found")
	case errors.Is(err, errs.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusForbidden, "you are not the author of this blogpost")
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func paramID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handler) Create(c echo.Context) error {
	in := new(CreateInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.Create(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"message":  "Blogpost created successfully",
		"blogpost": b,
	})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blogpost id")
	}
	b, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blogpost id")
	}
	in := new(UpdateInput)
	if err := c.Bind(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.Update(c.Request().Context(), id, auth.UserIDFromContext(c.Request().Context()), in)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Blogpost updated successfully",
		"blogpost": b,
	})
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blogpost id")
	}
	if err := h.svc.Delete(c.Request().Context(), id, auth.UserIDFromContext(c.Request().Context())); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"message": "Blogpost deleted successfully"})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid blogpost id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	b, err := h.svc.UpdateStatus(c.Request().Context(), id, auth.UserIDFromContext(c.Request().Context()), req.Status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message":  "Blogpost status updated successfully",
		"blogpost": b,
	})
}

func (h *Handler) ListPublished(c echo.Context) error {
	posts, err := h.svc.ListPublished(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *Handler) ListOwn(c echo.Context) error {
	posts, err := h.svc.ListOwn(c.Request().Context(), auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}

func (h *Handler) Search(c echo.Context) error {
	posts, err := h.svc.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
