package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookcatalog/catalog-service/catalog/internal/errs"
	"github.com/bookcatalog/catalog-service/catalog/internal/model"
	md "github.com/bookcatalog/catalog-service/pkg/middleware"
	"github.com/bookcatalog/catalog-service/pkg/validate"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

type Handler struct {
	catalogSvc CatalogService
	log        *zap.Logger
}

func New(catalogSvc CatalogService, log *zap.Logger) *Handler {
	return &Handler{
		catalogSvc: catalogSvc,
		log:        log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.GET("/books", h.ListBooks)
	api.GET("/books/search", h.SearchBooks)
	api.GET("/books/:id", h.GetBook)
	api.POST("/books", h.CreateBook)
	api.PUT("/books/:id", h.UpdateBook)
	api.DELETE("/books/:id", h.DeleteBook)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListBooks(c echo.Context) error {
	var req model.ListBooksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "page or size is invalid")
	}
	if req.Page == 0 {
		req.Page = defaultPage
	}
	if req.Size == 0 {
		req.Size = defaultPageSize
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.ErrInvalidPaging.Error())
	}

	books, err := h.catalogSvc.ListBooks(c.Request().Context(), req.Page, req.Size)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidPaging) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.serverError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	book, err := h.catalogSvc.GetBook(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return h.serverError(err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) CreateBook(c echo.Context) error {
	var candidate model.BookCandidate
	if err := c.Bind(&candidate); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	book, err := h.catalogSvc.CreateBook(c.Request().Context(), candidate)
	if err != nil {
		var vErr *errs.ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(http.StatusBadRequest, errs.NewValidationErrorResponse(vErr.Violations))
		}
		return h.serverError(err)
	}

	c.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/v1/books/%d", book.ID))
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var candidate model.BookCandidate
	if err := c.Bind(&candidate); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.catalogSvc.UpdateBook(c.Request().Context(), id, candidate); err != nil {
		var vErr *errs.ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(http.StatusBadRequest, errs.NewValidationErrorResponse(vErr.Violations))
		}
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return h.serverError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.catalogSvc.DeleteBook(c.Request().Context(), id); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return h.serverError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) SearchBooks(c echo.Context) error {
	books, err := h.catalogSvc.SearchBooks(c.Request().Context(), c.QueryParam("query"))
	if err != nil {
		if errors.Is(err, errs.ErrInvalidQuery) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return h.serverError(err)
	}
	return c.JSON(http.StatusOK, books)
}

func bookID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errors.New("id is invalid")
	}
	return id, nil
}

func (h *Handler) serverError(err error) *echo.HTTPError {
	if errors.Is(err, errs.ErrStorageUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
