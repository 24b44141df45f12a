package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/storefront/internal/model"
    "github.com/iliyamo/storefront/internal/repository"
)

// CatalogStore is the public read side of the product repository.
type CatalogStore interface {
    List(ctx context.Context, category string) ([]model.Product, error)
    GetByID(ctx context.Context, id int64) (*model.Product, error)
}

// ProductHandler serves the public catalog.  Responses carry no per-user
// data so they may be cached.
type ProductHandler struct {
    Products CatalogStore
    Logger   zerolog.Logger
}

func NewProductHandler(products CatalogStore, logger zerolog.Logger) *ProductHandler {
    return &ProductHandler{Products: products, Logger: logger}
}

// List returns the catalog, optionally filtered by ?category=.
func (h *ProductHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    products, err := h.Products.List(ctx, strings.TrimSpace(c.QueryParam("category")))
    if err != nil {
        return failInternal(c, h.Logger, "list products", err)
    }
    if products == nil {
        products = []model.Product{}
    }
    return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Get returns one product by numeric id.
func (h *ProductHandler) Get(c echo.Context) error {
    id, err := strconv.ParseInt(c.Param("id"), 10, 64)
    if err != nil || id <= 0 {
        return fail(c, http.StatusBadRequest, "invalid product id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    p, err := h.Products.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return fail(c, http.StatusNotFound, "product not found")
        }
        return failInternal(c, h.Logger, "get product", err)
    }
    return c.JSON(http.StatusOK, p)
}
