package handler

import (
    "context"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/storefront/internal/middleware"
    "github.com/iliyamo/storefront/internal/model"
)

// OrderStore is the read side of the order repository.
type OrderStore interface {
    ListByUser(ctx context.Context, userID string) ([]model.Order, error)
    Search(ctx context.Context, q string, limit int) ([]model.Order, error)
}

type OrderHandler struct {
    Orders OrderStore
    Logger zerolog.Logger
}

func NewOrderHandler(orders OrderStore, logger zerolog.Logger) *OrderHandler {
    return &OrderHandler{Orders: orders, Logger: logger}
}

// MyOrders lists the orders of the session's user, newest first.
func (h *OrderHandler) MyOrders(c echo.Context) error {
    id, ok := middleware.CurrentIdentity(c)
    if !ok {
        return fail(c, http.StatusUnauthorized, "not authenticated")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    orders, err := h.Orders.ListByUser(ctx, id.UserID)
    if err != nil {
        return failInternal(c, h.Logger, "list orders", err)
    }
    if orders == nil {
        orders = []model.Order{}
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// Search lets admins look orders up by id, status or customer email.
// GET /api/admin/orders/search?q=&limit=
func (h *OrderHandler) Search(c echo.Context) error {
    q := c.QueryParam("q")
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n <= 0 {
            return fail(c, http.StatusBadRequest, "invalid limit")
        }
        limit = n
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    orders, err := h.Orders.Search(ctx, q, limit)
    if err != nil {
        return failInternal(c, h.Logger, "search orders", err)
    }
    if orders == nil {
        orders = []model.Order{}
    }
    return c.JSON(http.StatusOK, echo.Map{"query": q, "orders": orders})
}
