package handler

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/storefront/internal/model"
    "github.com/iliyamo/storefront/internal/repository"
)

// InventoryStore is the stock side of the product repository.
type InventoryStore interface {
    Inventory(ctx context.Context) ([]model.InventoryItem, error)
    UpdateStock(ctx context.Context, sku string, stock int) error
}

// WebhookStore persists webhook registrations.
type WebhookStore interface {
    Register(ctx context.Context, event, url string) error
    List(ctx context.Context) ([]model.Webhook, error)
}

// IntegrationHandler serves the supplier and partner endpoints.  Every
// route is behind the API key check, not a user session.
type IntegrationHandler struct {
    Inventory InventoryStore
    Webhooks  WebhookStore
    Logger    zerolog.Logger
}

func NewIntegrationHandler(inv InventoryStore, hooks WebhookStore, logger zerolog.Logger) *IntegrationHandler {
    return &IntegrationHandler{Inventory: inv, Webhooks: hooks, Logger: logger}
}

// ListInventory returns id, sku, name and stock for every product.
func (h *IntegrationHandler) ListInventory(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    items, err := h.Inventory.Inventory(ctx)
    if err != nil {
        return failInternal(c, h.Logger, "list inventory", err)
    }
    if items == nil {
        items = []model.InventoryItem{}
    }
    return c.JSON(http.StatusOK, echo.Map{"products": items})
}

type stockUpdate struct {
    SKU   *string `json:"sku"`
    Stock *int    `json:"stock"`
}

// SyncInventory applies a batch of {sku, stock} updates.  Bad entries are
// counted, not fatal.
func (h *IntegrationHandler) SyncInventory(c echo.Context) error {
    var req struct {
        BatchUpdates json.RawMessage `json:"batchUpdates"`
    }
    if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    var entries []json.RawMessage
    if len(req.BatchUpdates) > 0 && string(req.BatchUpdates) != "null" {
        if err := json.Unmarshal(req.BatchUpdates, &entries); err != nil {
            return fail(c, http.StatusBadRequest, "batchUpdates must be an array")
        }
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()

    success, failed := 0, 0
    for _, raw := range entries {
        var u stockUpdate
        if err := json.Unmarshal(raw, &u); err != nil || u.SKU == nil || *u.SKU == "" || u.Stock == nil || *u.Stock < 0 {
            failed++
            continue
        }
        if err := h.Inventory.UpdateStock(ctx, *u.SKU, *u.Stock); err != nil {
            if !errors.Is(err, repository.ErrNotFound) {
                h.Logger.Error().Err(err).Str("sku", *u.SKU).Msg("inventory sync: update failed")
            }
            failed++
            continue
        }
        success++
    }
    h.Logger.Info().Int("success", success).Int("errors", failed).Msg("inventory sync completed")

    return c.JSON(http.StatusOK, echo.Map{
        "message":      "Inventory sync completed",
        "successCount": success,
        "errorCount":   failed,
        "total":        len(entries),
    })
}

// RegisterWebhook stores a callback URL for order.created or
// review.created.
func (h *IntegrationHandler) RegisterWebhook(c echo.Context) error {
    var req struct {
        Event string `json:"event"`
        URL   string `json:"url"`
    }
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    if req.Event == "" || req.URL == "" {
        return fail(c, http.StatusBadRequest, "event and url are required")
    }
    if req.Event != model.EventOrderCreated && req.Event != model.EventReviewCreated {
        return fail(c, http.StatusBadRequest, "invalid event type")
    }
    if !validWebhookURL(req.URL) {
        return fail(c, http.StatusBadRequest, "invalid webhook url")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Webhooks.Register(ctx, req.Event, req.URL); err != nil {
        return failInternal(c, h.Logger, "register webhook", err)
    }
    hooks, err := h.Webhooks.List(ctx)
    if err != nil {
        return failInternal(c, h.Logger, "list webhooks", err)
    }
    h.Logger.Info().Str("event", req.Event).Str("url", req.URL).Msg("webhook registered")

    return c.JSON(http.StatusOK, echo.Map{
        "message":            "Webhook registered successfully",
        "event":              req.Event,
        "url":                req.URL,
        "registeredWebhooks": len(hooks),
    })
}

// ListWebhooks returns every registration.
func (h *IntegrationHandler) ListWebhooks(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    hooks, err := h.Webhooks.List(ctx)
    if err != nil {
        return failInternal(c, h.Logger, "list webhooks", err)
    }
    if hooks == nil {
        hooks = []model.Webhook{}
    }
    return c.JSON(http.StatusOK, echo.Map{"webhooks": hooks})
}

func validWebhookURL(raw string) bool {
    u, err := url.Parse(raw)
    if err != nil || u.Host == "" {
        return false
    }
    return u.Scheme == "http" || u.Scheme == "https"
}
