package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/storefront/internal/model"
)

// WebhookRepo persists integration callback registrations.
type WebhookRepo struct{ DB *sql.DB }

func NewWebhookRepo(db *sql.DB) *WebhookRepo { return &WebhookRepo{DB: db} }

// Register stores (event, url).  Registering the same pair twice is a no-op.
func (r *WebhookRepo) Register(ctx context.Context, event, url string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO webhooks (event, url) VALUES (?,?)", event, url)
	if err != nil && !isDuplicate(err) {
		return fmt.Errorf("insert webhook: %w", err)
	}
	return nil
}

// List returns every registration in insertion order.
func (r *WebhookRepo) List(ctx context.Context) ([]model.Webhook, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, event, url, created_at FROM webhooks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list webhooks: %w", err)
	}
	defer rows.Close()

	out := []model.Webhook{}
	for rows.Next() {
		var w model.Webhook
		if err := rows.Scan(&w.ID, &w.Event, &w.URL, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
