package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/iliyamo/storefront/internal/model"
	"github.com/iliyamo/storefront/internal/repository"
)

type fakeOrders struct {
	byUser    map[string][]model.Order
	lastQuery string
	lastLimit int
	err       error
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]model.Order, error) {
	return f.byUser[userID], f.err
}

func (f *fakeOrders) Search(_ context.Context, q string, limit int) ([]model.Order, error) {
	f.lastQuery, f.lastLimit = q, limit
	return nil, f.err
}

type fakeProducts struct {
	mu    sync.Mutex
	items map[string]*model.Product
	err   error
}

func newFakeProducts(ps ...model.Product) *fakeProducts {
	f := &fakeProducts{items: map[string]*model.Product{}}
	for i := range ps {
		p := ps[i]
		f.items[p.SKU] = &p
	}
	return f
}

func (f *fakeProducts) List(_ context.Context, category string) ([]model.Product, error) {
	var out []model.Product
	for _, p := range f.items {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	return out, f.err
}

func (f *fakeProducts) GetByID(_ context.Context, id int64) (*model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.items {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProducts) Inventory(context.Context) ([]model.InventoryItem, error) {
	var out []model.InventoryItem
	for _, p := range f.items {
		out = append(out, model.InventoryItem{ID: p.ID, SKU: p.SKU, Name: p.Name, Stock: p.Stock})
	}
	return out, f.err
}

func (f *fakeProducts) UpdateStock(_ context.Context, sku string, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[sku]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock = stock
	return nil
}

type fakeWebhooks struct {
	hooks []model.Webhook
	err   error
}

func (f *fakeWebhooks) Register(_ context.Context, event, url string) error {
	if f.err != nil {
		return f.err
	}
	for _, h := range f.hooks {
		if h.Event == event && h.URL == url {
			return nil
		}
	}
	f.hooks = append(f.hooks, model.Webhook{ID: uint64(len(f.hooks) + 1), Event: event, URL: url})
	return nil
}

func (f *fakeWebhooks) List(context.Context) ([]model.Webhook, error) { return f.hooks, f.err }

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeCounter struct{ err error }

func (f fakeCounter) Count(context.Context) (int64, error) { return 0, f.err }

type fakeUsers struct {
	byID map[string]*model.User
	err  error
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

var errDB = errors.New("db down")
