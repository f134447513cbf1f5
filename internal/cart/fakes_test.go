package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-cart-go/internal/order"
)

type fakeStorage struct {
	mu      sync.Mutex
	carts   map[string][]byte
	saveErr error
	loadErr error
	saves   int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{carts: make(map[string][]byte)}
}

func (f *fakeStorage) Load(ctx context.Context, userID string) ([]LineItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return DecodeItems(f.carts[userID])
}

func (f *fakeStorage) Save(ctx context.Context, userID string, items []LineItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := EncodeItems(items)
	if err != nil {
		return err
	}
	f.carts[userID] = data
	f.saves++
	return nil
}

func (f *fakeStorage) failSaves(err error) {
	f.mu.Lock()
	f.saveErr = err
	f.mu.Unlock()
}

func (f *fakeStorage) stored(userID string) []LineItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, _ := DecodeItems(f.carts[userID])
	return items
}

type fakeLedger struct {
	mu        sync.Mutex
	orders    map[string][]order.Order
	appendErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{orders: make(map[string][]order.Order)}
}

func (f *fakeLedger) Append(ctx context.Context, userID string, o order.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.orders[userID] = append([]order.Order{o}, f.orders[userID]...)
	return nil
}

func (f *fakeLedger) List(ctx context.Context, userID string) ([]order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]order.Order(nil), f.orders[userID]...), nil
}

type fakePublisher struct {
	published []order.Order
	err       error
}

func (f *fakePublisher) PublishOrderPlaced(ctx context.Context, o order.Order) error {
	f.published = append(f.published, o)
	return f.err
}

type staticSession struct{ userID string }

func (s staticSession) CurrentUserID(context.Context) (string, bool) {
	return s.userID, s.userID != ""
}

var (
	errDiskFull  = errors.New("disk full")
	fixedNow     = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)
	fixedOrderID = func(time.Time) string { return "ORDER-test" }
)

func product(id string, price int64) Product {
	return Product{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(price), Image: id + ".png", Category: "fruits"}
}
