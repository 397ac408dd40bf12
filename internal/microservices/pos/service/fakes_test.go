package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/common/pagination"
	"restaurant-pos/internal/microservices/pos/domain/dao"
	"restaurant-pos/internal/microservices/pos/repository"
)

type fakeMenu struct {
	items map[string]dao.MenuItem
}

func newFakeMenu(items ...dao.MenuItem) *fakeMenu {
	m := &fakeMenu{items: map[string]dao.MenuItem{}}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (f *fakeMenu) List(_ context.Context, category string, p pagination.Params) ([]dao.MenuItem, int, error) {
	var out []dao.MenuItem
	for _, it := range f.items {
		if category == "" || it.Category == category {
			out = append(out, it)
		}
	}
	return out, len(out), nil
}

func (f *fakeMenu) Get(_ context.Context, id string) (dao.MenuItem, error) {
	it, ok := f.items[id]
	if !ok {
		return dao.MenuItem{}, repository.ErrNotFound
	}
	return it, nil
}

func (f *fakeMenu) Create(_ context.Context, item dao.MenuItem) (dao.MenuItem, error) {
	f.items[item.ID] = item
	return item, nil
}

type fakeOrders struct {
	mu         sync.Mutex
	orders     map[string]dao.Order
	log        map[string][]dao.StatusLogEntry
	seq        int
	duplicates int
	addErr     error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[string]dao.Order{}, log: map[string][]dao.StatusLogEntry{}}
}

func (f *fakeOrders) NextSequence(context.Context, time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq + 1, nil
}

func (f *fakeOrders) AddOrder(_ context.Context, o dao.Order, changedBy string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return 0, f.addErr
	}
	if f.duplicates > 0 {
		f.duplicates--
		f.seq++
		return 0, repository.ErrDuplicateOrderNumber
	}
	f.seq++
	o.ID = int64(f.seq)
	f.orders[o.OrderNumber] = o
	f.log[o.OrderNumber] = append(f.log[o.OrderNumber], dao.StatusLogEntry{Status: o.Status, ChangedBy: changedBy})
	return o.ID, nil
}

func (f *fakeOrders) GetOrder(_ context.Context, number string) (dao.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[number]
	if !ok {
		return dao.Order{}, repository.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) ListOrders(_ context.Context, status dao.Status, p pagination.Params) ([]dao.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dao.Order
	for _, o := range f.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (f *fakeOrders) GetTimeline(_ context.Context, number string) ([]dao.StatusLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[number]; !ok {
		return nil, repository.ErrNotFound
	}
	return f.log[number], nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, number string, to dao.Status, changedBy, notes string) (dao.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[number]
	if !ok {
		return "", repository.ErrNotFound
	}
	if !dao.CanTransition(o.Status, to) {
		return "", repository.ErrInvalidTransition
	}
	old := o.Status
	o.Status = to
	f.orders[number] = o
	f.log[number] = append(f.log[number], dao.StatusLogEntry{Status: to, ChangedBy: changedBy, Notes: notes})
	return old, nil
}

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

// fakePublisher records messages. When release is set, Publish signals
// entered and blocks until release is closed.
type fakePublisher struct {
	mu      sync.Mutex
	sent    []published
	err     error
	entered chan struct{}
	release chan struct{}
}

func (f *fakePublisher) Publish(_ context.Context, exchange, key string, msg amqp091.Publishing) error {
	if f.release != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

type fakeReports struct {
	summary  dao.SalesSummary
	workers  []dao.Worker
	from, to time.Time
}

func (f *fakeReports) SalesSummary(_ context.Context, from, to time.Time, _ int) (dao.SalesSummary, error) {
	f.from, f.to = from, to
	return f.summary, nil
}

func (f *fakeReports) Workers(context.Context) ([]dao.Worker, error) {
	return append([]dao.Worker(nil), f.workers...), nil
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, number string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, number)
	return "s3://bucket/" + number, nil
}

var errBroker = errors.New("broker down")

func qty(n int) *int { return &n }
