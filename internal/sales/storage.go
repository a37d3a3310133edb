package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrCustomerNotFound is returned when no customer has the given CPF or ID.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrDuplicateCPF is returned when creating a customer whose CPF is taken.
var ErrDuplicateCPF = errors.New("customer with this cpf already exists")

// ErrEmptyID is returned when trying to store a customer with an empty ID.
var ErrEmptyID = errors.New("empty customer ID")

// Patch lists the customer fields a write touches. Nil fields are left alone;
// an empty non-nil Sales clears the list.
type Patch struct {
	Name         *string
	Phone        *string
	Sales        []Sale
	LastPurchase *time.Time
}

// Storage is the customers collection.
type Storage interface {
	Create(ctx context.Context, c *Customer) error
	FindByCPF(ctx context.Context, cpf string) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	Update(ctx context.Context, id string, p Patch) error
}

// LocalStorage provides an in-memory implementation for storing customers.
type LocalStorage struct {
	mu    sync.RWMutex
	m     map[string]*Customer
	byCPF map[string]string
}

// NewLocalStorage instantiates a new LocalStorage with empty maps.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m:     map[string]*Customer{},
		byCPF: map[string]string{},
	}
}

// Create stores a copy of c.
// Returns ErrEmptyID if the customer has an empty ID.
func (l *LocalStorage) Create(_ context.Context, c *Customer) error {
	if c.ID == "" {
		return ErrEmptyID
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byCPF[c.CPF]; ok {
		return ErrDuplicateCPF
	}
	l.m[c.ID] = c.Clone()
	l.byCPF[c.CPF] = c.ID
	return nil
}

// FindByCPF retrieves a customer by CPF.
// Returns ErrCustomerNotFound if the customer is not found.
func (l *LocalStorage) FindByCPF(_ context.Context, cpf string) (*Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	id, ok := l.byCPF[cpf]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	return l.m[id].Clone(), nil
}

// List returns every customer, most recent purchase first.
func (l *LocalStorage) List(_ context.Context) ([]*Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Customer, 0, len(l.m))
	for _, c := range l.m {
		out = append(out, c.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LastPurchase.Equal(out[j].LastPurchase) {
			return out[i].ID < out[j].ID
		}
		return out[i].LastPurchase.After(out[j].LastPurchase)
	})
	return out, nil
}

// Update applies p to the customer with the given ID.
func (l *LocalStorage) Update(_ context.Context, id string, p Patch) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.m[id]
	if !ok {
		return ErrCustomerNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Sales != nil {
		c.Sales = make([]Sale, len(p.Sales))
		copy(c.Sales, p.Sales)
	}
	if p.LastPurchase != nil {
		c.LastPurchase = *p.LastPurchase
	}
	return nil
}
