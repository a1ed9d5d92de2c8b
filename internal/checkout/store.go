// Package checkout is the host side of a PayPal payment: where baskets and
// orders live and how a captured PayPal order fulfils them.
package checkout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yourorg/salesman-paypal/internal/payable"
)

var ErrNotFound = errors.New("checkout: not found")

// Store persists baskets and orders. Orders handed out are snapshots;
// changes go back through SaveOrder or RecordPayment.
type Store interface {
	Basket(id string) (*payable.Basket, error)
	SaveBasket(b *payable.Basket) error
	DeleteBasket(id string) error
	Order(id string) (*payable.Order, error)
	SaveOrder(o *payable.Order) error
	CreateOrderFromBasket(b *payable.Basket, status string) (*payable.Order, error)
	// ConvertBasket turns the basket into an order with the given status and
	// removes the basket. Once converted, the same basket id keeps resolving
	// to that order.
	ConvertBasket(basketID, status string) (*payable.Order, error)
	// RecordPayment adds p to the order unless a payment with the same
	// transaction id is already recorded. recorded reports which happened.
	RecordPayment(orderID string, p payable.Payment) (order *payable.Order, recorded bool, err error)
	// OrderByTransaction finds the order holding the payment transactionID.
	OrderByTransaction(transactionID string) (*payable.Order, error)
}

// InMemoryStore is a Store backed by maps. It is safe for concurrent use.
type InMemoryStore struct {
	mu           sync.RWMutex
	baskets      map[string]*payable.Basket
	orders       map[string]*payable.Order
	converted    map[string]string // basket id -> order id
	transactions map[string]string // transaction id -> order id
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		baskets:      make(map[string]*payable.Basket),
		orders:       make(map[string]*payable.Order),
		converted:    make(map[string]string),
		transactions: make(map[string]string),
	}
}

func (s *InMemoryStore) Basket(id string) (*payable.Basket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.baskets[id]
	if !ok {
		return nil, fmt.Errorf("basket %s: %w", id, ErrNotFound)
	}
	return b, nil
}

func (s *InMemoryStore) SaveBasket(b *payable.Basket) error {
	if b == nil || b.BasketID == "" {
		return errors.New("checkout: basket id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baskets[b.BasketID] = b
	return nil
}

func (s *InMemoryStore) DeleteBasket(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.baskets[id]; !ok {
		return fmt.Errorf("basket %s: %w", id, ErrNotFound)
	}
	delete(s.baskets, id)
	return nil
}

func (s *InMemoryStore) Order(id string) (*payable.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return o.Clone(), nil
}

func (s *InMemoryStore) SaveOrder(o *payable.Order) error {
	if o == nil || o.OrderID == "" {
		return errors.New("checkout: order id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putOrder(o.Clone())
	return nil
}

func (s *InMemoryStore) CreateOrderFromBasket(b *payable.Basket, status string) (*payable.Order, error) {
	o := payable.NewOrderFromBasket(b, status)
	if err := s.SaveOrder(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *InMemoryStore) ConvertBasket(basketID, status string) (*payable.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.baskets[basketID]; ok {
		o := payable.NewOrderFromBasket(b, status)
		s.putOrder(o)
		delete(s.baskets, basketID)
		s.converted[basketID] = o.OrderID
		return o.Clone(), nil
	}
	if orderID, ok := s.converted[basketID]; ok {
		return s.orders[orderID].Clone(), nil
	}
	return nil, fmt.Errorf("basket %s: %w", basketID, ErrNotFound)
}

func (s *InMemoryStore) RecordPayment(orderID string, p payable.Payment) (*payable.Order, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return nil, false, fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	if _, dup := o.FindPayment(p.TransactionID); dup {
		return o.Clone(), false, nil
	}
	o.Payments = append(o.Payments, p)
	s.transactions[p.TransactionID] = orderID
	return o.Clone(), true, nil
}

func (s *InMemoryStore) OrderByTransaction(transactionID string) (*payable.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orderID, ok := s.transactions[transactionID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, ErrNotFound)
	}
	return s.orders[orderID].Clone(), nil
}

// caller holds s.mu
func (s *InMemoryStore) putOrder(o *payable.Order) {
	s.orders[o.OrderID] = o
	for _, p := range o.Payments {
		s.transactions[p.TransactionID] = o.OrderID
	}
}
