// Package store keeps one in-memory snapshot per CRM collection and
// guarantees that after any successful mutation resolves, every snapshot
// matches what a fresh gateway list would return.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pharmadesk/backend/internal/crm"
)

var (
	errMissingLeads         = errors.New("store: lead gateway is required")
	errMissingManufacturers = errors.New("store: manufacturer gateway is required")
	errMissingOrders        = errors.New("store: order gateway is required")
	errMissingDocuments     = errors.New("store: document gateway is required")
)

// LeadGateway is the slice of the data-access layer the store consumes for
// leads.
type LeadGateway interface {
	List(ctx context.Context) []crm.Lead
	Create(ctx context.Context, input crm.NewLead) (crm.Lead, error)
	Update(ctx context.Context, id string, patch crm.LeadPatch) (crm.Lead, error)
	Delete(ctx context.Context, id string) bool
}

// ManufacturerGateway mirrors LeadGateway for the supplier directory.
type ManufacturerGateway interface {
	List(ctx context.Context) []crm.Manufacturer
	Create(ctx context.Context, input crm.NewManufacturer) (crm.Manufacturer, error)
	Update(ctx context.Context, id string, patch crm.ManufacturerPatch) (crm.Manufacturer, error)
	Delete(ctx context.Context, id string) bool
}

// OrderGateway mirrors LeadGateway for orders.
type OrderGateway interface {
	List(ctx context.Context) []crm.Order
	Create(ctx context.Context, input crm.NewOrder) (crm.Order, error)
	Update(ctx context.Context, id string, patch crm.OrderPatch) (crm.Order, error)
	Delete(ctx context.Context, id string) bool
}

// DocumentGateway mirrors LeadGateway for documents.
type DocumentGateway interface {
	List(ctx context.Context) []crm.Document
	Create(ctx context.Context, input crm.NewDocument) (crm.Document, error)
	Update(ctx context.Context, id string, patch crm.DocumentPatch) (crm.Document, error)
	Delete(ctx context.Context, id string) bool
}

// Snapshot is one consistent view over all four collections.
type Snapshot struct {
	Leads         []crm.Lead
	Manufacturers []crm.Manufacturer
	Orders        []crm.Order
	Documents     []crm.Document
	RefreshedAt   time.Time
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Leads:         append([]crm.Lead(nil), s.Leads...),
		Manufacturers: append([]crm.Manufacturer(nil), s.Manufacturers...),
		Orders:        append([]crm.Order(nil), s.Orders...),
		Documents:     append([]crm.Document(nil), s.Documents...),
		RefreshedAt:   s.RefreshedAt,
	}
}

// Config carries the store's dependencies.
type Config struct {
	Leads         LeadGateway
	Manufacturers ManufacturerGateway
	Orders        OrderGateway
	Documents     DocumentGateway
	Clock         func() time.Time
	Logger        *zap.Logger
}

// Store is the client state manager. Mutations serialize through a mutex and
// re-pull every collection on success; readers see whole snapshots only.
type Store struct {
	leads         LeadGateway
	manufacturers ManufacturerGateway
	orders        OrderGateway
	documents     DocumentGateway
	clock         func() time.Time
	logger        *zap.Logger

	mu         sync.RWMutex
	snapshot   Snapshot
	mutationMu sync.Mutex
	hub        *watcherHub
}

// New constructs the store with empty collections. Call Refresh once before
// serving reads.
func New(cfg Config) (*Store, error) {
	if cfg.Leads == nil {
		return nil, errMissingLeads
	}
	if cfg.Manufacturers == nil {
		return nil, errMissingManufacturers
	}
	if cfg.Orders == nil {
		return nil, errMissingOrders
	}
	if cfg.Documents == nil {
		return nil, errMissingDocuments
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		leads:         cfg.Leads,
		manufacturers: cfg.Manufacturers,
		orders:        cfg.Orders,
		documents:     cfg.Documents,
		clock:         clock,
		logger:        logger,
		snapshot: Snapshot{
			Leads:         []crm.Lead{},
			Manufacturers: []crm.Manufacturer{},
			Orders:        []crm.Order{},
			Documents:     []crm.Document{},
		},
		hub: newWatcherHub(),
	}, nil
}

// Refresh re-pulls all four collections concurrently and replaces the
// snapshot wholesale once every list has returned. Readers never observe a
// partially refreshed state.
func (s *Store) Refresh(ctx context.Context) {
	var (
		leads         []crm.Lead
		manufacturers []crm.Manufacturer
		orders        []crm.Order
		documents     []crm.Document
	)

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		leads = s.leads.List(ctx)
	}()
	go func() {
		defer wg.Done()
		manufacturers = s.manufacturers.List(ctx)
	}()
	go func() {
		defer wg.Done()
		orders = s.orders.List(ctx)
	}()
	go func() {
		defer wg.Done()
		documents = s.documents.List(ctx)
	}()
	wg.Wait()

	refreshed := Snapshot{
		Leads:         leads,
		Manufacturers: manufacturers,
		Orders:        orders,
		Documents:     documents,
		RefreshedAt:   s.clock().UTC(),
	}

	s.mu.Lock()
	s.snapshot = refreshed
	s.mu.Unlock()

	s.logger.Debug("snapshot refreshed",
		zap.Int("leads", len(leads)),
		zap.Int("manufacturers", len(manufacturers)),
		zap.Int("orders", len(orders)),
		zap.Int("documents", len(documents)))

	s.hub.broadcast(Event{
		RefreshedAt:   refreshed.RefreshedAt,
		Leads:         len(leads),
		Manufacturers: len(manufacturers),
		Orders:        len(orders),
		Documents:     len(documents),
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// Leads returns a copy of the lead collection.
func (s *Store) Leads() []crm.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]crm.Lead(nil), s.snapshot.Leads...)
}

// Manufacturers returns a copy of the manufacturer collection.
func (s *Store) Manufacturers() []crm.Manufacturer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]crm.Manufacturer(nil), s.snapshot.Manufacturers...)
}

// Orders returns a copy of the order collection.
func (s *Store) Orders() []crm.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]crm.Order(nil), s.snapshot.Orders...)
}

// Documents returns a copy of the document collection.
func (s *Store) Documents() []crm.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]crm.Document(nil), s.snapshot.Documents...)
}

// AddLead creates a lead and refreshes all collections on success. A failed
// create propagates without touching the snapshot: there is nothing new to
// reflect.
func (s *Store) AddLead(ctx context.Context, input crm.NewLead) (crm.Lead, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	created, err := s.leads.Create(ctx, input)
	if err != nil {
		return crm.Lead{}, err
	}
	s.Refresh(ctx)
	return created, nil
}

// UpdateLead patches a lead and refreshes all collections on success.
func (s *Store) UpdateLead(ctx context.Context, id string, patch crm.LeadPatch) (crm.Lead, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	updated, err := s.leads.Update(ctx, id, patch)
	if err != nil {
		return crm.Lead{}, err
	}
	s.Refresh(ctx)
	return updated, nil
}

// DeleteLead removes a lead, refreshing only when the gateway reports
// success.
func (s *Store) DeleteLead(ctx context.Context, id string) bool {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	if !s.leads.Delete(ctx, id) {
		return false
	}
	s.Refresh(ctx)
	return true
}

// AddManufacturer creates a manufacturer and refreshes on success.
func (s *Store) AddManufacturer(ctx context.Context, input crm.NewManufacturer) (crm.Manufacturer, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	created, err := s.manufacturers.Create(ctx, input)
	if err != nil {
		return crm.Manufacturer{}, err
	}
	s.Refresh(ctx)
	return created, nil
}

// UpdateManufacturer patches a manufacturer and refreshes on success.
func (s *Store) UpdateManufacturer(ctx context.Context, id string, patch crm.ManufacturerPatch) (crm.Manufacturer, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	updated, err := s.manufacturers.Update(ctx, id, patch)
	if err != nil {
		return crm.Manufacturer{}, err
	}
	s.Refresh(ctx)
	return updated, nil
}

// DeleteManufacturer removes a manufacturer, refreshing only on success.
func (s *Store) DeleteManufacturer(ctx context.Context, id string) bool {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	if !s.manufacturers.Delete(ctx, id) {
		return false
	}
	s.Refresh(ctx)
	return true
}

// AddOrder creates an order and refreshes on success.
func (s *Store) AddOrder(ctx context.Context, input crm.NewOrder) (crm.Order, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	created, err := s.orders.Create(ctx, input)
	if err != nil {
		return crm.Order{}, err
	}
	s.Refresh(ctx)
	return created, nil
}

// UpdateOrder patches an order and refreshes on success.
func (s *Store) UpdateOrder(ctx context.Context, id string, patch crm.OrderPatch) (crm.Order, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	updated, err := s.orders.Update(ctx, id, patch)
	if err != nil {
		return crm.Order{}, err
	}
	s.Refresh(ctx)
	return updated, nil
}

// DeleteOrder removes an order, refreshing only on success.
func (s *Store) DeleteOrder(ctx context.Context, id string) bool {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	if !s.orders.Delete(ctx, id) {
		return false
	}
	s.Refresh(ctx)
	return true
}

// AddDocument creates a document and refreshes on success.
func (s *Store) AddDocument(ctx context.Context, input crm.NewDocument) (crm.Document, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	created, err := s.documents.Create(ctx, input)
	if err != nil {
		return crm.Document{}, err
	}
	s.Refresh(ctx)
	return created, nil
}

// UpdateDocument patches a document and refreshes on success.
func (s *Store) UpdateDocument(ctx context.Context, id string, patch crm.DocumentPatch) (crm.Document, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	updated, err := s.documents.Update(ctx, id, patch)
	if err != nil {
		return crm.Document{}, err
	}
	s.Refresh(ctx)
	return updated, nil
}

// DeleteDocument removes a document, refreshing only on success.
func (s *Store) DeleteDocument(ctx context.Context, id string) bool {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	if !s.documents.Delete(ctx, id) {
		return false
	}
	s.Refresh(ctx)
	return true
}

// Watch subscribes to refresh events until the context is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan Event, func()) {
	return s.hub.subscribe(ctx)
}
