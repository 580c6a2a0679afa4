// Package memory provides an in-memory entity store fake with the same
// contract as the Postgres repositories, version checks included. It backs
// service tests that need real read-modify-write behavior rather than
// canned mock returns.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/product"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
	"github.com/procurex/procurement-backend/internal/store"
)

// Store holds all tables behind one mutex; per-call atomicity mirrors what
// the relational store guarantees.
type Store struct {
	mu       sync.Mutex
	vendors  map[uuid.UUID]vendor.Vendor
	products map[uuid.UUID]product.Product
	bids     map[uuid.UUID]bid.Bid
	offers   map[uuid.UUID]bid.CounterOffer

	negotiationErr error
}

// FailNegotiationWrites makes combined offer-and-bid writes fail with err
// until cleared with nil, leaving the store untouched. Tests use it to
// exercise the all-or-nothing contract of those writes.
func (s *Store) FailNegotiationWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.negotiationErr = err
}

func New() *Store {
	return &Store{
		vendors:  make(map[uuid.UUID]vendor.Vendor),
		products: make(map[uuid.UUID]product.Product),
		bids:     make(map[uuid.UUID]bid.Bid),
		offers:   make(map[uuid.UUID]bid.CounterOffer),
	}
}

// SeedVendor and SeedProduct install master data for tests.
func (s *Store) SeedVendor(v *vendor.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.ID] = *v
}

func (s *Store) SeedProduct(p *product.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = *p
}

// Vendors returns the vendor reader view.
func (s *Store) Vendors() *VendorRepo { return &VendorRepo{s: s} }

// Products returns the product reader view.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Bids returns the bid repository view.
func (s *Store) Bids() *BidRepo { return &BidRepo{s: s} }

// CounterOffers returns the counter-offer repository view.
func (s *Store) CounterOffers() *CounterOfferRepo { return &CounterOfferRepo{s: s} }

type VendorRepo struct{ s *Store }

func (r *VendorRepo) Create(_ context.Context, v *vendor.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.vendors[v.ID]; exists {
		return store.ErrDuplicateKey
	}
	r.s.vendors[v.ID] = *v
	return nil
}

func (r *VendorRepo) GetByID(_ context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vendors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := v
	return &out, nil
}

func (r *VendorRepo) Update(_ context.Context, v *vendor.Vendor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vendors[v.ID]; !ok {
		return store.ErrNotFound
	}
	r.s.vendors[v.ID] = *v
	return nil
}

func (r *VendorRepo) List(_ context.Context) ([]*vendor.Vendor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*vendor.Vendor
	for _, v := range r.s.vendors {
		item := v
		out = append(out, &item)
	}
	return out, nil
}

// HasLiveBids reports whether the vendor owns any non-terminal bid.
func (r *VendorRepo) HasLiveBids(_ context.Context, vendorID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bids {
		if b.VendorID == vendorID && !b.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.products[p.ID]; exists {
		return store.ErrDuplicateKey
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id uuid.UUID) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := p
	return &out, nil
}

func (r *ProductRepo) Update(_ context.Context, p *product.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*product.Product
	for _, p := range r.s.products {
		if p.VendorID == vendorID {
			item := p
			out = append(out, &item)
		}
	}
	return out, nil
}

type BidRepo struct{ s *Store }

func (r *BidRepo) Create(_ context.Context, b *bid.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.bids[b.ID]; exists {
		return store.ErrDuplicateKey
	}
	r.s.bids[b.ID] = *b
	return nil
}

func (r *BidRepo) GetByID(_ context.Context, id uuid.UUID) (*bid.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bids[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := b
	if b.PriorStatus != nil {
		prior := *b.PriorStatus
		out.PriorStatus = &prior
	}
	return &out, nil
}

// Update applies the optimistic version check: the caller's copy must match
// the stored version, and the stored version advances on success.
func (r *BidRepo) Update(_ context.Context, b *bid.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.bids[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != b.Version {
		return store.ErrVersionConflict
	}
	b.Version++
	r.s.bids[b.ID] = *b
	return nil
}

func (r *BidRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bids[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.bids, id)
	return nil
}

func (r *BidRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]*bid.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*bid.Bid
	for _, b := range r.s.bids {
		if b.VendorID == vendorID {
			item := b
			out = append(out, &item)
		}
	}
	return out, nil
}

type CounterOfferRepo struct{ s *Store }

func (r *CounterOfferRepo) Create(_ context.Context, c *bid.CounterOffer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.offers[c.ID]; exists {
		return store.ErrDuplicateKey
	}
	r.s.offers[c.ID] = *c
	return nil
}

func (r *CounterOfferRepo) GetByID(_ context.Context, id uuid.UUID) (*bid.CounterOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.offers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := c
	return &out, nil
}

func (r *CounterOfferRepo) Update(_ context.Context, c *bid.CounterOffer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.offers[c.ID]; !ok {
		return store.ErrNotFound
	}
	r.s.offers[c.ID] = *c
	return nil
}

// CreateWithBid installs the offer and the parent bid together or not at
// all, with the bid's version check applied first.
func (r *CounterOfferRepo) CreateWithBid(_ context.Context, c *bid.CounterOffer, b *bid.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.negotiationErr != nil {
		return r.s.negotiationErr
	}
	current, ok := r.s.bids[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != b.Version {
		return store.ErrVersionConflict
	}
	if _, exists := r.s.offers[c.ID]; exists {
		return store.ErrDuplicateKey
	}
	b.Version++
	r.s.bids[b.ID] = *b
	r.s.offers[c.ID] = *c
	return nil
}

// UpdateWithBid applies an offer resolution and the parent bid together or
// not at all.
func (r *CounterOfferRepo) UpdateWithBid(_ context.Context, c *bid.CounterOffer, b *bid.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.negotiationErr != nil {
		return r.s.negotiationErr
	}
	current, ok := r.s.bids[b.ID]
	if !ok {
		return store.ErrNotFound
	}
	if current.Version != b.Version {
		return store.ErrVersionConflict
	}
	if _, ok := r.s.offers[c.ID]; !ok {
		return store.ErrNotFound
	}
	b.Version++
	r.s.bids[b.ID] = *b
	r.s.offers[c.ID] = *c
	return nil
}

func (r *CounterOfferRepo) ListByBid(_ context.Context, bidID uuid.UUID) ([]*bid.CounterOffer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*bid.CounterOffer
	for _, c := range r.s.offers {
		if c.BidID == bidID {
			item := c
			out = append(out, &item)
		}
	}
	return out, nil
}

// ExpireStale flips stale PENDING/UNDER_REVIEW offers to EXPIRED in one pass.
func (r *CounterOfferRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, c := range r.s.offers {
		if c.IsStale(now) {
			c.Status = bid.CounterOfferExpired
			r.s.offers[id] = c
			n++
		}
	}
	return n, nil
}
