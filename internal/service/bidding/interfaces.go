package bidding

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/product"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
)

// Service governs the bid lifecycle: creation, status transitions,
// counter-offer negotiation and the expiry sweep.
type Service interface {
	PlaceBid(ctx context.Context, req *PlaceBidRequest) (*bid.Bid, error)
	GetBid(ctx context.Context, bidID uuid.UUID) (*bid.Bid, error)
	ListBidsForVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error)
	TransitionBid(ctx context.Context, bidID uuid.UUID, target bid.Status) (*bid.Bid, error)
	DeleteBid(ctx context.Context, bidID uuid.UUID) error

	OpenCounterOffer(ctx context.Context, bidID uuid.UUID, terms *CounterOfferTerms) (*bid.CounterOffer, error)
	BeginCounterOfferReview(ctx context.Context, offerID uuid.UUID) (*bid.CounterOffer, error)
	ResolveCounterOffer(ctx context.Context, offerID uuid.UUID, outcome bid.CounterOfferStatus) (*bid.CounterOffer, error)
	ExpireStaleCounterOffers(ctx context.Context, now time.Time) (int64, error)
}

// PlaceBidRequest carries the inputs for bid creation.
type PlaceBidRequest struct {
	VendorID    uuid.UUID
	ProductID   uuid.UUID
	Amount      values.Money
	Title       string
	Description string
}

// CounterOfferTerms carries the negotiated amendment. TTL defaults to the
// service's configured counter-offer lifetime when zero.
type CounterOfferTerms struct {
	Amount        values.Money
	TimelineDays  int
	Modifications string
	Justification string
	TTL           time.Duration
}

// BidRepository persists bids. Update is version-checked and returns
// store.ErrVersionConflict when a concurrent writer got there first.
type BidRepository interface {
	Create(ctx context.Context, b *bid.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error)
	Update(ctx context.Context, b *bid.Bid) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error)
}

// CounterOfferRepository persists counter-offers. ExpireStale is a single
// status-predicated update so repeated or concurrent sweeps are idempotent.
// The WithBid variants write the offer and the parent bid atomically; a
// partial write must never become visible. Both propagate the bid's
// store.ErrVersionConflict.
type CounterOfferRepository interface {
	Create(ctx context.Context, c *bid.CounterOffer) error
	GetByID(ctx context.Context, id uuid.UUID) (*bid.CounterOffer, error)
	Update(ctx context.Context, c *bid.CounterOffer) error
	CreateWithBid(ctx context.Context, c *bid.CounterOffer, b *bid.Bid) error
	UpdateWithBid(ctx context.Context, c *bid.CounterOffer, b *bid.Bid) error
	ListByBid(ctx context.Context, bidID uuid.UUID) ([]*bid.CounterOffer, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// VendorReader resolves vendor references at bid creation.
type VendorReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
}

// ProductReader resolves product references at bid creation.
type ProductReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
}
