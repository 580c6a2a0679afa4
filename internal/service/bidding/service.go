package bidding

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/errors"
	"github.com/procurex/procurement-backend/internal/store"
)

// service implements the Service interface
type service struct {
	bidRepo     BidRepository
	offerRepo   CounterOfferRepository
	vendorRepo  VendorReader
	productRepo ProductReader

	defaultOfferTTL time.Duration
	now             func() time.Time
}

// Option configures optional service behavior.
type Option func(*service)

// WithCounterOfferTTL overrides the default validity window applied to
// counter-offers opened without an explicit TTL.
func WithCounterOfferTTL(ttl time.Duration) Option {
	return func(s *service) {
		if ttl > 0 {
			s.defaultOfferTTL = ttl
		}
	}
}

// NewService creates a new bid lifecycle service
func NewService(
	bidRepo BidRepository,
	offerRepo CounterOfferRepository,
	vendorRepo VendorReader,
	productRepo ProductReader,
	opts ...Option,
) Service {
	s := &service{
		bidRepo:         bidRepo,
		offerRepo:       offerRepo,
		vendorRepo:      vendorRepo,
		productRepo:     productRepo,
		defaultOfferTTL: 72 * time.Hour,
		now:             func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid creates a bid in SUBMITTED. Validation failures create no record.
func (s *service) PlaceBid(ctx context.Context, req *PlaceBidRequest) (*bid.Bid, error) {
	if req == nil {
		return nil, errors.NewValidationError("INVALID_REQUEST", "request cannot be nil")
	}
	if req.VendorID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_VENDOR_ID", "vendor ID is required")
	}
	if req.ProductID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_PRODUCT_ID", "product ID is required")
	}
	if !req.Amount.IsPositive() {
		return nil, errors.NewValidationError("INVALID_AMOUNT", "amount must be positive")
	}

	v, err := s.vendorRepo.GetByID(ctx, req.VendorID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewValidationError("UNKNOWN_VENDOR", "vendor does not resolve")
		}
		return nil, errors.NewDataUnavailableError("get vendor", err)
	}
	if !v.Active {
		return nil, errors.NewValidationError("VENDOR_INACTIVE", "vendor is deactivated")
	}

	p, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.NewValidationError("UNKNOWN_PRODUCT", "product does not resolve")
		}
		return nil, errors.NewDataUnavailableError("get product", err)
	}
	if p.VendorID != v.ID {
		return nil, errors.NewValidationError("PRODUCT_OWNERSHIP", "product is not owned by the bidding vendor")
	}

	newBid, err := bid.NewBid(req.VendorID, req.ProductID, req.Amount, req.Title, req.Description)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_BID", err.Error())
	}

	if err := s.bidRepo.Create(ctx, newBid); err != nil {
		return nil, errors.NewDataUnavailableError("create bid", err)
	}
	return newBid, nil
}

// GetBid retrieves a specific bid
func (s *service) GetBid(ctx context.Context, bidID uuid.UUID) (*bid.Bid, error) {
	return s.getBid(ctx, bidID)
}

// ListBidsForVendor returns all bids submitted by a vendor
func (s *service) ListBidsForVendor(ctx context.Context, vendorID uuid.UUID) ([]*bid.Bid, error) {
	bids, err := s.bidRepo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, errors.NewDataUnavailableError("list bids", err)
	}
	return bids, nil
}

// TransitionBid applies a status change per the lifecycle graph. The
// version-checked update serializes racing transitions on the same bid; the
// loser gets a ConflictError, never a silent overwrite.
func (s *service) TransitionBid(ctx context.Context, bidID uuid.UUID, target bid.Status) (*bid.Bid, error) {
	b, err := s.getBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if target == bid.StatusCounterOffered {
		// Records PriorStatus; legality matches the graph.
		if err := b.MarkCounterOffered(); err != nil {
			return nil, errors.NewInvalidTransitionError(b.Status.String(), target.String())
		}
	} else if err := b.TransitionTo(target); err != nil {
		return nil, errors.NewInvalidTransitionError(b.Status.String(), target.String())
	}

	if err := s.updateBid(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBid removes a bid. Terminal bids, awarded ones in particular, are
// kept: deleting an awarded bid would destroy the procurement record.
func (s *service) DeleteBid(ctx context.Context, bidID uuid.UUID) error {
	b, err := s.getBid(ctx, bidID)
	if err != nil {
		return err
	}

	if b.Status.IsTerminal() {
		return errors.NewInvalidStateError("BID_TERMINAL",
			"bid in status "+b.Status.String()+" cannot be deleted")
	}

	if err := s.bidRepo.Delete(ctx, bidID); err != nil {
		return errors.NewDataUnavailableError("delete bid", err)
	}
	return nil
}

// OpenCounterOffer creates a PENDING counter-offer against a bid that is
// SUBMITTED or UNDER_EVALUATION and moves the bid to COUNTER_OFFERED.
func (s *service) OpenCounterOffer(ctx context.Context, bidID uuid.UUID, terms *CounterOfferTerms) (*bid.CounterOffer, error) {
	if terms == nil {
		return nil, errors.NewValidationError("INVALID_REQUEST", "terms cannot be nil")
	}

	b, err := s.getBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	if err := b.MarkCounterOffered(); err != nil {
		return nil, errors.NewInvalidStateError("BID_NOT_NEGOTIABLE", err.Error())
	}

	ttl := terms.TTL
	if ttl == 0 {
		ttl = s.defaultOfferTTL
	}

	offer, err := bid.NewCounterOffer(bidID, terms.Amount, terms.TimelineDays, terms.Modifications, terms.Justification, ttl)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_COUNTER_OFFER", err.Error())
	}

	if err := s.offerRepo.CreateWithBid(ctx, offer, b); err != nil {
		return nil, negotiationWriteError(err, "create counter offer")
	}
	return offer, nil
}

// BeginCounterOfferReview moves a pending counter-offer under review.
func (s *service) BeginCounterOfferReview(ctx context.Context, offerID uuid.UUID) (*bid.CounterOffer, error) {
	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}

	if offer.Status.IsTerminal() {
		return nil, errors.NewAlreadyResolvedError("counter offer", offer.Status.String())
	}
	if err := offer.BeginReview(); err != nil {
		return nil, errors.NewInvalidStateError("OFFER_NOT_PENDING", err.Error())
	}

	if err := s.offerRepo.Update(ctx, offer); err != nil {
		return nil, errors.NewDataUnavailableError("update counter offer", err)
	}
	return offer, nil
}

// ResolveCounterOffer accepts or rejects a counter-offer. Acceptance replaces
// the parent bid's amount and moves it to UNDER_EVALUATION; rejection reverts
// the bid to the status recorded when the counter-offer was opened.
func (s *service) ResolveCounterOffer(ctx context.Context, offerID uuid.UUID, outcome bid.CounterOfferStatus) (*bid.CounterOffer, error) {
	if outcome != bid.CounterOfferAccepted && outcome != bid.CounterOfferRejected {
		return nil, errors.NewValidationError("INVALID_OUTCOME",
			"outcome must be accepted or rejected, got "+outcome.String())
	}

	offer, err := s.getOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status.IsTerminal() {
		return nil, errors.NewAlreadyResolvedError("counter offer", offer.Status.String())
	}

	b, err := s.getBid(ctx, offer.BidID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if outcome == bid.CounterOfferAccepted {
		if err := offer.Accept(now); err != nil {
			return nil, errors.NewAlreadyResolvedError("counter offer", offer.Status.String())
		}
		if err := b.ApplyCounterOffer(offer.Amount); err != nil {
			return nil, errors.NewInvalidStateError("BID_NOT_COUNTER_OFFERED", err.Error())
		}
	} else {
		if err := offer.Reject(now); err != nil {
			return nil, errors.NewAlreadyResolvedError("counter offer", offer.Status.String())
		}
		if err := b.RevertCounterOffer(); err != nil {
			return nil, errors.NewInvalidStateError("BID_NOT_COUNTER_OFFERED", err.Error())
		}
	}

	if err := s.offerRepo.UpdateWithBid(ctx, offer, b); err != nil {
		return nil, negotiationWriteError(err, "update counter offer")
	}
	return offer, nil
}

// ExpireStaleCounterOffers sweeps PENDING and UNDER_REVIEW counter-offers
// whose expiry has passed. The sweep is a single status-predicated update, so
// duplicate or concurrent invocations are safe.
func (s *service) ExpireStaleCounterOffers(ctx context.Context, now time.Time) (int64, error) {
	expired, err := s.offerRepo.ExpireStale(ctx, now)
	if err != nil {
		return 0, errors.NewDataUnavailableError("expire counter offers", err)
	}
	return expired, nil
}

func (s *service) getBid(ctx context.Context, bidID uuid.UUID) (*bid.Bid, error) {
	b, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrBidNotFound
		}
		return nil, errors.NewDataUnavailableError("get bid", err)
	}
	return b, nil
}

func (s *service) getOffer(ctx context.Context, offerID uuid.UUID) (*bid.CounterOffer, error) {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrCounterOfferNotFound
		}
		return nil, errors.NewDataUnavailableError("get counter offer", err)
	}
	return offer, nil
}

func (s *service) updateBid(ctx context.Context, b *bid.Bid) error {
	if err := s.bidRepo.Update(ctx, b); err != nil {
		if stderrors.Is(err, store.ErrVersionConflict) {
			return errors.NewConflictError("bid was modified concurrently")
		}
		return errors.NewDataUnavailableError("update bid", err)
	}
	return nil
}

func negotiationWriteError(err error, op string) error {
	if stderrors.Is(err, store.ErrVersionConflict) {
		return errors.NewConflictError("bid was modified concurrently")
	}
	if stderrors.Is(err, store.ErrNotFound) {
		return errors.ErrBidNotFound
	}
	return errors.NewDataUnavailableError(op, err)
}
