package bidding_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/errors"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/service/bidding"
	"github.com/procurex/procurement-backend/internal/testutil/fixtures"
	"github.com/procurex/procurement-backend/internal/testutil/memory"
)

type env struct {
	svc       bidding.Service
	store     *memory.Store
	vendorID  uuid.UUID
	productID uuid.UUID
}

func newEnv(t *testing.T) *env {
	st := memory.New()
	v := fixtures.NewVendorBuilder(t).Build()
	p := fixtures.NewProductBuilder(t).WithVendorID(v.ID).Build()
	st.SeedVendor(v)
	st.SeedProduct(p)

	svc := bidding.NewService(st.Bids(), st.CounterOffers(), st.Vendors(), st.Products())
	return &env{svc: svc, store: st, vendorID: v.ID, productID: p.ID}
}

func (e *env) placeBid(t *testing.T) *bid.Bid {
	b, err := e.svc.PlaceBid(context.Background(), &bidding.PlaceBidRequest{
		VendorID:  e.vendorID,
		ProductID: e.productID,
		Amount:    values.MustNewMoneyFromFloat(1500, values.USD),
		Title:     "Q3 supply proposal",
	})
	require.NoError(t, err)
	return b
}

func TestPlaceBid(t *testing.T) {
	tests := []struct {
		name     string
		req      func(e *env) *bidding.PlaceBidRequest
		wantType errors.ErrorType
	}{
		{
			name: "valid bid is created submitted",
			req: func(e *env) *bidding.PlaceBidRequest {
				return &bidding.PlaceBidRequest{
					VendorID:  e.vendorID,
					ProductID: e.productID,
					Amount:    values.MustNewMoneyFromFloat(1500, values.USD),
					Title:     "Q3 supply proposal",
				}
			},
		},
		{
			name: "missing product fails validation",
			req: func(e *env) *bidding.PlaceBidRequest {
				return &bidding.PlaceBidRequest{
					VendorID: e.vendorID,
					Amount:   values.MustNewMoneyFromFloat(1500, values.USD),
					Title:    "no product",
				}
			},
			wantType: errors.ErrorTypeValidation,
		},
		{
			name: "zero amount fails validation",
			req: func(e *env) *bidding.PlaceBidRequest {
				return &bidding.PlaceBidRequest{
					VendorID:  e.vendorID,
					ProductID: e.productID,
					Amount:    values.Zero(values.USD),
					Title:     "zero",
				}
			},
			wantType: errors.ErrorTypeValidation,
		},
		{
			name: "unknown vendor fails validation",
			req: func(e *env) *bidding.PlaceBidRequest {
				return &bidding.PlaceBidRequest{
					VendorID:  uuid.New(),
					ProductID: e.productID,
					Amount:    values.MustNewMoneyFromFloat(10, values.USD),
					Title:     "ghost vendor",
				}
			},
			wantType: errors.ErrorTypeValidation,
		},
		{
			name: "product owned by another vendor fails validation",
			req: func(e *env) *bidding.PlaceBidRequest {
				other := fixtures.NewProductBuilder(t).Build()
				e.store.SeedProduct(other)
				return &bidding.PlaceBidRequest{
					VendorID:  e.vendorID,
					ProductID: other.ID,
					Amount:    values.MustNewMoneyFromFloat(10, values.USD),
					Title:     "not mine",
				}
			},
			wantType: errors.ErrorTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			b, err := e.svc.PlaceBid(context.Background(), tt.req(e))

			if tt.wantType != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
				assert.Nil(t, b)

				// Validation failures must not create a record.
				bids, listErr := e.svc.ListBidsForVendor(context.Background(), e.vendorID)
				require.NoError(t, listErr)
				assert.Empty(t, bids)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, bid.StatusSubmitted, b.Status)
			assert.False(t, b.SubmittedAt.IsZero())
			assert.Equal(t, 1, b.Version)
		})
	}
}

func TestTransitionBid(t *testing.T) {
	t.Run("legal transition persists", func(t *testing.T) {
		e := newEnv(t)
		b := e.placeBid(t)

		got, err := e.svc.TransitionBid(context.Background(), b.ID, bid.StatusUnderEvaluation)
		require.NoError(t, err)
		assert.Equal(t, bid.StatusUnderEvaluation, got.Status)

		stored, err := e.svc.GetBid(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, bid.StatusUnderEvaluation, stored.Status)
		// No other fields change on a transition.
		assert.True(t, stored.Amount.Equal(b.Amount))
		assert.Equal(t, b.Title, stored.Title)
	})

	t.Run("illegal transition is rejected", func(t *testing.T) {
		e := newEnv(t)
		b := e.placeBid(t)

		_, err := e.svc.TransitionBid(context.Background(), b.ID, bid.StatusAwarded)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidTransition), "got %v", err)
	})

	t.Run("unknown bid is not found", func(t *testing.T) {
		e := newEnv(t)
		_, err := e.svc.TransitionBid(context.Background(), uuid.New(), bid.StatusUnderEvaluation)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound), "got %v", err)
	})

	t.Run("never reaches a status outside the successor set", func(t *testing.T) {
		all := []bid.Status{
			bid.StatusDraft, bid.StatusSubmitted, bid.StatusUnderEvaluation,
			bid.StatusEvaluated, bid.StatusAwarded, bid.StatusRejected,
			bid.StatusWithdrawn, bid.StatusCounterOffered,
		}

		for _, from := range all {
			for _, to := range all {
				e := newEnv(t)
				b := e.placeBid(t)
				// Force the starting status directly in the store.
				b.Status = from
				require.NoError(t, e.store.Bids().Update(context.Background(), b))

				_, err := e.svc.TransitionBid(context.Background(), b.ID, to)
				if from.CanTransitionTo(to) {
					assert.NoError(t, err, "%s -> %s", from, to)
				} else {
					assert.Error(t, err, "%s -> %s", from, to)
					stored, getErr := e.svc.GetBid(context.Background(), b.ID)
					require.NoError(t, getErr)
					assert.Equal(t, from, stored.Status, "status must not move on %s -> %s", from, to)
				}
			}
		}
	})
}

// gatedBidRepo delays GetByID until both racers have read, so the
// version-checked update decides the winner.
type gatedBidRepo struct {
	*memory.BidRepo
	barrier *sync.WaitGroup
}

func (r *gatedBidRepo) GetByID(ctx context.Context, id uuid.UUID) (*bid.Bid, error) {
	b, err := r.BidRepo.GetByID(ctx, id)
	r.barrier.Done()
	r.barrier.Wait()
	return b, err
}

func TestTransitionBid_ConcurrentRace(t *testing.T) {
	st := memory.New()
	v := fixtures.NewVendorBuilder(t).Build()
	p := fixtures.NewProductBuilder(t).WithVendorID(v.ID).Build()
	st.SeedVendor(v)
	st.SeedProduct(p)

	b := fixtures.NewBidBuilder(t).
		WithVendorID(v.ID).
		WithProductID(p.ID).
		WithStatus(bid.StatusEvaluated).
		Build()
	require.NoError(t, st.Bids().Create(context.Background(), b))

	var barrier sync.WaitGroup
	barrier.Add(2)
	svc := bidding.NewService(
		&gatedBidRepo{BidRepo: st.Bids(), barrier: &barrier},
		st.CounterOffers(), st.Vendors(), st.Products(),
	)

	results := make(chan error, 2)
	targets := []bid.Status{bid.StatusAwarded, bid.StatusRejected}
	for _, target := range targets {
		go func(target bid.Status) {
			_, err := svc.TransitionBid(context.Background(), b.ID, target)
			results <- err
		}(target)
	}

	var conflicts, successes int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			successes++
			continue
		}
		require.True(t, errors.IsType(err, errors.ErrorTypeConflict), "got %v", err)
		conflicts++
	}

	assert.Equal(t, 1, successes, "exactly one transition wins")
	assert.Equal(t, 1, conflicts, "the loser gets a conflict")

	stored, err := st.Bids().GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, stored.Status == bid.StatusAwarded || stored.Status == bid.StatusRejected)
}

func TestDeleteBid(t *testing.T) {
	t.Run("non-terminal bid is deletable", func(t *testing.T) {
		e := newEnv(t)
		b := e.placeBid(t)

		require.NoError(t, e.svc.DeleteBid(context.Background(), b.ID))
		_, err := e.svc.GetBid(context.Background(), b.ID)
		assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
	})

	t.Run("awarded bid is protected", func(t *testing.T) {
		e := newEnv(t)
		b := e.placeBid(t)
		b.Status = bid.StatusAwarded
		require.NoError(t, e.store.Bids().Update(context.Background(), b))

		err := e.svc.DeleteBid(context.Background(), b.ID)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState), "got %v", err)

		_, getErr := e.svc.GetBid(context.Background(), b.ID)
		assert.NoError(t, getErr)
	})
}

func TestOpenCounterOffer(t *testing.T) {
	t.Run("legal from submitted", func(t *testing.T) {
		e := newEnv(t)
		b := e.placeBid(t)

		offer, err := e.svc.OpenCounterOffer(context.Background(), b.ID, &bidding.CounterOfferTerms{
			Amount:        values.MustNewMoneyFromFloat(1200, values.USD),
			TimelineDays:  30,
			Modifications: "bulk pricing",
			Justification: "quote above market",
		})
		require.NoError(t, err)
		assert.Equal(t, bid.CounterOfferPending, offer.Status)
		assert.True(t, offer.ExpiresAt.After(offer.CreatedAt))

		stored, err := e.svc.GetBid(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, bid.StatusCounterOffered, stored.Status)
		require.NotNil(t, stored.PriorStatus)
		assert.Equal(t, bid.StatusSubmitted, *stored.PriorStatus)
	})

	t.Run("illegal from evaluated", func(t *testing.T) {
		e := newEnv(t)
		b := e.placeBid(t)
		b.Status = bid.StatusEvaluated
		require.NoError(t, e.store.Bids().Update(context.Background(), b))

		_, err := e.svc.OpenCounterOffer(context.Background(), b.ID, &bidding.CounterOfferTerms{
			Amount: values.MustNewMoneyFromFloat(1200, values.USD),
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState), "got %v", err)
	})
}

func TestResolveCounterOffer(t *testing.T) {
	open := func(t *testing.T, e *env) (*bid.Bid, *bid.CounterOffer) {
		b := e.placeBid(t)
		offer, err := e.svc.OpenCounterOffer(context.Background(), b.ID, &bidding.CounterOfferTerms{
			Amount:        values.MustNewMoneyFromFloat(1200, values.USD),
			TimelineDays:  30,
			Justification: "quote above market",
		})
		require.NoError(t, err)
		return b, offer
	}

	t.Run("acceptance replaces bid amount and moves to under evaluation", func(t *testing.T) {
		e := newEnv(t)
		_, offer := open(t, e)

		resolved, err := e.svc.ResolveCounterOffer(context.Background(), offer.ID, bid.CounterOfferAccepted)
		require.NoError(t, err)
		assert.Equal(t, bid.CounterOfferAccepted, resolved.Status)
		require.NotNil(t, resolved.RespondedAt)

		stored, err := e.svc.GetBid(context.Background(), offer.BidID)
		require.NoError(t, err)
		assert.Equal(t, bid.StatusUnderEvaluation, stored.Status)
		assert.True(t, stored.Amount.Equal(offer.Amount))
		assert.Nil(t, stored.PriorStatus)

		// Terminal counter-offers are immutable.
		_, err = e.svc.ResolveCounterOffer(context.Background(), offer.ID, bid.CounterOfferRejected)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeAlreadyResolved), "got %v", err)
	})

	t.Run("rejection reverts bid to its prior status", func(t *testing.T) {
		e := newEnv(t)
		b, offer := open(t, e)

		_, err := e.svc.ResolveCounterOffer(context.Background(), offer.ID, bid.CounterOfferRejected)
		require.NoError(t, err)

		stored, err := e.svc.GetBid(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, bid.StatusSubmitted, stored.Status)
		assert.True(t, stored.Amount.Equal(b.Amount), "rejection leaves the amount alone")
	})

	t.Run("invalid outcome fails validation", func(t *testing.T) {
		e := newEnv(t)
		_, offer := open(t, e)

		_, err := e.svc.ResolveCounterOffer(context.Background(), offer.ID, bid.CounterOfferExpired)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation), "got %v", err)
	})
}

func TestOpenCounterOffer_StoreFailureLeavesBidUntouched(t *testing.T) {
	e := newEnv(t)
	b := e.placeBid(t)
	ctx := context.Background()

	terms := &bidding.CounterOfferTerms{
		Amount:        values.MustNewMoneyFromFloat(1200, values.USD),
		TimelineDays:  30,
		Justification: "quote above market",
	}

	e.store.FailNegotiationWrites(stderrors.New("connection reset"))
	_, err := e.svc.OpenCounterOffer(ctx, b.ID, terms)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDataUnavailable), "got %v", err)

	// Nothing landed: the bid is still negotiable and no offer exists.
	stored, err := e.svc.GetBid(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.StatusSubmitted, stored.Status)
	assert.Nil(t, stored.PriorStatus)
	offers, err := e.store.CounterOffers().ListByBid(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, offers)

	e.store.FailNegotiationWrites(nil)
	offer, err := e.svc.OpenCounterOffer(ctx, b.ID, terms)
	require.NoError(t, err)
	assert.Equal(t, bid.CounterOfferPending, offer.Status)
}

func TestResolveCounterOffer_StoreFailureLeavesOfferOpen(t *testing.T) {
	e := newEnv(t)
	b := e.placeBid(t)
	ctx := context.Background()

	offer, err := e.svc.OpenCounterOffer(ctx, b.ID, &bidding.CounterOfferTerms{
		Amount:        values.MustNewMoneyFromFloat(1200, values.USD),
		TimelineDays:  30,
		Justification: "quote above market",
	})
	require.NoError(t, err)

	e.store.FailNegotiationWrites(stderrors.New("connection reset"))
	_, err = e.svc.ResolveCounterOffer(ctx, offer.ID, bid.CounterOfferAccepted)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDataUnavailable), "got %v", err)

	// The negotiation is intact: bid unchanged, offer still open.
	stored, err := e.svc.GetBid(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.StatusCounterOffered, stored.Status)
	assert.True(t, stored.Amount.Equal(b.Amount))
	pending, err := e.store.CounterOffers().GetByID(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.CounterOfferPending, pending.Status)

	// Once the store recovers the same offer resolves cleanly.
	e.store.FailNegotiationWrites(nil)
	resolved, err := e.svc.ResolveCounterOffer(ctx, offer.ID, bid.CounterOfferAccepted)
	require.NoError(t, err)
	assert.Equal(t, bid.CounterOfferAccepted, resolved.Status)

	stored, err = e.svc.GetBid(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.StatusUnderEvaluation, stored.Status)
	assert.True(t, stored.Amount.Equal(offer.Amount))
}

func TestExpireStaleCounterOffers(t *testing.T) {
	e := newEnv(t)
	now := time.Now().UTC()

	stale := fixtures.NewCounterOfferBuilder(t).WithTTL(time.Minute).Build()
	stale.ExpiresAt = now.Add(-time.Hour)
	fresh := fixtures.NewCounterOfferBuilder(t).WithTTL(time.Hour).Build()
	resolved := fixtures.NewCounterOfferBuilder(t).WithStatus(bid.CounterOfferAccepted).Build()
	resolved.ExpiresAt = now.Add(-time.Hour)

	ctx := context.Background()
	for _, offer := range []*bid.CounterOffer{stale, fresh, resolved} {
		require.NoError(t, e.store.CounterOffers().Create(ctx, offer))
	}

	expired, err := e.svc.ExpireStaleCounterOffers(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	got, err := e.store.CounterOffers().GetByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.CounterOfferExpired, got.Status)

	// Terminal offers are untouched.
	got, err = e.store.CounterOffers().GetByID(ctx, resolved.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.CounterOfferAccepted, got.Status)

	// Idempotent: a second sweep with the same now changes nothing.
	expired, err = e.svc.ExpireStaleCounterOffers(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, expired)

	got, err = e.store.CounterOffers().GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, bid.CounterOfferPending, got.Status)
}
