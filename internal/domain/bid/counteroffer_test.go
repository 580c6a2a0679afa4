package bid_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/values"
)

func validOffer(t *testing.T) *bid.CounterOffer {
	offer, err := bid.NewCounterOffer(uuid.New(), values.MustNewMoneyFromFloat(900, values.USD), 30, "revised terms", "price moved", 72*time.Hour)
	require.NoError(t, err)
	return offer
}

func TestNewCounterOffer(t *testing.T) {
	t.Run("expiry is strictly after creation", func(t *testing.T) {
		offer := validOffer(t)
		assert.Equal(t, bid.CounterOfferPending, offer.Status)
		assert.True(t, offer.ExpiresAt.After(offer.CreatedAt))
		assert.Nil(t, offer.RespondedAt)
	})

	t.Run("zero ttl is rejected", func(t *testing.T) {
		_, err := bid.NewCounterOffer(uuid.New(), values.MustNewMoneyFromFloat(900, values.USD), 30, "", "", 0)
		assert.Error(t, err)
	})

	t.Run("negative amount is rejected", func(t *testing.T) {
		_, err := bid.NewCounterOffer(uuid.New(), values.MustNewMoneyFromFloat(-1, values.USD), 30, "", "", time.Hour)
		assert.Error(t, err)
	})
}

func TestCounterOffer_Resolution(t *testing.T) {
	now := time.Now().UTC()

	t.Run("accept is terminal", func(t *testing.T) {
		offer := validOffer(t)
		require.NoError(t, offer.Accept(now))
		assert.Equal(t, bid.CounterOfferAccepted, offer.Status)
		require.NotNil(t, offer.RespondedAt)

		assert.Error(t, offer.Reject(now), "terminal offers are immutable")
		assert.Error(t, offer.Accept(now))
	})

	t.Run("reject is terminal", func(t *testing.T) {
		offer := validOffer(t)
		require.NoError(t, offer.Reject(now))
		assert.Equal(t, bid.CounterOfferRejected, offer.Status)
		assert.Error(t, offer.Accept(now))
	})

	t.Run("resolution allowed from under review", func(t *testing.T) {
		offer := validOffer(t)
		require.NoError(t, offer.BeginReview())
		require.NoError(t, offer.Accept(now))
	})

	t.Run("begin review only from pending", func(t *testing.T) {
		offer := validOffer(t)
		require.NoError(t, offer.BeginReview())
		assert.Error(t, offer.BeginReview())
	})
}

func TestCounterOffer_Expiry(t *testing.T) {
	t.Run("stale pending offer expires", func(t *testing.T) {
		offer := validOffer(t)
		later := offer.ExpiresAt.Add(time.Minute)

		assert.True(t, offer.IsStale(later))
		require.NoError(t, offer.Expire(later))
		assert.Equal(t, bid.CounterOfferExpired, offer.Status)
	})

	t.Run("stale under review offer expires", func(t *testing.T) {
		offer := validOffer(t)
		require.NoError(t, offer.BeginReview())
		later := offer.ExpiresAt.Add(time.Minute)
		require.NoError(t, offer.Expire(later))
	})

	t.Run("offer at the exact expiry instant is still open", func(t *testing.T) {
		offer := validOffer(t)
		assert.False(t, offer.IsStale(offer.ExpiresAt))
		assert.True(t, offer.IsStale(offer.ExpiresAt.Add(time.Nanosecond)))
	})

	t.Run("fresh offer does not expire", func(t *testing.T) {
		offer := validOffer(t)
		assert.False(t, offer.IsStale(time.Now().UTC()))
		assert.Error(t, offer.Expire(time.Now().UTC()))
	})

	t.Run("terminal offer is never stale", func(t *testing.T) {
		offer := validOffer(t)
		require.NoError(t, offer.Accept(time.Now().UTC()))
		later := offer.ExpiresAt.Add(time.Hour)
		assert.False(t, offer.IsStale(later))
		assert.Error(t, offer.Expire(later))
	})
}
