// Package fixtures provides builders for test entities with sensible
// defaults, in the usual With...().Build() shape.
package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/product"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
)

// VendorBuilder builds test vendors.
type VendorBuilder struct {
	t       *testing.T
	name    string
	regNum  string
	status  vendor.QualificationStatus
	risk    vendor.RiskLevel
	overall *float64
	scores  vendor.CategoryScores
	active  bool
}

func NewVendorBuilder(t *testing.T) *VendorBuilder {
	return &VendorBuilder{
		t:      t,
		name:   "Acme Industrial Supply",
		regNum: "REG-" + uuid.NewString()[:8],
		status: vendor.StatusQualified,
		risk:   vendor.RiskLow,
		active: true,
	}
}

func (b *VendorBuilder) WithName(name string) *VendorBuilder {
	b.name = name
	return b
}

func (b *VendorBuilder) WithStatus(status vendor.QualificationStatus) *VendorBuilder {
	b.status = status
	return b
}

func (b *VendorBuilder) WithRiskLevel(risk vendor.RiskLevel) *VendorBuilder {
	b.risk = risk
	return b
}

func (b *VendorBuilder) WithOverallScore(score float64) *VendorBuilder {
	b.overall = &score
	return b
}

func (b *VendorBuilder) WithCategoryScores(scores vendor.CategoryScores) *VendorBuilder {
	b.scores = scores
	return b
}

func (b *VendorBuilder) Inactive() *VendorBuilder {
	b.active = false
	return b
}

func (b *VendorBuilder) Build() *vendor.Vendor {
	v, err := vendor.NewVendor(b.name, b.regNum, uuid.New())
	require.NoError(b.t, err)
	v.Status = b.status
	v.RiskLevel = b.risk
	v.CategoryScores = b.scores
	v.OverallScore = b.overall
	v.Active = b.active
	return v
}

// ProductBuilder builds test products.
type ProductBuilder struct {
	t        *testing.T
	vendorID uuid.UUID
	name     string
	price    values.Money
}

func NewProductBuilder(t *testing.T) *ProductBuilder {
	return &ProductBuilder{
		t:        t,
		vendorID: uuid.New(),
		name:     "Hydraulic Pump HP-200",
		price:    values.MustNewMoneyFromFloat(1250.00, values.USD),
	}
}

func (b *ProductBuilder) WithVendorID(vendorID uuid.UUID) *ProductBuilder {
	b.vendorID = vendorID
	return b
}

func (b *ProductBuilder) WithPrice(price values.Money) *ProductBuilder {
	b.price = price
	return b
}

func (b *ProductBuilder) Build() *product.Product {
	p, err := product.NewProduct(b.vendorID, b.name, b.price, 1, 100, 500, 14)
	require.NoError(b.t, err)
	return p
}

// BidBuilder builds test bids.
type BidBuilder struct {
	t         *testing.T
	vendorID  uuid.UUID
	productID uuid.UUID
	amount    values.Money
	status    bid.Status
	prior     *bid.Status
}

func NewBidBuilder(t *testing.T) *BidBuilder {
	return &BidBuilder{
		t:         t,
		vendorID:  uuid.New(),
		productID: uuid.New(),
		amount:    values.MustNewMoneyFromFloat(999.50, values.USD),
		status:    bid.StatusSubmitted,
	}
}

func (b *BidBuilder) WithVendorID(vendorID uuid.UUID) *BidBuilder {
	b.vendorID = vendorID
	return b
}

func (b *BidBuilder) WithProductID(productID uuid.UUID) *BidBuilder {
	b.productID = productID
	return b
}

func (b *BidBuilder) WithAmount(amount values.Money) *BidBuilder {
	b.amount = amount
	return b
}

func (b *BidBuilder) WithStatus(status bid.Status) *BidBuilder {
	b.status = status
	return b
}

func (b *BidBuilder) WithPriorStatus(prior bid.Status) *BidBuilder {
	b.prior = &prior
	return b
}

func (b *BidBuilder) Build() *bid.Bid {
	created, err := bid.NewBid(b.vendorID, b.productID, b.amount, "Supply proposal", "Test bid")
	require.NoError(b.t, err)
	created.Status = b.status
	created.PriorStatus = b.prior
	return created
}

// CounterOfferBuilder builds test counter-offers.
type CounterOfferBuilder struct {
	t      *testing.T
	bidID  uuid.UUID
	amount values.Money
	status bid.CounterOfferStatus
	ttl    time.Duration
}

func NewCounterOfferBuilder(t *testing.T) *CounterOfferBuilder {
	return &CounterOfferBuilder{
		t:      t,
		bidID:  uuid.New(),
		amount: values.MustNewMoneyFromFloat(899.00, values.USD),
		status: bid.CounterOfferPending,
		ttl:    72 * time.Hour,
	}
}

func (b *CounterOfferBuilder) WithBidID(bidID uuid.UUID) *CounterOfferBuilder {
	b.bidID = bidID
	return b
}

func (b *CounterOfferBuilder) WithAmount(amount values.Money) *CounterOfferBuilder {
	b.amount = amount
	return b
}

func (b *CounterOfferBuilder) WithStatus(status bid.CounterOfferStatus) *CounterOfferBuilder {
	b.status = status
	return b
}

func (b *CounterOfferBuilder) WithTTL(ttl time.Duration) *CounterOfferBuilder {
	b.ttl = ttl
	return b
}

func (b *CounterOfferBuilder) Build() *bid.CounterOffer {
	offer, err := bid.NewCounterOffer(b.bidID, b.amount, 30, "revised delivery", "market price moved", b.ttl)
	require.NoError(b.t, err)
	offer.Status = b.status
	return offer
}
