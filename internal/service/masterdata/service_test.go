package masterdata_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/errors"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
	"github.com/procurex/procurement-backend/internal/service/masterdata"
	"github.com/procurex/procurement-backend/internal/testutil/fixtures"
	"github.com/procurex/procurement-backend/internal/testutil/memory"
)

func newEnv(t *testing.T) (masterdata.Service, *memory.Store) {
	t.Helper()
	db := memory.New()
	return masterdata.NewService(db.Vendors(), db.Products()), db
}

func TestRegisterVendor(t *testing.T) {
	ctx := context.Background()

	t.Run("creates pending vendor", func(t *testing.T) {
		svc, _ := newEnv(t)

		v, err := svc.RegisterVendor(ctx, &masterdata.RegisterVendorRequest{
			Name:               "Acme Industrial",
			RegistrationNumber: "REG-1001",
			CreatedBy:          uuid.New(),
		})
		require.NoError(t, err)

		assert.Equal(t, vendor.StatusPending, v.Status)
		assert.True(t, v.Active)
		assert.False(t, v.IsScored())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc, _ := newEnv(t)

		_, err := svc.RegisterVendor(ctx, &masterdata.RegisterVendorRequest{
			RegistrationNumber: "REG-1002",
			CreatedBy:          uuid.New(),
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})
}

func TestQualifyAndSuspendVendor(t *testing.T) {
	ctx := context.Background()
	svc, db := newEnv(t)

	v := fixtures.NewVendorBuilder(t).WithStatus(vendor.StatusPending).Build()
	db.SeedVendor(v)

	qualified, err := svc.QualifyVendor(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.StatusQualified, qualified.Status)

	suspended, err := svc.SuspendVendor(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.StatusSuspended, suspended.Status)

	stored, err := db.Vendors().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.StatusSuspended, stored.Status)
}

func TestDeactivateVendor(t *testing.T) {
	ctx := context.Background()

	t.Run("vendor with live bids is protected", func(t *testing.T) {
		svc, db := newEnv(t)
		v := fixtures.NewVendorBuilder(t).Build()
		db.SeedVendor(v)

		b := fixtures.NewBidBuilder(t).WithVendorID(v.ID).WithStatus(bid.StatusSubmitted).Build()
		require.NoError(t, db.Bids().Create(ctx, b))

		err := svc.DeactivateVendor(ctx, v.ID)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState))

		stored, err := db.Vendors().GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.True(t, stored.Active)
	})

	t.Run("vendor with only settled bids deactivates", func(t *testing.T) {
		svc, db := newEnv(t)
		v := fixtures.NewVendorBuilder(t).Build()
		db.SeedVendor(v)

		b := fixtures.NewBidBuilder(t).WithVendorID(v.ID).WithStatus(bid.StatusRejected).Build()
		require.NoError(t, db.Bids().Create(ctx, b))

		require.NoError(t, svc.DeactivateVendor(ctx, v.ID))

		stored, err := db.Vendors().GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.False(t, stored.Active)
	})

	t.Run("unknown vendor", func(t *testing.T) {
		svc, _ := newEnv(t)
		err := svc.DeactivateVendor(ctx, uuid.New())
		assert.ErrorIs(t, err, errors.ErrVendorNotFound)
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product for active vendor", func(t *testing.T) {
		svc, db := newEnv(t)
		v := fixtures.NewVendorBuilder(t).Build()
		db.SeedVendor(v)

		p, err := svc.CreateProduct(ctx, &masterdata.CreateProductRequest{
			VendorID:     v.ID,
			Name:         "Steel Beams",
			Description:  "Grade S355",
			Price:        values.MustNewMoneyFromFloat(129.99, "USD"),
			MinOrderQty:  10,
			MaxOrderQty:  1000,
			StockCount:   5000,
			LeadTimeDays: 14,
		})
		require.NoError(t, err)

		assert.Equal(t, v.ID, p.VendorID)
		assert.Equal(t, "Grade S355", p.Description)
		assert.True(t, p.Active)
	})

	t.Run("inactive vendor cannot list products", func(t *testing.T) {
		svc, db := newEnv(t)
		v := fixtures.NewVendorBuilder(t).Inactive().Build()
		db.SeedVendor(v)

		_, err := svc.CreateProduct(ctx, &masterdata.CreateProductRequest{
			VendorID:    v.ID,
			Name:        "Widget",
			Price:       values.MustNewMoneyFromFloat(1, "USD"),
			MinOrderQty: 1,
			MaxOrderQty: 10,
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidState))
	})

	t.Run("order quantity bounds are validated", func(t *testing.T) {
		svc, db := newEnv(t)
		v := fixtures.NewVendorBuilder(t).Build()
		db.SeedVendor(v)

		_, err := svc.CreateProduct(ctx, &masterdata.CreateProductRequest{
			VendorID:    v.ID,
			Name:        "Widget",
			Price:       values.MustNewMoneyFromFloat(1, "USD"),
			MinOrderQty: 100,
			MaxOrderQty: 10,
		})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	})
}

func TestDeactivateProduct(t *testing.T) {
	ctx := context.Background()
	svc, db := newEnv(t)

	v := fixtures.NewVendorBuilder(t).Build()
	db.SeedVendor(v)
	p := fixtures.NewProductBuilder(t).WithVendorID(v.ID).Build()
	db.SeedProduct(p)

	require.NoError(t, svc.DeactivateProduct(ctx, p.ID))

	stored, err := db.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}
