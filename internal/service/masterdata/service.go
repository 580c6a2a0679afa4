package masterdata

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/errors"
	"github.com/procurex/procurement-backend/internal/domain/product"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
	"github.com/procurex/procurement-backend/internal/store"
)

type service struct {
	vendors  VendorRepository
	products ProductRepository
}

func NewService(vendors VendorRepository, products ProductRepository) Service {
	return &service{vendors: vendors, products: products}
}

func (s *service) RegisterVendor(ctx context.Context, req *RegisterVendorRequest) (*vendor.Vendor, error) {
	v, err := vendor.NewVendor(req.Name, req.RegistrationNumber, req.CreatedBy)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_VENDOR", err.Error())
	}

	if err := s.vendors.Create(ctx, v); err != nil {
		if stderrors.Is(err, store.ErrDuplicateKey) {
			return nil, errors.NewConflictError("vendor registration number already exists")
		}
		return nil, errors.NewDataUnavailableError("create vendor", err)
	}
	return v, nil
}

func (s *service) GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	return s.loadVendor(ctx, id)
}

func (s *service) ListVendors(ctx context.Context) ([]*vendor.Vendor, error) {
	vendors, err := s.vendors.List(ctx)
	if err != nil {
		return nil, errors.NewDataUnavailableError("list vendors", err)
	}
	return vendors, nil
}

func (s *service) QualifyVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	v, err := s.loadVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	v.Qualify()
	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, errors.NewDataUnavailableError("update vendor", err)
	}
	return v, nil
}

func (s *service) SuspendVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	v, err := s.loadVendor(ctx, id)
	if err != nil {
		return nil, err
	}

	v.Suspend()
	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, errors.NewDataUnavailableError("update vendor", err)
	}
	return v, nil
}

// DeactivateVendor retires a vendor. A vendor still holding bids in a
// non-terminal status cannot be deactivated; the bids must finish or be
// withdrawn first.
func (s *service) DeactivateVendor(ctx context.Context, id uuid.UUID) error {
	v, err := s.loadVendor(ctx, id)
	if err != nil {
		return err
	}

	live, err := s.vendors.HasLiveBids(ctx, id)
	if err != nil {
		return errors.NewDataUnavailableError("check live bids", err)
	}
	if live {
		return errors.NewInvalidStateError("VENDOR_HAS_LIVE_BIDS",
			"vendor has bids in flight and cannot be deactivated")
	}

	v.Deactivate()
	if err := s.vendors.Update(ctx, v); err != nil {
		return errors.NewDataUnavailableError("update vendor", err)
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error) {
	v, err := s.loadVendor(ctx, req.VendorID)
	if err != nil {
		return nil, err
	}
	if !v.Active {
		return nil, errors.NewInvalidStateError("VENDOR_INACTIVE", "cannot add products for an inactive vendor")
	}

	p, err := product.NewProduct(req.VendorID, req.Name, req.Price, req.MinOrderQty, req.MaxOrderQty, req.StockCount, req.LeadTimeDays)
	if err != nil {
		return nil, errors.NewValidationError("INVALID_PRODUCT", err.Error())
	}
	p.Description = req.Description

	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.NewDataUnavailableError("create product", err)
	}
	return p, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrProductNotFound
		}
		return nil, errors.NewDataUnavailableError("get product", err)
	}
	return p, nil
}

func (s *service) ListProductsForVendor(ctx context.Context, vendorID uuid.UUID) ([]*product.Product, error) {
	products, err := s.products.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, errors.NewDataUnavailableError("list products", err)
	}
	return products, nil
}

func (s *service) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	p.Deactivate()
	if err := s.products.Update(ctx, p); err != nil {
		return errors.NewDataUnavailableError("update product", err)
	}
	return nil
}

func (s *service) loadVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			return nil, errors.ErrVendorNotFound
		}
		return nil, errors.NewDataUnavailableError("get vendor", err)
	}
	return v, nil
}
