package masterdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/product"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/domain/vendor"
)

// Service manages the vendor and product master data the bid lifecycle hangs
// off. It is intentionally thin: registration, qualification flips and the
// referential deactivation guard, nothing more.
type Service interface {
	RegisterVendor(ctx context.Context, req *RegisterVendorRequest) (*vendor.Vendor, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	ListVendors(ctx context.Context) ([]*vendor.Vendor, error)
	QualifyVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	SuspendVendor(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	DeactivateVendor(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, req *CreateProductRequest) (*product.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	ListProductsForVendor(ctx context.Context, vendorID uuid.UUID) ([]*product.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
}

type RegisterVendorRequest struct {
	Name               string
	RegistrationNumber string
	CreatedBy          uuid.UUID
}

type CreateProductRequest struct {
	VendorID     uuid.UUID
	Name         string
	Description  string
	Price        values.Money
	MinOrderQty  int
	MaxOrderQty  int
	StockCount   int
	LeadTimeDays int
}

// VendorRepository persists vendors. HasLiveBids backs the deactivation
// guard.
type VendorRepository interface {
	Create(ctx context.Context, v *vendor.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*vendor.Vendor, error)
	Update(ctx context.Context, v *vendor.Vendor) error
	List(ctx context.Context) ([]*vendor.Vendor, error)
	HasLiveBids(ctx context.Context, vendorID uuid.UUID) (bool, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, p *product.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error)
	Update(ctx context.Context, p *product.Product) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*product.Product, error)
}
