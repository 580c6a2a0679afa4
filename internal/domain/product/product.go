package product

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/values"
)

// Product is owned exclusively by one vendor.
type Product struct {
	ID          uuid.UUID    `json:"id"`
	VendorID    uuid.UUID    `json:"vendor_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       values.Money `json:"price"`

	MinOrderQty  int `json:"min_order_qty"`
	MaxOrderQty  int `json:"max_order_qty"`
	StockCount   int `json:"stock_count"`
	LeadTimeDays int `json:"lead_time_days"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewProduct(vendorID uuid.UUID, name string, price values.Money, minQty, maxQty, stock, leadTimeDays int) (*Product, error) {
	if vendorID == uuid.Nil {
		return nil, fmt.Errorf("vendor ID cannot be nil")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price must be positive")
	}
	if minQty < 1 {
		return nil, fmt.Errorf("min order quantity must be at least 1")
	}
	if maxQty < minQty {
		return nil, fmt.Errorf("max order quantity %d below min order quantity %d", maxQty, minQty)
	}
	if stock < 0 {
		return nil, fmt.Errorf("stock count cannot be negative")
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time cannot be negative")
	}

	now := time.Now().UTC()
	return &Product{
		ID:           uuid.New(),
		VendorID:     vendorID,
		Name:         name,
		Price:        price,
		MinOrderQty:  minQty,
		MaxOrderQty:  maxQty,
		StockCount:   stock,
		LeadTimeDays: leadTimeDays,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) AdjustStock(delta int) error {
	if p.StockCount+delta < 0 {
		return fmt.Errorf("stock cannot go below zero")
	}
	p.StockCount += delta
	p.UpdatedAt = time.Now().UTC()
	return nil
}
