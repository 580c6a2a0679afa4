package rest

import (
	"time"

	"github.com/google/uuid"
)

type placeBidRequest struct {
	VendorID    uuid.UUID `json:"vendor_id" validate:"required"`
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	Amount      float64   `json:"amount" validate:"required,gt=0"`
	Currency    string    `json:"currency" validate:"required,len=3"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
}

type transitionBidRequest struct {
	Target string `json:"target" validate:"required"`
}

type counterOfferRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	Currency      string  `json:"currency" validate:"required,len=3"`
	TimelineDays  int     `json:"timeline_days" validate:"gte=0"`
	Modifications string  `json:"modifications" validate:"max=2000"`
	Justification string  `json:"justification" validate:"required,max=2000"`
	TTLHours      int     `json:"ttl_hours" validate:"gte=0"`
}

func (r counterOfferRequest) ttl() time.Duration {
	return time.Duration(r.TTLHours) * time.Hour
}

type resolveCounterOfferRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=accepted rejected"`
}

type registerVendorRequest struct {
	Name               string `json:"name" validate:"required,max=200"`
	RegistrationNumber string `json:"registration_number" validate:"required,max=100"`
}

type createProductRequest struct {
	VendorID     uuid.UUID `json:"vendor_id" validate:"required"`
	Name         string    `json:"name" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=2000"`
	Price        float64   `json:"price" validate:"required,gt=0"`
	Currency     string    `json:"currency" validate:"required,len=3"`
	MinOrderQty  int       `json:"min_order_qty" validate:"gte=0"`
	MaxOrderQty  int       `json:"max_order_qty" validate:"gte=0"`
	StockCount   int       `json:"stock_count" validate:"gte=0"`
	LeadTimeDays int       `json:"lead_time_days" validate:"gte=0"`
}

type complianceCheckRequest struct {
	VendorID uuid.UUID  `json:"vendor_id" validate:"required"`
	BidID    *uuid.UUID `json:"bid_id,omitempty"`
}

type taskRef struct {
	TaskID uuid.UUID `json:"task_id"`
}
