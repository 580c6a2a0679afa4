package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/procurex/procurement-backend/internal/domain/bid"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/service/analytics"
	"github.com/procurex/procurement-backend/internal/service/bidding"
	"github.com/procurex/procurement-backend/internal/service/evaluation"
	"github.com/procurex/procurement-backend/internal/service/masterdata"
	"github.com/procurex/procurement-backend/internal/taskqueue"
)

const maxBodyBytes = 1 << 20

// Handler exposes the bid lifecycle, master data, evaluation and analytics
// services over JSON.
type Handler struct {
	bids        bidding.Service
	master      masterdata.Service
	evaluations evaluation.Service
	stats       analytics.Service
	queue       *taskqueue.Queue

	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(
	bids bidding.Service,
	master masterdata.Service,
	evaluations evaluation.Service,
	stats analytics.Service,
	queue *taskqueue.Queue,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		bids:        bids,
		master:      master,
		evaluations: evaluations,
		stats:       stats,
		queue:       queue,
		validate:    validator.New(),
		logger:      logger,
	}
}

// Routes mounts every API endpoint on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/bids", func(r chi.Router) {
		r.Post("/", h.placeBid)
		r.Get("/{bidID}", h.getBid)
		r.Delete("/{bidID}", h.deleteBid)
		r.Post("/{bidID}/transition", h.transitionBid)
		r.Post("/{bidID}/counter-offers", h.openCounterOffer)
		r.Post("/{bidID}/evaluate", h.evaluateBid)
	})

	r.Route("/counter-offers", func(r chi.Router) {
		r.Post("/{offerID}/review", h.beginCounterOfferReview)
		r.Post("/{offerID}/resolve", h.resolveCounterOffer)
	})

	r.Route("/vendors", func(r chi.Router) {
		r.Post("/", h.registerVendor)
		r.Get("/", h.listVendors)
		r.Get("/{vendorID}", h.getVendor)
		r.Delete("/{vendorID}", h.deactivateVendor)
		r.Post("/{vendorID}/qualify", h.qualifyVendor)
		r.Post("/{vendorID}/suspend", h.suspendVendor)
		r.Get("/{vendorID}/bids", h.listVendorBids)
		r.Get("/{vendorID}/products", h.listVendorProducts)
		r.Post("/{vendorID}/evaluate", h.evaluateVendor)
	})

	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.createProduct)
		r.Get("/{productID}", h.getProduct)
		r.Delete("/{productID}", h.deactivateProduct)
	})

	r.Route("/compliance", func(r chi.Router) {
		r.Post("/checks", h.runComplianceCheck)
	})

	r.Route("/evaluations", func(r chi.Router) {
		r.Get("/{subjectID}", h.evaluationHistory)
	})

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/vendors/scores", h.vendorScoreSummary)
		r.Get("/vendors/growth", h.vendorGrowth)
		r.Get("/compliance", h.complianceSummary)
		r.Get("/performance", h.windowedPerformance)
	})

	r.Get("/tasks/{taskID}", h.taskStatus)
}

// --- bid lifecycle ---

func (h *Handler) placeBid(w http.ResponseWriter, r *http.Request) {
	var req placeBidRequest
	if !h.decode(w, r, &req) {
		return
	}

	amount, err := values.NewMoneyFromFloat(req.Amount, req.Currency)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	b, err := h.bids.PlaceBid(r.Context(), &bidding.PlaceBidRequest{
		VendorID:    req.VendorID,
		ProductID:   req.ProductID,
		Amount:      amount,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) getBid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "bidID")
	if !ok {
		return
	}

	b, err := h.bids.GetBid(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) deleteBid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "bidID")
	if !ok {
		return
	}

	if err := h.bids.DeleteBid(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transitionBid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "bidID")
	if !ok {
		return
	}

	var req transitionBidRequest
	if !h.decode(w, r, &req) {
		return
	}

	target, err := bid.ParseStatus(req.Target)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	b, err := h.bids.TransitionBid(r.Context(), id, target)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) listVendorBids(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	bids, err := h.bids.ListBidsForVendor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// --- counter-offers ---

func (h *Handler) openCounterOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "bidID")
	if !ok {
		return
	}

	var req counterOfferRequest
	if !h.decode(w, r, &req) {
		return
	}

	amount, err := values.NewMoneyFromFloat(req.Amount, req.Currency)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	offer, err := h.bids.OpenCounterOffer(r.Context(), id, &bidding.CounterOfferTerms{
		Amount:        amount,
		TimelineDays:  req.TimelineDays,
		Modifications: req.Modifications,
		Justification: req.Justification,
		TTL:           req.ttl(),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, offer)
}

func (h *Handler) beginCounterOfferReview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "offerID")
	if !ok {
		return
	}

	offer, err := h.bids.BeginCounterOfferReview(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *Handler) resolveCounterOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "offerID")
	if !ok {
		return
	}

	var req resolveCounterOfferRequest
	if !h.decode(w, r, &req) {
		return
	}

	outcome := bid.CounterOfferAccepted
	if req.Outcome == "rejected" {
		outcome = bid.CounterOfferRejected
	}

	offer, err := h.bids.ResolveCounterOffer(r.Context(), id, outcome)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

// --- master data ---

func (h *Handler) registerVendor(w http.ResponseWriter, r *http.Request) {
	var req registerVendorRequest
	if !h.decode(w, r, &req) {
		return
	}

	v, err := h.master.RegisterVendor(r.Context(), &masterdata.RegisterVendorRequest{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		CreatedBy:          uuid.New(),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	vendors, err := h.master.ListVendors(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, vendors)
}

func (h *Handler) getVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	v, err := h.master.GetVendor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) qualifyVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	v, err := h.master.QualifyVendor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) suspendVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	v, err := h.master.SuspendVendor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) deactivateVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	if err := h.master.DeactivateVendor(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	price, err := values.NewMoneyFromFloat(req.Price, req.Currency)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	p, err := h.master.CreateProduct(r.Context(), &masterdata.CreateProductRequest{
		VendorID:     req.VendorID,
		Name:         req.Name,
		Description:  req.Description,
		Price:        price,
		MinOrderQty:  req.MinOrderQty,
		MaxOrderQty:  req.MaxOrderQty,
		StockCount:   req.StockCount,
		LeadTimeDays: req.LeadTimeDays,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "productID")
	if !ok {
		return
	}

	p, err := h.master.GetProduct(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "productID")
	if !ok {
		return
	}

	if err := h.master.DeactivateProduct(r.Context(), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listVendorProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	products, err := h.master.ListProductsForVendor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// --- evaluations ---

// evaluateVendor runs synchronously by default; ?async=true schedules the
// evaluation on the task queue and returns 202 with the task ID.
func (h *Handler) evaluateVendor(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "vendorID")
	if !ok {
		return
	}

	if r.URL.Query().Get("async") == "true" {
		taskID, err := h.evaluations.EnqueueVendorEvaluation(id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusAccepted, taskRef{TaskID: taskID})
		return
	}

	record, err := h.evaluations.EvaluateVendor(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) evaluateBid(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "bidID")
	if !ok {
		return
	}

	if r.URL.Query().Get("async") == "true" {
		taskID, err := h.evaluations.EnqueueBidEvaluation(id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusAccepted, taskRef{TaskID: taskID})
		return
	}

	record, err := h.evaluations.EvaluateBid(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *Handler) runComplianceCheck(w http.ResponseWriter, r *http.Request) {
	var req complianceCheckRequest
	if !h.decode(w, r, &req) {
		return
	}

	check, err := h.evaluations.RunComplianceCheck(r.Context(), req.VendorID, req.BidID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, check)
}

func (h *Handler) evaluationHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "subjectID")
	if !ok {
		return
	}

	records, err := h.evaluations.History(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) taskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "taskID")
	if !ok {
		return
	}

	task, found := h.queue.Status(id)
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: errorBody{
			Type:    "not_found",
			Message: "task not found",
		}})
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// --- analytics ---

func (h *Handler) vendorScoreSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.VendorScoreSummary(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) complianceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.stats.ComplianceSummary(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) windowedPerformance(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	perf, err := h.stats.WindowedPerformance(r.Context(), period, time.Now().UTC())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (h *Handler) vendorGrowth(w http.ResponseWriter, r *http.Request) {
	growth, err := h.stats.VendorGrowth(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, growth)
}

// --- helpers ---

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeValidationError(w, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeValidationError(w, err.Error())
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeValidationError(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
