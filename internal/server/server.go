// Package server exposes the loan calculator as a JSON API for the browser
// front end.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/iwvelando/loan-calculator/internal/store"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/export"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"go.uber.org/zap"
)

// Options configures NewHandler. Zero values select defaults.
type Options struct {
	Store          store.Store
	MaxBodySize    int64
	AllowedOrigins []string
	Version        string
	Now            func() time.Time
}

type handler struct {
	logger      *zap.Logger
	store       store.Store
	maxBodySize int64
	version     string
	now         func() time.Time
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	h := &handler{
		logger:      logger,
		store:       opts.Store,
		maxBodySize: opts.MaxBodySize,
		version:     strings.TrimSpace(opts.Version),
		now:         opts.Now,
	}
	if h.store == nil {
		h.store = store.NewMemory()
	}
	if h.maxBodySize <= 0 {
		h.maxBodySize = constants.DefaultMaxBodySizeBytes
	}
	if h.version == "" {
		h.version = "dev"
	}
	if h.now == nil {
		h.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", h.handleVersion)
		r.Get("/currencies", h.handleCurrencies)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/repayment", h.handleRepayment)
		r.Post("/export/pdf", h.handleExportPDF)

		r.Route("/loan-data", func(r chi.Router) {
			r.Post("/", h.handleCreateLoanData)
			r.Get("/{id}", h.handleGetLoanData)
			r.Patch("/{id}", h.handlePatchLoanData)
		})
	})

	return r
}

// requestLogger logs every request through zap.
func (h *handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Info("request served",
			zap.String("op", "server.requestLogger"),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// loanRequest carries the calculator inputs. Every field is optional so the
// front end can post while the user is still typing.
type loanRequest struct {
	Amount        *float64          `json:"amount"`
	Period        *int              `json:"period"`
	Rate          *float64          `json:"rate"`
	FixedMonths   *int              `json:"fixedMonths"`
	VariableRate  *float64          `json:"variableRate"`
	InsuranceRate *float64          `json:"insuranceRate"`
	Type          string            `json:"type"`
	StartDate     string            `json:"startDate"`
	Repayment     *repaymentRequest `json:"repayment,omitempty"`
}

type repaymentRequest struct {
	Amount *float64 `json:"amount"`
	Effect string   `json:"effect"`
}

type scheduleResult struct {
	Type    amortization.RepaymentType        `json:"type"`
	Rows    []amortization.PaymentScheduleRow `json:"rows"`
	Summary amortization.Summary              `json:"summary"`
	Months  []string                          `json:"months,omitempty"`
}

type scheduleResponse struct {
	Schedules []scheduleResult `json:"schedules"`
}

type repaymentResult struct {
	Type        amortization.RepaymentType `json:"type"`
	BaseSummary amortization.Summary       `json:"baseSummary"`
	Summary     amortization.Summary       `json:"summary"`
	amortization.Repayment
}

type repaymentResponse struct {
	Repayments []repaymentResult `json:"repayments"`
}

// parameters converts the request into engine input. complete is false when
// an input is still missing, mirroring the front end's form validity.
func (req loanRequest) parameters() (params amortization.LoanParameters, complete bool, err error) {
	if req.Amount == nil || req.Period == nil || req.Rate == nil {
		return params, false, nil
	}
	advanced := req.FixedMonths != nil || req.VariableRate != nil
	if advanced && (req.FixedMonths == nil || req.VariableRate == nil) {
		return params, false, nil
	}

	params = amortization.LoanParameters{
		Amount:        *req.Amount,
		Period:        *req.Period,
		AnnualRate:    *req.Rate,
		InsuranceRate: req.InsuranceRate,
	}
	if advanced {
		params.FixedMonths = *req.FixedMonths
		params.VariableRate = req.VariableRate
	}
	if err := params.Validate(); err != nil {
		return params, true, err
	}
	return params, true, nil
}

func (req loanRequest) repaymentTypes() ([]amortization.RepaymentType, error) {
	switch req.Type {
	case "":
		return []amortization.RepaymentType{amortization.Annuity}, nil
	case constants.RepaymentTypeBoth:
		return []amortization.RepaymentType{amortization.Annuity, amortization.Linear}, nil
	default:
		t, err := amortization.ParseRepaymentType(req.Type)
		if err != nil {
			return nil, err
		}
		return []amortization.RepaymentType{t}, nil
	}
}

func (req loanRequest) months(count int) ([]string, error) {
	labels, err := datetime.MonthLabels(req.StartDate, count)
	if err != nil {
		return nil, fmt.Errorf("start date %q is not in %s format", req.StartDate, constants.DateTimeLayout)
	}
	return labels, nil
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"currencies": format.Currencies(),
		"default":    format.DefaultCurrency().Code,
	})
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"

	var req loanRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	params, complete, err := req.parameters()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	resp := scheduleResponse{Schedules: []scheduleResult{}}
	if !complete {
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	types, err := req.repaymentTypes()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	for _, repaymentType := range types {
		rows, err := amortization.GenerateSchedule(params, repaymentType)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		months, err := req.months(len(rows))
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		resp.Schedules = append(resp.Schedules, scheduleResult{
			Type:    repaymentType,
			Rows:    rows,
			Summary: amortization.Summarize(rows),
			Months:  months,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleRepayment(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRepayment"

	var req loanRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	params, complete, err := req.parameters()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	resp := repaymentResponse{Repayments: []repaymentResult{}}
	if !complete || req.Repayment == nil || req.Repayment.Amount == nil {
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	types, err := req.repaymentTypes()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	effect, err := amortization.ParseRepaymentEffect(req.Repayment.Effect)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	for _, repaymentType := range types {
		repayment, err := amortization.SimulateEarlyRepayment(params, repaymentType, *req.Repayment.Amount, effect)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		resp.Repayments = append(resp.Repayments, repaymentResult{
			Type:        repaymentType,
			BaseSummary: amortization.Summarize(repayment.Base),
			Summary:     amortization.Summarize(repayment.Schedule),
			Repayment:   repayment,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportPDF"

	currency := format.DefaultCurrency()
	if code := r.URL.Query().Get("currency"); code != "" {
		c, err := format.LookupCurrency(code)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		currency = c
	}

	var req loanRequest
	if !h.decodeJSON(w, r, &req, op) {
		return
	}

	params, complete, err := req.parameters()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if !complete {
		h.respondError(w, http.StatusBadRequest, "amount, period and rate are required for an export", op)
		return
	}

	types, err := req.repaymentTypes()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	if len(types) != 1 {
		h.respondError(w, http.StatusBadRequest, "export one repayment type at a time", op)
		return
	}

	rows, err := amortization.GenerateSchedule(params, types[0])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	months, err := req.months(len(rows))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	var buf bytes.Buffer
	report := export.Report{Type: types[0], Parameters: params, Schedule: rows, Months: months, Currency: currency}
	if err := export.WritePDF(&buf, report); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", export.FileName(types[0], h.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write PDF response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) handleCreateLoanData(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCreateLoanData"

	var data store.LoanData
	if !h.decodeJSON(w, r, &data, op) {
		return
	}
	if !h.validLoanData(w, data, op) {
		return
	}

	id := uuid.NewString()
	if err := h.store.Save(r.Context(), id, data); err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *handler) handleGetLoanData(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleGetLoanData"

	id, ok := h.loanDataID(w, r, op)
	if !ok {
		return
	}

	data, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, data)
}

func (h *handler) handlePatchLoanData(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePatchLoanData"

	id, ok := h.loanDataID(w, r, op)
	if !ok {
		return
	}

	var partial store.LoanData
	if !h.decodeJSON(w, r, &partial, op) {
		return
	}
	if !h.validLoanData(w, partial, op) {
		return
	}

	saved, err := h.store.Update(r.Context(), id, partial)
	if err != nil {
		h.respondStoreError(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, saved)
}

func (h *handler) loanDataID(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid loan data id %q", id), op)
		return "", false
	}
	return id, true
}

// validLoanData rejects enum values the calculator would not understand later.
func (h *handler) validLoanData(w http.ResponseWriter, data store.LoanData, op string) bool {
	if data.Currency != nil {
		if _, err := format.LookupCurrency(*data.Currency); err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return false
		}
	}
	if data.Type != nil {
		if _, err := (loanRequest{Type: *data.Type}).repaymentTypes(); err != nil {
			h.respondError(w, http.StatusBadRequest, err.Error(), op)
			return false
		}
	}
	return true
}

func (h *handler) respondStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, err.Error(), op)
		return
	}
	h.respondError(w, http.StatusInternalServerError, err.Error(), op)
}

// decodeJSON reads a size-limited JSON body into dst and reports failures to
// the client; it returns false when the handler should stop.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string, op string) {
	level := h.logger.Warn
	if status >= http.StatusInternalServerError {
		level = h.logger.Error
	}
	level("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
