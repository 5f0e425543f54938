/*
handlers.go - HTTP API handlers for the kiosk

PURPOSE:
  Exposes the ledger service and the payment bridge via REST. Handles HTTP
  request/response, JSON serialization, validation, and error mapping;
  all business rules live in the ledger package.

ENDPOINTS:
  Kiosk:
    GET    /api/state                 Full snapshot (balance, types, tickets)
    GET    /api/balance               Balance only
    POST   /api/purchase              Buy tickets against the balance
    POST   /api/consume/{typeID}      Consume all unconsumed tickets of a type
    POST   /api/consume-all           Consume every unconsumed ticket
    POST   /api/pin/verify            Check a PIN attempt

  Recharge:
    POST   /api/recharge/simulate     Admin credit without payment
    POST   /api/recharge/checkout     Open a checkout session
    GET    /api/recharge/return       Payment provider return callback
    GET    /api/recharge/cancel       Cancelled checkout, mutates nothing

  Admin:
    GET    /api/admin/metrics         Derived sales metrics
    POST   /api/admin/ticket-types    Create catalog entry
    PUT    /api/admin/ticket-types/{id}  Overwrite catalog entry
    PUT    /api/admin/pin             Replace the global PIN
    GET    /api/admin/payment-settings
    PUT    /api/admin/payment-settings

ERROR HANDLING:
  Service errors map onto HTTP status via errorStatus:
  - 400: validation (amount, quantity, pin format, session id)
  - 401: pin mismatch
  - 404: unknown/inactive ticket type
  - 409: insufficient balance, nothing to consume, pin not configured
  - 503: store unavailable (retryable, operations are transactional)

SECURITY NOTE:
  The return callback carries only a session id; the paid amount is looked
  up from the provider server-side. An "amount" query parameter, if
  present, is ignored.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/warp/ticket-kiosk/ledger"
	"github.com/warp/ticket-kiosk/payment"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service  *ledger.Service
	Bridge   *payment.Bridge
	Validate *validator.Validate
	Log      *logrus.Logger
}

func NewHandler(service *ledger.Service, bridge *payment.Bridge, log *logrus.Logger) *Handler {
	return &Handler{
		Service:  service,
		Bridge:   bridge,
		Validate: validator.New(),
		Log:      log,
	}
}

// validate flattens struct-tag violations into one client-facing message.
func (h *Handler) validate(payload any) error {
	err := h.Validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}

	messages := make([]string, len(fields))
	for i, f := range fields {
		messages[i] = fmt.Sprintf("invalid '%s' with value '%v'", f.Field(), f.Value())
	}
	return errors.New(strings.Join(messages, ", "))
}

// =============================================================================
// STATE / BALANCE
// =============================================================================

// GetState returns the full snapshot the kiosk UI renders from.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.LoadSnapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load state", err)
		return
	}
	writeJSON(w, http.StatusOK, toSnapshotDTO(snap))
}

// GetBalance returns the current balance.
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.LoadSnapshot(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load balance", err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceDTO{Amount: snap.Balance.InexactFloat64()})
}

// =============================================================================
// PURCHASE
// =============================================================================

// Purchase buys tickets. All-or-nothing: on any failure the balance is
// unchanged and no tickets exist.
func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase request", err)
		return
	}

	order := make([]ledger.OrderLine, len(req.Lines))
	for i, line := range req.Lines {
		order[i] = ledger.OrderLine{
			TypeID:   ledger.TicketTypeID(line.TypeID),
			Quantity: line.Quantity,
		}
	}

	res, err := h.Service.PurchaseTickets(r.Context(), order)
	if err != nil {
		h.writeServiceError(w, "Purchase failed", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"tickets": res.TicketsIssued,
		"cost":    res.TotalCost.String(),
	}).Info("tickets purchased")

	writeJSON(w, http.StatusOK, PurchaseResponse{
		TicketsIssued: res.TicketsIssued,
		TotalCost:     res.TotalCost.InexactFloat64(),
		NewBalance:    res.NewBalance.InexactFloat64(),
	})
}

// =============================================================================
// CONSUMPTION
// =============================================================================

// ConsumeGroup consumes all unconsumed tickets of one type.
func (h *Handler) ConsumeGroup(w http.ResponseWriter, r *http.Request) {
	typeID := ledger.TicketTypeID(chi.URLParam(r, "typeID"))

	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid consume request", err)
		return
	}

	res, err := h.Service.ConsumeTicketGroup(r.Context(), typeID, req.Pin)
	if err != nil {
		h.writeServiceError(w, "Consume failed", err)
		return
	}

	h.Log.WithFields(logrus.Fields{"type_id": typeID, "consumed": res.Consumed}).Info("ticket group consumed")
	writeJSON(w, http.StatusOK, ConsumeResponse{Consumed: res.Consumed})
}

// ConsumeAll consumes every unconsumed ticket of any type.
func (h *Handler) ConsumeAll(w http.ResponseWriter, r *http.Request) {
	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid consume request", err)
		return
	}

	res, err := h.Service.ConsumeAllAvailable(r.Context(), req.Pin)
	if err != nil {
		h.writeServiceError(w, "Consume failed", err)
		return
	}

	h.Log.WithField("consumed", res.Consumed).Info("all tickets consumed")
	writeJSON(w, http.StatusOK, ConsumeResponse{Consumed: res.Consumed})
}

// VerifyPin checks an attempt without consuming anything.
func (h *Handler) VerifyPin(w http.ResponseWriter, r *http.Request) {
	var req ConsumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ok, err := h.Service.VerifyPin(r.Context(), req.Pin)
	if err != nil {
		h.writeServiceError(w, "PIN verification failed", err)
		return
	}
	writeJSON(w, http.StatusOK, VerifyPinResponse{Valid: ok})
}

// =============================================================================
// RECHARGE
// =============================================================================

// SimulateRecharge credits the balance with no external payment.
func (h *Handler) SimulateRecharge(w http.ResponseWriter, r *http.Request) {
	var req RechargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recharge request", err)
		return
	}

	res, err := h.Service.RechargeBalance(r.Context(), amountFromFloat(req.Amount), ledger.SourceSimulated, "")
	if err != nil {
		h.writeServiceError(w, "Recharge failed", err)
		return
	}

	h.Log.WithField("amount", req.Amount).Info("simulated recharge")
	writeJSON(w, http.StatusOK, RechargeResponse{NewBalance: res.NewBalance.InexactFloat64()})
}

// StartCheckout opens a checkout session with the payment provider.
func (h *Handler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	var req RechargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid recharge request", err)
		return
	}

	session, err := h.Bridge.InitiateRecharge(r.Context(), amountFromFloat(req.Amount))
	if errors.Is(err, payment.ErrNotConfigured) {
		writeError(w, http.StatusConflict, "Payment provider not configured", err)
		return
	}
	if err != nil {
		h.writeServiceError(w, "Checkout failed", err)
		return
	}

	writeJSON(w, http.StatusOK, CheckoutResponse{
		SessionID:   session.ID,
		RedirectURL: session.RedirectURL,
	})
}

// CheckoutReturn is the provider return callback. Only the session id is
// read; the paid amount comes from the provider. Replays are no-ops.
func (h *Handler) CheckoutReturn(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "Missing session_id", nil)
		return
	}

	res, err := h.Bridge.CompleteRecharge(r.Context(), sessionID)
	if errors.Is(err, payment.ErrUnknownSession) {
		writeError(w, http.StatusNotFound, "Unknown checkout session", err)
		return
	}
	if err != nil {
		h.writeServiceError(w, "Recharge confirmation failed", err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"duplicate":  res.Duplicate,
	}).Info("checkout confirmed")

	writeJSON(w, http.StatusOK, RechargeResponse{
		NewBalance: res.NewBalance.InexactFloat64(),
		Duplicate:  res.Duplicate,
	})
}

// CheckoutCancel acknowledges a cancelled checkout. Nothing to undo: no
// mutation happens before confirmation.
func (h *Handler) CheckoutCancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// =============================================================================
// ADMIN
// =============================================================================

// GetMetrics returns derived sales metrics.
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.ComputeMetrics(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to compute metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, toMetricsDTO(m))
}

// CreateTicketType adds a catalog entry.
func (h *Handler) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	h.saveTicketType(w, r, "")
}

// UpdateTicketType overwrites a catalog entry.
func (h *Handler) UpdateTicketType(w http.ResponseWriter, r *http.Request) {
	h.saveTicketType(w, r, ledger.TicketTypeID(chi.URLParam(r, "id")))
}

func (h *Handler) saveTicketType(w http.ResponseWriter, r *http.Request, id ledger.TicketTypeID) {
	var req TicketTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ticket type", err)
		return
	}

	saved, err := h.Service.SaveTicketType(r.Context(), ledger.TicketType{
		ID:     id,
		Name:   req.Name,
		Value:  amountFromFloat(req.Value),
		Active: req.Active,
		Color:  req.Color,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to save ticket type", err)
		return
	}

	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, toTicketTypeDTO(saved))
}

// UpdatePin replaces the global redemption PIN.
func (h *Handler) UpdatePin(w http.ResponseWriter, r *http.Request) {
	var req UpdatePinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid PIN", err)
		return
	}

	if err := h.Service.UpdateGlobalPin(r.Context(), req.Pin); err != nil {
		h.writeServiceError(w, "Failed to update PIN", err)
		return
	}

	h.Log.Info("global pin updated")
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// GetPaymentSettings returns the provider configuration.
func (h *Handler) GetPaymentSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.PaymentSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to load payment settings", err)
		return
	}
	writeJSON(w, http.StatusOK, PaymentSettingsRequest{
		PublishableKey: settings.PublishableKey,
		PriceID:        settings.PriceID,
	})
}

// UpdatePaymentSettings overwrites the provider configuration.
func (h *Handler) UpdatePaymentSettings(w http.ResponseWriter, r *http.Request) {
	var req PaymentSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err := h.Service.UpdatePaymentSettings(r.Context(), ledger.PaymentSettings{
		PublishableKey: req.PublishableKey,
		PriceID:        req.PriceID,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to update payment settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeServiceError maps ledger errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		h.Log.WithError(err).Error(message)
	}
	writeError(w, status, message, err)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrUnknownTicketType):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrPinMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrNoTicketsAvailable),
		errors.Is(err, ledger.ErrPinNotConfigured):
		return http.StatusConflict
	case ledger.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
