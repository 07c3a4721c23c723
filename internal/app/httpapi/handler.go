// Package httpapi exposes the channel layer REST API.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/payaction/channel_layer/internal/app"
	"github.com/payaction/channel_layer/internal/app/metrics"
	"github.com/payaction/channel_layer/internal/app/services/payment"
	"github.com/payaction/channel_layer/internal/app/services/registry"
	apperr "github.com/payaction/channel_layer/internal/errors"
)

// ActionVersion is the protocol-version marker advertised on every response.
const ActionVersion = "1"

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app      *app.Application
	ledgerID string
}

// NewHandler returns a router exposing the channel REST API. ledgerID is the
// constant target-ledger identifier advertised in response headers.
func NewHandler(application *app.Application, ledgerID string) *mux.Router {
	h := &handler{app: application, ledgerID: ledgerID}

	r := mux.NewRouter()
	r.Use(h.protocolHeaders)
	r.HandleFunc("/channels", h.register).Methods(http.MethodPost)
	r.HandleFunc("/channels", h.list).Methods(http.MethodGet)
	r.HandleFunc("/channels/{name}", h.describe).Methods(http.MethodGet)
	r.HandleFunc("/channels/{name}", h.buildTransaction).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	return r
}

func (h *handler) protocolHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Action-Version", ActionVersion)
		w.Header().Set("X-Ledger-Id", h.ledgerID)
		next.ServeHTTP(w, r)
	})
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChannelName  string  `json:"channelName"`
		Description  string  `json:"description"`
		Fee          float64 `json:"fee"`
		PublicKey    string  `json:"publicKey"`
		CoverImage   string  `json:"coverImage"`
		ContactLink  string  `json:"contactLink"`
		ExternalLink string  `json:"externalLink"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, apperr.New(apperr.CodeInvalidName, "malformed request body", http.StatusBadRequest))
		return
	}

	rec, err := h.app.Registry.Register(r.Context(), registry.RegisterRequest{
		ChannelName:  payload.ChannelName,
		Description:  payload.Description,
		Fee:          payload.Fee,
		OwnerAddress: payload.PublicKey,
		CoverImage:   payload.CoverImage,
		ContactLink:  payload.ContactLink,
		ExternalLink: payload.ExternalLink,
	})
	if err != nil {
		metrics.RecordRegistration(apperr.Code(err))
		writeError(w, err)
		return
	}

	metrics.RecordRegistration("ok")
	writeJSON(w, http.StatusCreated, map[string]string{
		"route":       rec.Route,
		"channelName": rec.ChannelName,
	})
}

func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.app.Registry.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) describe(w http.ResponseWriter, r *http.Request) {
	rec, err := h.app.Registry.Resolve(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment.Describe(rec))
}

func (h *handler) buildTransaction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Account string `json:"account"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, apperr.InvalidPayerAddress("malformed request body"))
		return
	}

	rec, err := h.app.Registry.Resolve(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}

	tx, err := h.app.Payments.Build(r.Context(), rec, payload.Account)
	if err != nil {
		metrics.RecordTransactionBuild(apperr.Code(err))
		writeError(w, err)
		return
	}

	metrics.RecordTransactionBuild("ok")
	writeJSON(w, http.StatusOK, payment.Present(tx, rec))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	typed := apperr.From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(typed.HTTPStatus)
	_ = json.NewEncoder(w).Encode(typed)
}
