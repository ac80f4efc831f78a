package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"campuseats/internal/catalog"
	"campuseats/internal/mw"
	"campuseats/internal/orderbook"
	"campuseats/internal/service"
)

const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return false
	}
	return true
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, orderbook.ErrOrderNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, service.ErrItemNotInCart):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, orderbook.ErrInvalidTransition),
		errors.Is(err, service.ErrLoginTaken),
		errors.Is(err, service.ErrProductUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidRegistration),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, service.ErrRestaurantSignupDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, orderbook.ErrOrderNumbersExhausted):
		http.Error(w, "too many open orders, try again later", http.StatusServiceUnavailable)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func session(w http.ResponseWriter, r *http.Request) (mw.Session, bool) {
	s, ok := mw.SessionFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
	return s, ok
}
