package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuseats/internal/service"
)

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type toggleResponse struct {
	Selected bool `json:"selected"`
	service.CartView
}

func GetCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		view, err := cartSvc.Get(r.Context(), s.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func ToggleCartItemHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		view, selected, err := cartSvc.Toggle(r.Context(), s.UserID, chi.URLParam(r, "productID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toggleResponse{Selected: selected, CartView: view})
	}
}

func SetCartQuantityHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		var req quantityRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Quantity == nil {
			http.Error(w, "quantity required", http.StatusBadRequest)
			return
		}

		view, err := cartSvc.SetQuantity(r.Context(), s.UserID, chi.URLParam(r, "productID"), *req.Quantity)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func RemoveCartItemHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		view, err := cartSvc.Remove(r.Context(), s.UserID, chi.URLParam(r, "productID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func ClearCartHandler(cartSvc *service.CartService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		if err := cartSvc.Clear(r.Context(), s.UserID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
