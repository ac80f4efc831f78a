package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"campuseats/internal/model"
	"campuseats/internal/service"
)

type checkoutRequest struct {
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
}

func CheckoutHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		var req checkoutRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		order, err := orderSvc.Checkout(r.Context(), service.Customer{ID: s.UserID, Name: s.Name}, req.PaymentMethod)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := session(w, r)
		if !ok {
			return
		}

		orders := orderSvc.ListByCustomer(s.UserID)
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func DashboardHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, orderSvc.Dashboard())
	}
}

func MarkReadyHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := orderSvc.MarkAsReady(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

func MarkCompletedHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := orderSvc.MarkAsCompleted(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}
