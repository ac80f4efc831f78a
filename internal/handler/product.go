package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campuseats/internal/catalog"
	"campuseats/internal/service"
)

// ListProductsHandler serves the catalog. Query parameters: q, category,
// available (true limits to products that can be ordered).
func ListProductsHandler(productSvc *service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := catalog.Filter{Query: q.Get("q"), Category: q.Get("category")}
		if v := q.Get("available"); v != "" {
			only, err := strconv.ParseBool(v)
			if err != nil {
				http.Error(w, "invalid available flag", http.StatusBadRequest)
				return
			}
			f.AvailableOnly = only
		}

		writeJSON(w, http.StatusOK, productSvc.Search(f))
	}
}

func GetProductHandler(productSvc *service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := productSvc.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func ListCategoriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Categories)
	}
}

func CreateProductHandler(productSvc *service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.Input
		if !decodeJSON(w, r, &in) {
			return
		}

		p, err := productSvc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func UpdateProductHandler(productSvc *service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in catalog.Input
		if !decodeJSON(w, r, &in) {
			return
		}

		p, err := productSvc.Update(r.Context(), chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func DeleteProductHandler(productSvc *service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := productSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
