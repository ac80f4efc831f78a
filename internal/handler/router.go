package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"campuseats/internal/model"
	"campuseats/internal/mw"
	"campuseats/internal/service"
)

type Services struct {
	Auth     *service.AuthService
	Products *service.ProductService
	Carts    *service.CartService
	Orders   *service.OrderService
}

func NewRouter(svc Services, jwtSecret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public routes
	r.Post("/api/auth/register", RegisterHandler(svc.Auth))
	r.Post("/api/auth/login", LoginHandler(svc.Auth))
	r.Get("/api/products", ListProductsHandler(svc.Products))
	r.Get("/api/products/{id}", GetProductHandler(svc.Products))
	r.Get("/api/categories", ListCategoriesHandler())

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.AuthMiddleware(jwtSecret))

		r.Get("/api/cart", GetCartHandler(svc.Carts))
		r.Delete("/api/cart", ClearCartHandler(svc.Carts))
		r.Post("/api/cart/items/{productID}/toggle", ToggleCartItemHandler(svc.Carts))
		r.Put("/api/cart/items/{productID}", SetCartQuantityHandler(svc.Carts))
		r.Delete("/api/cart/items/{productID}", RemoveCartItemHandler(svc.Carts))

		r.Post("/api/checkout", CheckoutHandler(svc.Orders))
		r.Get("/api/orders", ListOrdersHandler(svc.Orders))

		r.Route("/api/restaurant", func(r chi.Router) {
			r.Use(mw.RequireRole(model.RoleRestaurant))

			r.Get("/orders", DashboardHandler(svc.Orders))
			r.Post("/orders/{id}/ready", MarkReadyHandler(svc.Orders))
			r.Post("/orders/{id}/complete", MarkCompletedHandler(svc.Orders))

			r.Post("/products", CreateProductHandler(svc.Products))
			r.Put("/products/{id}", UpdateProductHandler(svc.Products))
			r.Delete("/products/{id}", DeleteProductHandler(svc.Products))
		})
	})

	return r
}
