package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stridewear/stridewear-backend/api/controllers"
	"github.com/stridewear/stridewear-backend/api/middleware"
	"github.com/stridewear/stridewear-backend/internal/cart"
	"github.com/stridewear/stridewear-backend/internal/catalog"
	"github.com/stridewear/stridewear-backend/internal/customers"
	"github.com/stridewear/stridewear-backend/internal/dashboard"
	"github.com/stridewear/stridewear-backend/internal/employees"
	"github.com/stridewear/stridewear-backend/internal/favorites"
	"github.com/stridewear/stridewear-backend/internal/imports"
	"github.com/stridewear/stridewear-backend/internal/orders"
	"github.com/stridewear/stridewear-backend/internal/products"
	"github.com/stridewear/stridewear-backend/internal/reviews"
	"github.com/stridewear/stridewear-backend/internal/shipping"
	"github.com/stridewear/stridewear-backend/internal/variants"
	"github.com/stridewear/stridewear-backend/pkg/config"
	"github.com/stridewear/stridewear-backend/pkg/enums"
	"github.com/stridewear/stridewear-backend/pkg/logger"
	"github.com/stridewear/stridewear-backend/pkg/metrics"
)

// Services bundles every domain service the API exposes.
type Services struct {
	Customers customers.Service
	Employees employees.Service
	Catalog   catalog.Service
	Products  products.Service
	Variants  variants.Service
	Cart      cart.Service
	Orders    orders.Service
	Shipping  shipping.Service
	Reviews   reviews.Service
	Favorites favorites.Service
	Imports   imports.Service
	Dashboard dashboard.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(svcs.Customers, logg))
		r.Post("/login", controllers.AuthLogin(svcs.Customers, logg))
	})
	r.Post("/api/admin/v1/auth/login", controllers.AdminAuthLogin(svcs.Employees, logg))

	// Public storefront reads.
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/brands", controllers.BrandList(svcs.Catalog, logg))
		r.Get("/categories", controllers.CategoryList(svcs.Catalog, logg))
		r.Get("/products", controllers.ProductList(svcs.Products, logg, false))
		r.Get("/products/{productId}", controllers.ProductDetail(svcs.Products, logg))
		r.Get("/products/{productId}/variants", controllers.VariantListByProduct(svcs.Variants, logg))
		r.Get("/products/{productId}/reviews", controllers.ReviewListByProduct(svcs.Reviews, logg))
		r.Get("/variants/{variantId}", controllers.VariantDetail(svcs.Variants, logg))

		r.Route("/shipping", func(r chi.Router) {
			r.Get("/provinces", controllers.ShippingProvinces(svcs.Shipping, logg))
			r.Get("/districts", controllers.ShippingDistricts(svcs.Shipping, logg))
			r.Get("/wards", controllers.ShippingWards(svcs.Shipping, logg))
			r.Get("/quotes", controllers.ShippingQuotes(svcs.Shipping, logg))
		})

		// Customer account surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(string(enums.ActorRoleCustomer), logg))

			r.Route("/me", func(r chi.Router) {
				r.Get("/", controllers.ProfileFetch(svcs.Customers, logg))
				r.Patch("/", controllers.ProfileUpdate(svcs.Customers, logg))
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AddressList(svcs.Customers, logg))
				r.Post("/", controllers.AddressCreate(svcs.Customers, logg))
				r.Put("/{addressId}", controllers.AddressUpdate(svcs.Customers, logg))
				r.Delete("/{addressId}", controllers.AddressDelete(svcs.Customers, logg))
				r.Post("/{addressId}/default", controllers.AddressSetDefault(svcs.Customers, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(svcs.Cart, logg))
				r.Post("/items", controllers.CartAddItem(svcs.Cart, logg))
				r.Patch("/items/{itemId}", controllers.CartUpdateItem(svcs.Cart, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Cart, logg))
			})

			r.Post("/checkout", controllers.Checkout(svcs.Orders, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.CustomerOrderList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
				r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", controllers.FavoriteList(svcs.Favorites, logg))
				r.Post("/", controllers.FavoriteAdd(svcs.Favorites, logg))
				r.Delete("/{productId}", controllers.FavoriteRemove(svcs.Favorites, logg))
			})

			r.Post("/reviews", controllers.ReviewCreate(svcs.Reviews, logg))
			r.Get("/reviews", controllers.ReviewListMine(svcs.Reviews, logg))
		})
	})

	// Staff back office.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.ActorRoleStaff), logg))

		r.Get("/dashboard", controllers.DashboardOverview(svcs.Dashboard, logg))

		r.Route("/brands", func(r chi.Router) {
			r.Post("/", controllers.BrandCreate(svcs.Catalog, logg))
			r.Put("/{brandId}", controllers.BrandUpdate(svcs.Catalog, logg))
			r.Delete("/{brandId}", controllers.BrandDelete(svcs.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CategoryCreate(svcs.Catalog, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(svcs.Catalog, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(svcs.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(svcs.Products, logg, true))
			r.Post("/", controllers.ProductCreate(svcs.Products, logg))
			r.Patch("/{productId}", controllers.ProductUpdate(svcs.Products, logg))
			r.Delete("/{productId}", controllers.ProductDelete(svcs.Products, logg))
			r.Post("/{productId}/variants", controllers.VariantCreate(svcs.Variants, logg))
		})

		r.Route("/variants/{variantId}", func(r chi.Router) {
			r.Patch("/", controllers.VariantUpdate(svcs.Variants, logg))
			r.Delete("/", controllers.VariantDelete(svcs.Variants, logg))
			r.Post("/images", controllers.VariantAddImages(svcs.Variants, logg))
			r.Put("/stock", controllers.VariantSetQuantity(svcs.Variants, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.StaffOrderList(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/{orderId}/confirm", controllers.OrderConfirm(svcs.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(svcs.Orders, logg))
		})

		r.Route("/imports", func(r chi.Router) {
			r.Get("/", controllers.ImportList(svcs.Imports, logg))
			r.Post("/", controllers.ImportCreate(svcs.Imports, logg))
			r.Get("/{receiptId}", controllers.ImportDetail(svcs.Imports, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Get("/pending", controllers.ReviewModerationQueue(svcs.Reviews, logg))
			r.Post("/{reviewId}/moderate", controllers.ReviewModerate(svcs.Reviews, logg))
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", controllers.EmployeeList(svcs.Employees, logg))
			r.Post("/", controllers.EmployeeCreate(svcs.Employees, logg))
			r.Get("/{employeeId}", controllers.EmployeeFetch(svcs.Employees, logg))
			r.Patch("/{employeeId}", controllers.EmployeeUpdate(svcs.Employees, logg))
			r.Delete("/{employeeId}", controllers.EmployeeDelete(svcs.Employees, logg))
		})
	})

	// Shipper delivery surface.
	r.Route("/api/shipper/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(string(enums.ActorRoleShipper), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/queue", controllers.ShipperQueue(svcs.Orders, logg))
			r.Get("/completed", controllers.ShipperCompleted(svcs.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
			r.Post("/{orderId}/itinerary", controllers.OrderItineraryAppend(svcs.Orders, logg))
			r.Post("/{orderId}/success", controllers.OrderConfirmSuccess(svcs.Orders, logg))
		})
	})

	return r
}
