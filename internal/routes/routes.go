package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/kaskroutek/internal/config"
	"github.com/example/kaskroutek/internal/handlers"
	"github.com/example/kaskroutek/internal/middleware"
	"github.com/example/kaskroutek/internal/services"
	"github.com/example/kaskroutek/internal/store"
)

// Dependencies carries the services the HTTP layer needs.
type Dependencies struct {
	Config   *config.Config
	Store    store.Store
	Ledger   *services.Ledger
	Timers   *services.TimerResolver
	Auth     *services.AuthService
	Telegram *services.TelegramService
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	catalogHandler := handlers.NewCatalogHandler(deps.Store)
	orderHandler := handlers.NewOrderHandler(deps.Ledger)
	loyaltyHandler := handlers.NewLoyaltyHandler(deps.Ledger)
	timerHandler := handlers.NewTimerHandler(deps.Timers)
	notifyHandler := handlers.NewNotifyHandler(deps.Telegram)
	preloadHandler := handlers.NewPreloadHandler(deps.Store, deps.Timers)
	adminHandler := handlers.NewAdminHandler(deps.Ledger)

	api := app.Group("/api")

	api.Get("/health", preloadHandler.Health)
	api.Get("/preload", preloadHandler.Preload)

	// Storefront
	api.Get("/breads", catalogHandler.ListBreads)
	api.Get("/toppings", catalogHandler.ListToppings)
	api.Get("/timers/:kind/available", timerHandler.Available)
	api.Post("/checkout", orderHandler.Checkout)
	api.Get("/loyalty/:phone", loyaltyHandler.Balance)
	api.Get("/rewards/:phone", loyaltyHandler.Rewards)
	api.Post("/telegram/notify", notifyHandler.Send)

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Admin
	admin := api.Group("/admin", middleware.AdminAuth(deps.Config.JWTSecret))
	admin.Get("/me", authHandler.Me)
	admin.Get("/dashboard", adminHandler.DashboardStats)

	admin.Post("/breads", catalogHandler.CreateBread)
	admin.Put("/breads/:id", catalogHandler.UpdateBread)
	admin.Delete("/breads/:id", catalogHandler.DeleteBread)
	admin.Post("/toppings", catalogHandler.CreateTopping)
	admin.Put("/toppings/:id", catalogHandler.UpdateTopping)
	admin.Delete("/toppings/:id", catalogHandler.DeleteTopping)

	orders := admin.Group("/orders")
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
	orders.Put("/:id/status", orderHandler.UpdateStatus)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Post("/:id/uncancel", orderHandler.Uncancel)

	loyalty := admin.Group("/loyalty")
	loyalty.Get("/", loyaltyHandler.ListAccounts)
	loyalty.Post("/adjust", loyaltyHandler.Adjust)
	loyalty.Post("/subtract", loyaltyHandler.Subtract)
	loyalty.Get("/:phone/transactions", loyaltyHandler.Transactions)

	// recompute is registered before /:kind so it is not taken as a kind
	admin.Post("/timers/recompute", timerHandler.Recompute)
	timers := admin.Group("/timers/:kind")
	timers.Get("/", timerHandler.List)
	timers.Post("/", timerHandler.Create)
	timers.Put("/:id", timerHandler.Update)
	timers.Delete("/:id", timerHandler.Delete)
}
