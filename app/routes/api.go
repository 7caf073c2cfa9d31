// Package routes wires the REST surface: repositories, services,
// controllers, and the per-route role guards.
package routes

import (
	"net/http"

	"github.com/shashiranjanraj/atelier/app/controllers"
	"github.com/shashiranjanraj/atelier/app/jobs"
	"github.com/shashiranjanraj/atelier/app/models"
	"github.com/shashiranjanraj/atelier/app/repositories"
	"github.com/shashiranjanraj/atelier/app/services"
	"github.com/shashiranjanraj/atelier/pkg/expo"
	"github.com/shashiranjanraj/atelier/pkg/middleware"
	"github.com/shashiranjanraj/atelier/pkg/rbac"
	"github.com/shashiranjanraj/atelier/pkg/response"
	"github.com/shashiranjanraj/atelier/pkg/router"
	"github.com/shashiranjanraj/atelier/pkg/storage"
	"github.com/shashiranjanraj/atelier/pkg/ws"
)

// Services bundles the wired service layer so the server and CLI commands
// can reach the same instances the routes use.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Orders  *services.OrderService
	Push    *services.PushTokenService
	Notify  *services.NotifyService
}

// Build constructs the repository and service graph.
func Build(hub *ws.Hub) *Services {
	userRepo := repositories.NewUserRepository()
	catalogRepo := repositories.NewCatalogRepository()
	orderRepo := repositories.NewOrderRepository()
	notifRepo := repositories.NewNotificationRepository()

	gateway := expo.NewClient()
	jobs.Configure(gateway)

	notify := services.NewNotifyService(notifRepo, userRepo, jobs.QueueDispatcher{}, hub)
	return &Services{
		Auth:    services.NewAuthService(userRepo, storage.Images()),
		Catalog: services.NewCatalogService(catalogRepo, storage.Images()),
		Orders:  services.NewOrderService(orderRepo, catalogRepo, notify),
		Push:    services.NewPushTokenService(userRepo, gateway),
		Notify:  notify,
	}
}

// RegisterAPI mounts every route.
func RegisterAPI(r *router.Router, svc *Services, hub *ws.Hub) {
	authCtl := controllers.NewAuthController(svc.Auth)
	catalogCtl := controllers.NewCatalogController(svc.Catalog, svc.Auth)
	orderCtl := controllers.NewOrderController(svc.Orders)
	pushCtl := controllers.NewPushController(svc.Push)
	notifCtl := controllers.NewNotificationController(svc.Notify, svc.Catalog, svc.Orders)

	admin := rbac.HasRole(models.RoleAdmin)
	anyUser := rbac.HasRole(models.RoleUser, models.RoleAdmin)

	api := r.Group("/api")

	// Public.
	api.Post("/register", "auth.register", authCtl.Register)
	api.Post("/login", "auth.login", authCtl.Login)
	api.Get("/artworks", "artworks.list", catalogCtl.ListArtworks)
	api.Get("/artworks/{id}", "artworks.show", catalogCtl.GetArtwork)
	api.Get("/materials", "materials.list", catalogCtl.ListMaterials)
	api.Get("/materials/{id}", "materials.show", catalogCtl.GetMaterial)
	api.Get("/catalog/{kind}/{id}/reviews", "reviews.list", catalogCtl.Reviews)
	api.Get("/notifications", "notifications.list", notifCtl.List)

	// Authenticated.
	authed := api.Group("", middleware.Auth)
	authed.Get("/me", "auth.me", authCtl.Me)
	authed.Put("/me", "auth.update", authCtl.UpdateProfile)
	authed.Post("/catalog/{kind}/{id}/reviews", "reviews.upsert", catalogCtl.UpsertReview, anyUser)
	authed.Delete("/catalog/{kind}/{id}/reviews", "reviews.delete", catalogCtl.DeleteReview, anyUser)

	authed.Post("/order", "orders.create", orderCtl.Create, anyUser)
	authed.Post("/order/from-cart", "orders.fromCart", orderCtl.CreateFromCart, anyUser)
	authed.Get("/orders/me", "orders.mine", orderCtl.Mine, anyUser)
	authed.Get("/order/{id}", "orders.show", orderCtl.Get, anyUser)

	authed.Post("/save-push-token", "push.save", pushCtl.SavePushToken, anyUser)

	// Admin.
	authed.Get("/users", "users.list", authCtl.Users, admin)
	authed.Post("/artworks", "artworks.create", catalogCtl.CreateArtwork, admin)
	authed.Put("/artworks/{id}", "artworks.update", catalogCtl.UpdateArtwork, admin)
	authed.Post("/materials", "materials.create", catalogCtl.CreateMaterial, admin)
	authed.Put("/materials/{id}", "materials.update", catalogCtl.UpdateMaterial, admin)
	authed.Delete("/catalog/{kind}/{id}", "catalog.delete", catalogCtl.DeleteItem, admin)

	authed.Put("/order/{id}/status", "orders.status", orderCtl.UpdateStatus, admin)
	authed.Get("/orders", "orders.all", orderCtl.All, admin)
	authed.Delete("/order/{id}", "orders.delete", orderCtl.Delete, admin)

	authed.Post("/cleanup-tokens", "push.cleanup", pushCtl.CleanupTokens, admin)
	authed.Get("/token-status/{userId}", "push.status", pushCtl.TokenStatus, admin)

	authed.Post("/promote-artwork", "notify.artwork", notifCtl.PromoteArtwork, admin)
	authed.Post("/promote-artmat", "notify.artmat", notifCtl.PromoteMaterial, admin)
	authed.Post("/notify-order-update", "notify.order", notifCtl.NotifyOrderUpdate, admin)
	authed.Post("/announce", "notify.announce", notifCtl.Announce, admin)
	authed.Delete("/notifications/{id}", "notifications.delete", notifCtl.Delete, admin)

	// Live notification feed.
	r.HandleFunc("/ws/notifications", middleware.Auth(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		userID, ok := middleware.UserIDFromCtx(req)
		if !ok {
			response.Unauthorized(w)
			return
		}
		ws.Upgrade(w, req, hub, userID)
	})))
}
