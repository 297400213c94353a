package http

import (
	"github.com/go-chi/chi/v5"
	_ "github.com/merchantops/shopsync-backend/docs" // Импорт сгенерированных файлов
	"github.com/merchantops/shopsync-backend/internal/cfg"
	"github.com/merchantops/shopsync-backend/internal/domain"
	"github.com/merchantops/shopsync-backend/internal/usecase"
	"github.com/merchantops/shopsync-backend/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

// Init собирает маршруты API. Логин живёт вне сессионной проверки,
// всё остальное требует действующей сессии оператора.
func (r *Router) Init(
	sessionCfg *cfg.SessionCfg,
	shops []domain.Shop,
	syncUC usecase.SyncUC,
	statusUC usecase.StatusUC,
	creationUC usecase.CreationUC,
) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	authHandler := NewAuthHandler(sessionCfg, r.logger)
	shopHandler := NewShopHandler(shops)
	productHandler := NewProductHandler(statusUC, creationUC, r.logger)
	syncHandler := NewSyncHandler(syncUC, statusUC, r.logger)

	r.router.Route("/api/v1", func(v1 chi.Router) {
		v1.Post("/auth/login", authHandler.login)

		v1.Group(func(private chi.Router) {
			private.Use(SessionAuth(sessionCfg))

			private.Post("/auth/logout", authHandler.logout)
			private.Get("/shops", shopHandler.listShops)
			private.Get("/products", productHandler.listProducts)
			private.Post("/shops/{tld}/products", productHandler.createProduct)
			private.Get("/kpis", syncHandler.getKPIs)
			private.Post("/sync", syncHandler.triggerSync)
			private.Get("/sync/runs/last", syncHandler.lastRuns)
		})
	})
}
