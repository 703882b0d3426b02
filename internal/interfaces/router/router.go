package router

import (
	authsvc "cryptoapp-backend/internal/application/auth"
	portfoliosvc "cryptoapp-backend/internal/application/portfolio"
	pricesvc "cryptoapp-backend/internal/application/prices"
	"cryptoapp-backend/internal/config"
	"cryptoapp-backend/internal/infrastructure/database"
	authhandler "cryptoapp-backend/internal/interfaces/handlers/auth"
	healthhandler "cryptoapp-backend/internal/interfaces/handlers/health"
	portfoliohandler "cryptoapp-backend/internal/interfaces/handlers/portfolio"
	priceshandler "cryptoapp-backend/internal/interfaces/handlers/prices"
	"cryptoapp-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration. The returned scheduler (nil when no DB is configured) is
// started by the caller.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, *portfoliosvc.Scheduler, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, rdb, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{Rdb: rdb}
	app.Get("/health/json", hh.JSON)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	// Auth routes (no auth middleware). db may be nil when DATABASE_URL is
	// not set (e.g. router tests); login/register then return 500.
	var accounts *authsvc.Service
	if db != nil {
		accounts = &authsvc.Service{DB: db}
	}
	ah := &authhandler.Handlers{Rdb: rdb, Config: sessionCfg}
	if accounts != nil {
		ah.Registrar = accounts
		ah.UserFinder = accounts
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	var scheduler *portfoliosvc.Scheduler
	if db != nil && rdb != nil {
		symbolCache := pricesvc.NewSymbolCache()
		feedClient := pricesvc.NewClient(cfg.CoinloreURL, symbolCache)
		repo := &portfoliosvc.GormRepository{DB: db}
		svc := &portfoliosvc.Service{
			Repo:   repo,
			Feed:   pricesvc.NewSource(feedClient, cfg.TickerBatchLimit),
			Engine: portfoliosvc.NewEngine(portfoliosvc.DefaultPolicies()),
		}

		ph := &portfoliohandler.Handlers{Service: svc}
		portfolioGroup := app.Group("/api/v1/portfolio", middleware.RequireAuth())
		portfolioGroup.Get("/current", ph.Current)
		portfolioGroup.Post("/upload", ph.Upload)
		portfolioGroup.Post("/refresh", ph.Refresh)

		ch := &priceshandler.Handlers{Client: feedClient, Limit: cfg.TickerBatchLimit}
		coinsGroup := app.Group("/api/v1/coins", middleware.RequireAuth())
		coinsGroup.Get("/top", ch.TopCoins)

		if cfg.RefreshSchedule != "" {
			scheduler, err = portfoliosvc.NewScheduler(svc, repo, cfg.RefreshSchedule)
			if err != nil {
				return nil, nil, nil, nil, err
			}
		}
	}

	return app, db, rdb, scheduler, nil
}
