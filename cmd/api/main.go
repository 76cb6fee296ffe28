package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/sweetshop-api/internal/application/auth"
	"github.com/jhoicas/sweetshop-api/internal/application/inventory"
	"github.com/jhoicas/sweetshop-api/internal/domain/repository"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/memory"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/metrics"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/postgres"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/rabbitmq"
	infraredis "github.com/jhoicas/sweetshop-api/internal/infrastructure/redis"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/security"
	httpRouter "github.com/jhoicas/sweetshop-api/internal/interfaces/http"
	"github.com/jhoicas/sweetshop-api/pkg/config"
	"github.com/jhoicas/sweetshop-api/pkg/jwt"
	"github.com/jhoicas/sweetshop-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios + TxRunner del driver elegido.
type storage struct {
	users    repository.UserRepository
	sweets   repository.SweetRepository
	txRunner inventory.TxRunner
	health   func(context.Context) error
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("almacenamiento")
	}
	defer store.close()

	tokens, err := jwt.NewService(jwt.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("servicio de tokens")
	}

	// Redis es opcional: sin él no hay rotación de refresh tokens ni rate limit.
	var (
		rdb      *goredis.Client
		registry auth.RefreshRegistry
		limiter  httpRouter.Limiter
	)
	if cfg.Redis.Enabled() {
		rdb, err = infraredis.NewClient(ctx, cfg.Redis, !cfg.App.IsDevelopment() && cfg.Redis.Password != "")
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		registry = infraredis.NewRefreshRegistry(rdb)
		if cfg.RateLimit.Enabled {
			limiter = infraredis.NewRateLimiter(rdb, cfg.RateLimit, "rl:auth")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis conectado")
	}

	var appMetrics *metrics.Metrics
	events := inventory.FanOut{}
	if cfg.App.MetricsEnabled {
		appMetrics = metrics.New("sweetshop")
		events = append(events, appMetrics)
	}
	if cfg.RabbitMQ.Enabled() {
		pub := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log.Zerolog())
		if err := pub.Connect(); err != nil {
			// Se reintenta en cada publicación.
			log.Warn().Err(err).Msg("rabbitmq no disponible al arrancar")
		}
		defer pub.Close()
		events = append(events, pub)
	}

	authUC := auth.NewAuthUseCase(store.users, security.NewBcryptHasher(bcrypt.DefaultCost), tokens, registry)
	sweetUC := inventory.NewSweetUseCase(store.sweets, store.txRunner, events, cfg.Inventory.LowStockThreshold)

	seedResult, err := authUC.EnsureAdmin(ctx, auth.AdminSeed{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap del administrador")
	}
	switch seedResult {
	case auth.AdminEmailTaken:
		log.Warn().Str("email", cfg.Admin.Email).Msg("no hay ADMIN y el email reservado pertenece a otra cuenta")
	default:
		log.Info().Str("result", string(seedResult)).Str("email", cfg.Admin.Email).Msg("bootstrap del administrador")
	}

	opts := httpRouter.AppOptions{Name: cfg.App.Name, Log: log.Zerolog()}
	deps := httpRouter.RouterDeps{
		AuthUC:  authUC,
		SweetUC: sweetUC,
		Tokens:  tokens,
		Limiter: limiter,
		Health:  store.health,
		Log:     log.Zerolog(),
	}
	if appMetrics != nil {
		opts.Metrics = appMetrics
		deps.Metrics = appMetrics.Handler()
	}
	app := httpRouter.NewApp(opts)

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		if _, err := os.Stat(swaggerFile); err != nil {
			log.Warn().Err(err).Msg("swagger habilitado pero sin docs/swagger.json")
		} else {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: swaggerFile,
				Path:     "docs",
				Title:    "Sweet Shop API",
			}))
		}
	}

	httpRouter.Router(app, deps)

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.DB.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		sweets := memory.NewSweetRepository()
		return &storage{
			users:    memory.NewUserRepository(),
			sweets:   sweets,
			txRunner: memory.NewTxRunner(sweets),
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool, log.Zerolog()); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return &storage{
		users:    postgres.NewUserRepository(pool),
		sweets:   postgres.NewSweetRepository(pool),
		txRunner: postgres.NewTxRunner(pool),
		health:   pool.Ping,
		close:    pool.Close,
	}, nil
}
