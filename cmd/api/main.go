package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"

	appanalytics "github.com/jhoicas/StockPOS-api/internal/application/analytics"
	"github.com/jhoicas/StockPOS-api/internal/application/inventory"
	"github.com/jhoicas/StockPOS-api/internal/application/ports"
	"github.com/jhoicas/StockPOS-api/internal/application/returns"
	"github.com/jhoicas/StockPOS-api/internal/application/sales"
	"github.com/jhoicas/StockPOS-api/internal/application/usecase"
	"github.com/jhoicas/StockPOS-api/internal/domain/repository"
	"github.com/jhoicas/StockPOS-api/internal/domain/sequence"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/memory"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/postgres"
	"github.com/jhoicas/StockPOS-api/internal/infrastructure/redisx"
	httpRouter "github.com/jhoicas/StockPOS-api/internal/interfaces/http"
	"github.com/jhoicas/StockPOS-api/pkg/config"
	"github.com/jhoicas/StockPOS-api/pkg/logger"
	"github.com/jhoicas/StockPOS-api/pkg/money"
	"github.com/jhoicas/StockPOS-api/pkg/telemetry"
)

var version = "dev"

// txRunner une los ejecutores transaccionales de cada paquete de casos de uso.
type txRunner interface {
	inventory.TxRunner
	sales.TxRunner
	returns.TxRunner
}

// backend repositorios y transacciones del almacenamiento elegido.
type backend struct {
	tx          txRunner
	products    repository.ProductRepository
	movements   repository.StockMovementRepository
	sales       repository.SaleRepository
	returns     repository.ReturnRepository
	exchanges   repository.ExchangeRepository
	assignments repository.AssignmentRepository
	clients     repository.ClientRepository
	analytics   repository.AnalyticsRepository
	close       func()
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
		Version: version,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.App.StoreDriver).
		Str("version", version).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Version:     version,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar OpenTelemetry")
	}

	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer be.close()

	// Redis es opcional: sin REDIS_ADDR los eventos se descartan y el candado es no-op.
	var (
		notifier ports.Notifier      = ports.NoopNotifier{}
		locker   ports.ProductLocker = ports.NoopLocker{}
		rdb      *redis.Client
	)
	if cfg.Redis.Enabled() {
		rdb, err = redisx.Connect(ctx, redisx.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		notifier = redisx.NewNotifier(rdb, cfg.Redis.EventsChannel)
		locker = redisx.NewProductLocker(rdb, cfg.Redis.LockTTL, log.Component("redislock"))
	}

	ledger := inventory.NewLedger(be.tx, be.products, be.movements, locker, notifier, log.Component("ledger"))
	composer := sales.NewComposer(
		be.tx, be.products, be.sales, be.clients, ledger,
		sequence.NewGenerator(cfg.Shop.SalePrefix), notifier, log.Component("sales"),
	)
	processor := returns.NewProcessor(
		be.tx, be.returns, be.exchanges, be.products, be.sales, ledger,
		sequence.NewGenerator(cfg.Shop.ReturnPrefix), sequence.NewGenerator(cfg.Shop.ExchangePrefix),
		notifier, log.Component("returns"),
	)
	formatter := money.NewFormatter(cfg.Shop.Locale, cfg.Shop.Currency)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "StockPOS API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:     usecase.NewProductUseCase(be.tx, be.products, ledger, log.Component("catalog")),
		AccessUC:      usecase.NewAccessUseCase(be.assignments),
		ClientUC:      usecase.NewClientUseCase(be.clients),
		AssignmentUC:  usecase.NewAssignmentUseCase(be.assignments, be.products),
		Ledger:        ledger,
		Replenishment: inventory.NewReplenishmentUseCase(be.products, be.analytics),
		Composer:      composer,
		Processor:     processor,
		DashboardUC:   appanalytics.NewDashboardUseCase(be.analytics, formatter),
		ReportUC:      appanalytics.NewReportUseCase(be.analytics),
		JWTSecret:     cfg.JWT.Secret,
		Log:           log.Component("http"),
	})

	go func() {
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
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}

// openBackend abre PostgreSQL (aplicando migraciones si DB_MIGRATE) o el almacenamiento
// en memoria con catálogo de demostración.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.StoreDriver == config.DriverMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewSeeded()
		return &backend{
			tx:          store,
			products:    store.Products(),
			movements:   store.Movements(),
			sales:       store.Sales(),
			returns:     store.Returns(),
			exchanges:   store.Exchanges(),
			assignments: store.Assignments(),
			clients:     store.Clients(),
			analytics:   store.Analytics(),
			close:       func() {},
		}, nil
	}

	if cfg.DB.Migrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:          postgres.NewTxRunner(pool),
		products:    postgres.NewProductRepository(pool),
		movements:   postgres.NewStockMovementRepository(pool),
		sales:       postgres.NewSaleRepository(pool),
		returns:     postgres.NewReturnRepository(pool),
		exchanges:   postgres.NewExchangeRepository(pool),
		assignments: postgres.NewAssignmentRepository(pool),
		clients:     postgres.NewClientRepository(pool),
		analytics:   postgres.NewAnalyticsRepository(pool),
		close:       pool.Close,
	}, nil
}
