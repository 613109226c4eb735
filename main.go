package main

// GET  /cart               - Cart, settings and pricing for the current identity
// POST /cart/add           - Add a line item (merges on product/size/color)
// POST /cart/remove        - Remove a line item
// POST /cart/quantity      - Set a line item's quantity (< 1 removes)
// POST /cart/clear         - Empty the cart
// POST /cart/shipping      - Select Standard / Express / Priority
// POST /cart/destination   - Select Canada / United States / International
// POST /checkout/order     - Snapshot the cart into an order
// GET  /orders             - Order history for the current identity
// POST /session/login      - Simulated login (switches storage bucket)
// POST /session/logout     - Back to the guest bucket

// --- EMBED MIGRATIONS ---
import (
	_ "embed"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"storefront-cart/auth"
	"storefront-cart/config"
	"storefront-cart/handler"
	"storefront-cart/service"
	"storefront-cart/store"
)

//go:embed migrations.sql
var migrationSQL string

func main() {
	configPath := flag.String("config", "", "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// --- Store ---
	st, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer st.Close()

	// --- Engine + identity ---
	engine := service.NewEngine(st, service.WithLogger(logger.Named("cart")))
	sess := auth.NewSession(st, engine, logger.Named("auth"))

	// --- Handlers ---
	h := handler.NewHandler(engine, sess, logger.Named("http"))

	// --- Router ---
	r := mux.NewRouter()
	h.RegisterRoutes(r)

	// --- Server ---
	logger.Info("server running", zap.String("addr", cfg.Server.Addr), zap.String("store", cfg.Store.Driver))
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(c config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func openStore(c config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	switch c.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil
	case config.DriverSQLite:
		return store.OpenSQLiteStore(c.DSN)
	case config.DriverPostgres:
		pg, err := store.NewPostgresStore(c.DSN)
		if err != nil {
			return nil, err
		}
		// --- RUN MIGRATIONS ---
		if _, err := pg.DB.Exec(migrationSQL); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations executed")
		return pg, nil
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		return store.NewRedisStore(client, c.Redis.Prefix), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownDriver, c.Driver)
}
