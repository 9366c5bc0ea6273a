package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/example/ridecard/internal/auth"
	"github.com/example/ridecard/internal/card/assets"
	"github.com/example/ridecard/internal/card/domain"
	"github.com/example/ridecard/internal/card/grpchost"
	"github.com/example/ridecard/internal/card/handler"
	cardservice "github.com/example/ridecard/internal/card/service"
	ratelimitmw "github.com/example/ridecard/internal/http/middleware"
	"github.com/example/ridecard/pkg/events"
	"github.com/example/ridecard/pkg/observability"
)

type appConfig struct {
	HTTPAddr         string
	GRPCAddr         string
	RedisAddr        string
	NATSURL          string
	NATSSubject      string
	JWTSecret        string
	AllowAnonymous   bool
	LogLevel         string
	ConfigureTimeout time.Duration
	QueryRate        ratelimitmw.RateConfig
	ConfigureRate    ratelimitmw.RateConfig
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()

	logger := observability.SetupLogger("card-host", cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	if err := validateConfig(cfg); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	shutdown, err := observability.SetupTracer(ctx, "card-host", nil)
	if err != nil {
		logger.Warn("tracer setup failed", zap.Error(err))
	} else {
		defer shutdown(context.Background())
	}

	catalog, err := assets.Load()
	if err != nil {
		logger.Fatal("load card assets", zap.Error(err))
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		if conn, err := nats.Connect(cfg.NATSURL, nats.Name("cardhost")); err == nil {
			natsConn = conn
			defer conn.Drain()
		} else {
			logger.Warn("nats connection failed", zap.Error(err))
		}
	}
	publisher := events.NewPublisher(natsConn, cfg.NATSSubject)

	svc := cardservice.New(catalog, publisher, domain.SystemClock{}, logger.Named("card"), cfg.ConfigureTimeout)

	if cfg.JWTSecret == "" {
		logger.Warn("ALLOW_UNAUTHENTICATED set, card configuration is unauthenticated")
	}
	guards := handler.Guards{
		Configure: []func(http.Handler) http.Handler{auth.Middleware(cfg.JWTSecret, auth.RoleHost)},
	}
	if redisClient := newRedisClient(ctx, cfg.RedisAddr, logger); redisClient != nil {
		defer redisClient.Close()
		limiter := ratelimitmw.NewRateLimiter(redisClient, cfg.QueryRate, cfg.ConfigureRate, logger.Named("ratelimit"))
		// configure is limited per authenticated host, so it runs after auth
		guards.Query = append(guards.Query, limiter.Middleware)
		guards.Configure = append(guards.Configure, limiter.Middleware)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Logger, chimiddleware.Recoverer)
	r.Mount("/observability", observability.MetricsRouter())
	r.Mount("/", handler.NewHTTP(svc, guards).Router())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("card host listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	grpcSrv := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	grpchost.RegisterCardRendererServer(grpcSrv, grpchost.NewServer(svc, logger.Named("grpc")))
	go runGRPC(logger, grpcSrv, cfg.GRPCAddr)

	<-ctx.Done()
	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	grpcSrv.GracefulStop()
	_ = srv.Shutdown(shutdownCtx)
}

func runGRPC(logger *zap.Logger, srv *grpc.Server, addr string) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Fatal("listen grpc", zap.Error(err))
	}
	logger.Info("card grpc listening", zap.String("addr", lis.Addr().String()))
	if err := srv.Serve(lis); err != nil {
		logger.Error("grpc serve", zap.Error(err))
	}
}

func newRedisClient(ctx context.Context, addr string, logger *zap.Logger) *redis.Client {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed, rate limiting disabled", zap.Error(err))
		_ = client.Close()
		return nil
	}
	return client
}

var errMissingJWTSecret = errors.New("JWT_SECRET is required unless ALLOW_UNAUTHENTICATED=true")

func validateConfig(cfg appConfig) error {
	if cfg.JWTSecret == "" && !cfg.AllowAnonymous {
		return errMissingJWTSecret
	}
	return nil
}

func loadConfig() appConfig {
	return appConfig{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		GRPCAddr:         getenv("GRPC_ADDR", ":9090"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		NATSURL:          os.Getenv("NATS_URL"),
		NATSSubject:      getenv("NATS_SUBJECT", "card.events"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AllowAnonymous:   parseBoolEnv("ALLOW_UNAUTHENTICATED", false),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		ConfigureTimeout: time.Duration(parseIntEnv("CONFIGURE_TIMEOUT_MS", 2000)) * time.Millisecond,
		QueryRate: ratelimitmw.RateConfig{
			Rate:  parseFloatEnv("RATE_QUERY_RPS", 50),
			Burst: parseFloatEnv("RATE_QUERY_BURST", 100),
		},
		ConfigureRate: ratelimitmw.RateConfig{
			Rate:  parseFloatEnv("RATE_CONFIGURE_RPS", 10),
			Burst: parseFloatEnv("RATE_CONFIGURE_BURST", 20),
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func parseBoolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}
