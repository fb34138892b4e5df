package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hijjiri/todo-api/internal/config"
	domain_todo "github.com/hijjiri/todo-api/internal/domain/todo"
	"github.com/hijjiri/todo-api/internal/infrastructure/database"
	"github.com/hijjiri/todo-api/internal/infrastructure/memory"
	grpcadapter "github.com/hijjiri/todo-api/internal/interface/grpc"
	httpadapter "github.com/hijjiri/todo-api/internal/interface/http"
	"github.com/hijjiri/todo-api/internal/logging"
	"github.com/hijjiri/todo-api/internal/telemetry"
	todo_usecase "github.com/hijjiri/todo-api/internal/usecase/todo"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

//----------------------
// Repository の選択
//----------------------

// buildRepository は STORAGE に応じて Repository を組み立てる。
// SQL バックエンドのときは *sql.DB も返す（memory なら nil）。
func buildRepository(ctx context.Context, cfg config.Config, logger *zap.Logger) (domain_todo.Repository, *sql.DB, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on restart")
		return memory.NewTodoRepository(), nil, nil
	}

	db, err := database.Connect(ctx, database.Config{
		Driver:          cfg.Storage,
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	txm := database.NewTxManager(db, logger)
	return database.NewTodoRepository(db, txm), db, nil
}

//----------------------
// main
//----------------------

func main() {
	// ---- Logger（設定を読むまでの仮ロガー） ----
	bootLogger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// ---- Config 読み込み ----
	cfg, err := config.Load(bootLogger)
	if err != nil {
		bootLogger.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		bootLogger.Fatal("failed to init logger", zap.Error(err))
	}
	defer logger.Sync()

	logger.Info("loaded config",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("grpc_addr", cfg.GRPCAddr),
		zap.String("metrics_addr", cfg.MetricsAddr),
		zap.String("storage", cfg.Storage),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Bool("traces_enabled", cfg.TracesEnabled),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Tracing ----
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{Enabled: cfg.TracesEnabled}, logger)
	if err != nil {
		logger.Fatal("failed to setup tracing", zap.Error(err))
	}

	// ---- Repository ----
	repo, db, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build repository", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	// ---- Metrics ----
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		reg.MustRegister(collectors.NewDBStatsCollector(db, cfg.Storage))
	}

	// ---- Usecase ----
	uc := todo_usecase.New(repo, logger)

	// ---- HTTP (REST) ----
	gin.SetMode(gin.ReleaseMode)
	router, err := httpadapter.NewRouter(uc, logger, httpadapter.Options{
		RequestTimeout:  cfg.RequestTimeout,
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Metrics:         httpadapter.NewMetrics(reg),
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}
	httpServer := httpadapter.NewServer(cfg.HTTPAddr, router)

	// openapi.json は書けなくても起動は続ける
	if cfg.OpenAPIOutput != "" {
		if err := httpadapter.WriteOpenAPI(cfg.OpenAPIOutput); err != nil {
			logger.Warn("failed to write openapi document", zap.Error(err))
		}
	}

	// ---- gRPC ----
	grpcServer, healthSrv := grpcadapter.NewServer(uc, logger, grpcadapter.ServerOptions{
		RequestTimeout: cfg.RequestTimeout,
	})

	// ---- metrics HTTP サーバ (/metrics) ----
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	metricsServer := httpadapter.NewServer(cfg.MetricsAddr, metricsMux)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server is starting", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("metrics server started", zap.String("addr", cfg.MetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
		}
		logger.Info("gRPC server is starting", zap.String("addr", cfg.GRPCAddr))
		return grpcServer.Serve(lis)
	})

	// シグナル or どれかのサーバの異常終了で全体を止める
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		healthSrv.Shutdown()
		grpcServer.GracefulStop()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", zap.Error(err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", zap.Error(err))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
