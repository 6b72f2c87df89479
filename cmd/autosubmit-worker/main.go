// cmd/autosubmit-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DharitG/jobs/internal/artifacts"
	"github.com/DharitG/jobs/internal/autosubmit"
	"github.com/DharitG/jobs/internal/common/camunda"
	"github.com/DharitG/jobs/internal/common/config"
	"github.com/DharitG/jobs/internal/common/database"
	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/common/observability"
	"github.com/DharitG/jobs/internal/diagnostics"
	"github.com/DharitG/jobs/internal/embedding"
	"github.com/DharitG/jobs/internal/notify"
	"github.com/DharitG/jobs/internal/quota"

	httpclient "github.com/DharitG/jobs/internal/common/http"
	car "github.com/DharitG/jobs/internal/workers/application/create-application-record"
	sa "github.com/DharitG/jobs/internal/workers/application/submit-application"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting autosubmit worker...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = camunda.Connect(ctx, cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Build the submission engine ---
	embedSvc := embedding.NewService(
		embedding.GoogleAIFactory(cfg.Embeddings.APIKey, cfg.Embeddings.Model),
		log,
	)

	selectorNames := []string{"greenhouse", "lever", "workday", "indeed"}
	selectorConfigs, err := autosubmit.LoadSelectorDir(cfg.Browser.SelectorDir, selectorNames...)
	if err != nil {
		zapLog.Fatal("selector configs failed to load", zap.Error(err))
	}

	humanizer := autosubmit.NewHumanizer(log, 400*time.Millisecond, 1800*time.Millisecond)
	adapterDeps := make(map[string]autosubmit.AdapterDeps, len(selectorNames))
	for _, name := range selectorNames {
		adapterDeps[name] = autosubmit.AdapterDeps{
			Selectors:  selectorConfigs[name],
			Embeddings: embedSvc,
			Humanizer:  humanizer,
			Logger:     log,
			StaticWait: time.Duration(cfg.Browser.SelectorTimeout) * time.Millisecond,
			VerifyWait: time.Duration(cfg.Browser.VerifyTimeout) * time.Millisecond,
		}
	}
	registry := autosubmit.DefaultRegistry(adapterDeps)

	var solvers []autosubmit.Solver
	if cfg.Captcha.EscalationURL != "" {
		client := httpclient.NewClient(time.Duration(cfg.Captcha.Timeout) * time.Millisecond)
		solvers = append(solvers, autosubmit.NewEscalationSolver(client, cfg.Captcha.EscalationURL))
	}
	captchaGate := autosubmit.NewCaptchaGate(log, solvers...)

	submitter := autosubmit.NewAutoSubmitter(
		registry,
		autosubmit.NewPlaywrightLauncher(cfg.Browser.Headless),
		captchaGate,
		obs,
		log,
		autosubmit.SubmitterOptions{
			NavigationTimeout: time.Duration(cfg.Browser.NavigationTimeout) * time.Millisecond,
			PostLoginSettle:   2 * time.Second,
		},
	)

	// --- Admission, artifacts, diagnostics, notifications ---
	tiers := quota.NewTierStore(pg.DB, redisClient.Client, log)
	gate := quota.NewGate(cfg.Quota.FreeMonthlyLimit, quota.NewPostgresUsage(pg.DB), log)

	var store artifacts.Store
	switch cfg.Artifacts.Backend {
	case "s3":
		store, err = artifacts.NewS3Store(ctx, cfg.Artifacts.Region, cfg.Artifacts.Bucket, cfg.Artifacts.Prefix)
		if err != nil {
			zapLog.Fatal("s3 artifact store failed", zap.Error(err))
		}
	default:
		store = artifacts.NewLocalStore(cfg.Artifacts.LocalDir)
	}

	indexer := diagnostics.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.Index, log)

	var notifier *notify.Notifier
	if cfg.Notifications.Enabled {
		notifier, err = notify.New(ctx, cfg.Notifications.Region, cfg.Notifications.Sender, cfg.Notifications.SNSTopic, log)
		if err != nil {
			zapLog.Fatal("notifier failed", zap.Error(err))
		}
	}

	// --- Register workers ---
	if cfg.Workers[car.TaskType].Enabled {
		handler := car.NewHandler(car.LoadConfig(), pg.DB, log)
		camunda.StartWorker(zeebeClient, car.TaskType, cfg.Workers[car.TaskType], handler.Handle, zapLog)
	} else {
		zapLog.Warn("create-application-record worker disabled by configuration")
	}

	if cfg.Workers[sa.TaskType].Enabled {
		saConfig := sa.LoadConfig()
		if t := cfg.Workers[sa.TaskType].Timeout; t > 0 {
			saConfig.Timeout = time.Duration(t) * time.Millisecond
		}
		handler := sa.NewHandler(saConfig, submitter, tiers, gate, pg.DB, store, indexer, notifier, log)
		camunda.StartWorker(zeebeClient, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, zapLog)
	} else {
		zapLog.Warn("submit-application worker disabled by configuration")
	}

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Autosubmit worker stopped gracefully")
}
