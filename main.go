package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"supermetrics-cloud/internal/audit"
	"supermetrics-cloud/internal/auth"
	deviceapp "supermetrics-cloud/internal/devices/application"
	devicerepo "supermetrics-cloud/internal/devices/infrastructure/postgres"
	devicehttp "supermetrics-cloud/internal/devices/interfaces/http"
	"supermetrics-cloud/internal/observability/metrics"
	readingapp "supermetrics-cloud/internal/readings/application"
	readingrepo "supermetrics-cloud/internal/readings/infrastructure/postgres"
	readinghttp "supermetrics-cloud/internal/readings/interfaces/http"
	"supermetrics-cloud/internal/readings/normalize"
	simulatorapp "supermetrics-cloud/internal/simulator/application"
	simulatorhttp "supermetrics-cloud/internal/simulator/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatalf("timezone error: %v", err)
	}

	deviceRepo := devicerepo.NewDeviceRepository(db)
	deviceService, err := deviceapp.NewService(deviceRepo, logger)
	if err != nil {
		logger.Fatalf("device service error: %v", err)
	}
	deviceHandler, err := devicehttp.NewHandler(deviceService, logger, devicehttp.WithAuditLogger(auditRepo))
	if err != nil {
		logger.Fatalf("device handler error: %v", err)
	}

	normalizer, err := normalize.NewNormalizer(normalize.NewFamilyDetector(), normalize.NewSchemaRegistry(), location)
	if err != nil {
		logger.Fatalf("normalizer error: %v", err)
	}
	readingRepo := readingrepo.NewReadingRepository(db)
	readingService, err := readingapp.NewService(normalizer, readingRepo, deviceService, logger)
	if err != nil {
		logger.Fatalf("reading service error: %v", err)
	}
	readingHandler, err := readinghttp.NewHandler(readingService, logger)
	if err != nil {
		logger.Fatalf("reading handler error: %v", err)
	}
	exportHandler, err := readinghttp.NewExportHandler(readingService, logger)
	if err != nil {
		logger.Fatalf("export handler error: %v", err)
	}

	simulatorCfg, err := simulatorapp.LoadConfig()
	if err != nil {
		logger.Fatalf("simulator config error: %v", err)
	}
	simulatorRunner, err := simulatorapp.NewRunner(simulatorCfg, simulatorapp.NewGenerator(time.Now().UnixNano()), readingService, deviceService, logger)
	if err != nil {
		logger.Fatalf("simulator runner error: %v", err)
	}
	simulatorHandler, err := simulatorhttp.NewHandler(simulatorRunner, auditRepo, logger)
	if err != nil {
		logger.Fatalf("simulator handler error: %v", err)
	}
	defer simulatorRunner.Stop()

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/readings", readingHandler)
	mux.Handle("/api/v1/readings/aggregation", readingHandler)
	mux.Handle("/api/v1/exports/", exportHandler)
	mux.Handle("/api/v1/devices", deviceHandler)
	mux.Handle("/api/v1/devices/", deviceHandler)
	mux.Handle("/api/v1/simulator/", simulatorHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL string
	HTTPAddr    string
	Timezone    string
	JWTSecret   string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		Timezone:    getenvDefault("TIMEZONE", "Local"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
