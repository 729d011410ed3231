// Entry point for the REST API service.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/api"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/api/handler"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/config"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/hr"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/evidence"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/messaging"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/rates"
	pkgaws "github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/aws"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/database"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/logger"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load configuration")
	}

	// Configure structured logging
	logger.Setup("tracking-api", cfg.IsLocalDev)

	// Configure OpenTelemetry tracing
	shutdownTracer, err := telemetry.InitTracer("tracking-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to init tracer")
	}
	defer func() {
		_ = shutdownTracer(context.Background())
	}()

	// DB connection
	db, err := database.NewInstrumentedConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error opening database")
	}
	defer db.Close()
	if err := repository.Migrate(db, cfg.DBDriver); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}
	log.Info().Msg("Successfully connected to the database.")

	// AWS SDK Config
	awsCfg, err := pkgaws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("unable to load SDK config")
	}

	// Rate table
	ratesProvider, err := rates.NewConfigProvider()
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load concept rate table")
	}

	// Initialize dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)
	workdayRepo := repository.NewWorkdayRepo(db)
	shiftRepo := repository.NewShiftRepo(db)
	payrollRepo := repository.NewPayrollRepo(db)
	producer := messaging.NewSQSProducer(sqsClient, cfg.PayrollSQSQueueURL, cfg.EmailSQSQueueURL)
	thresholds := hr.NewHTTPClient(cfg.HRAPIURL)

	activityService := core.NewActivityService(workdayRepo, shiftRepo, thresholds)
	trackingHandler := &handler.TrackingHandler{
		Workdays: core.NewWorkdayService(workdayRepo),
		Shifts:   core.NewShiftService(shiftRepo),
		Activity: activityService,
		Evidence: evidence.NewS3Store(s3Client, cfg.EvidenceBucket),
	}
	payrollHandler := &handler.PayrollHandler{
		Service:  core.NewPayrollService(payrollRepo, activityService, ratesProvider, producer),
		Producer: producer,
	}

	// Setup router and server
	router := api.NewRouter(trackingHandler, payrollHandler)

	// Middleware to inject logger with trace ID
	loggerMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = logger.EnrichContextWithLogger(ctx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	// Wrap the router with OpenTelemetry middleware to create spans for each request
	httpHandler := otelhttp.NewHandler(loggerMiddleware(router), "api")

	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: httpHandler,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("API Service starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Give in-flight requests five seconds to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
