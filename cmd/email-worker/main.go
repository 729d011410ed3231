// Entry point for the payslip email worker.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/config"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/ports/repository"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/worker"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/worker/email"
	pkgaws "github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/aws"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/database"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	logger.Setup("email-worker", cfg.IsLocalDev)

	// DB connection
	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()
	if err := repository.Migrate(db, cfg.DBDriver); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}
	log.Println("Successfully connected to the database.")

	// AWS SDK Config
	awsCfg, err := pkgaws.NewAWSConfig(context.Background(), cfg)
	if err != nil {
		log.Fatalf("unable to load SDK config: %v", err)
	}

	// Initialize dependencies
	sqsClient := sqs.NewFromConfig(awsCfg)
	sesClient := ses.NewFromConfig(awsCfg)
	payrollRepo := repository.NewPayrollRepo(db)
	emailService := core.NewSESEmailService(sesClient, cfg.EmailSender)
	processor := email.NewProcessor(emailService, payrollRepo, cfg.EmailDomain)

	// Start worker
	ctx, cancel := context.WithCancel(context.Background())
	app := worker.NewWorker(sqsClient, cfg.EmailSQSQueueURL, processor)

	go func() {
		app.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down worker...")

	// Cancel the context to signal the worker to stop polling.
	cancel()

	log.Println("Worker exited gracefully")
}
