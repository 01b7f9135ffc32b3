package cmd

import (
	"foodtruck-market/internal/data/repository"
	"foodtruck-market/internal/notify"
	"foodtruck-market/internal/payment"
	"foodtruck-market/internal/storage"
	"foodtruck-market/internal/usecase"
	"foodtruck-market/pkg/database"
	"foodtruck-market/pkg/metrics"
	"foodtruck-market/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// application is everything a command needs once the database is up
type application struct {
	db         database.PgxIface
	repo       *repository.Repository
	service    *usecase.Service
	metrics    *metrics.Metrics
	dispatcher *notify.Dispatcher
	closers    []func() error
}

func newApplication(config *utils.Config, logger *zap.Logger) (*application, error) {
	db, err := database.InitDB(config.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected successfully")

	app := &application{db: db}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = metrics.New(registry)

	var notifier notify.Notifier = notify.NewLogNotifier(logger)
	if len(config.Kafka.Brokers) > 0 {
		kafka, err := notify.NewKafkaNotifier(config.Kafka.Brokers, config.Kafka.Topic, logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		notifier = kafka
		app.closers = append(app.closers, kafka.Close)
		logger.Info("Kafka notifications enabled", zap.Strings("brokers", config.Kafka.Brokers))
	} else {
		logger.Warn("KAFKA_BROKERS not set, notifications are only logged")
	}
	app.dispatcher = notify.NewDispatcher(notifier, config.Booking.NotifyTimeout, app.metrics, logger)

	var uploader storage.Uploader = storage.NoopUploader{}
	if config.Storage.Endpoint != "" {
		minio, err := storage.NewMinioUploader(config.Storage, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		uploader = minio
	} else {
		logger.Warn("S3_ENDPOINT not set, document uploads are not stored")
	}

	authorizer := payment.NewStripeAuthorizer(config.Stripe, logger)

	app.repo = repository.NewRepository(db, logger)
	app.service = usecase.NewService(app.repo, authorizer, uploader, app.dispatcher, app.metrics, config, logger)

	return app, nil
}

// Close flushes pending notifications before closing connections
func (a *application) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	for _, closer := range a.closers {
		closer()
	}
	a.db.Close()
}
