package main

import (
	"context"

	"courts/internal/courts/events"
	"courts/internal/courts/handler"
	"courts/internal/courts/repository"
	"courts/internal/courts/service"
	"courts/internal/courts/validator"
	mongoMigration "courts/internal/migrations/mongo"
	"courts/pkg/app"
	"courts/pkg/config"
	"courts/pkg/kafka"
	kafka_config "courts/pkg/kafka/config"
	kafka_middleware "courts/pkg/kafka/middleware"
)

const ServiceName = "courts"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetRedis()
	if cfg.UsesMongo() {
		cfg.SetMongo()
		if cfg.MigrateOnStart {
			migrate(cfg)
		}
	}

	cfg.Log.Info("Starting Courts service", "store", cfg.StoreDriver)
	publisher := initPublisher(cfg)
	courtSlotService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewCourtSlotHandler(courtSlotService, cfg.Log))
	serverApp.OnShutdown("events", publisher.Close)
	serverApp.Run()
}

func migrate(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()

	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Reservation events disabled")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.EventsTopic, cfg.EventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Reservation events enabled", "topic", cfg.EventsTopic, "dlq_topic", cfg.EventsDLQTopic)
	return events.NewKafkaPublisher(producer, ServiceName, kafkaCfg.ProducerWriteTimeout, cfg.Log)
}

func initServices(cfg *config.Config, publisher events.Publisher) service.CourtSlotService {
	courtSlotValidator := validator.NewCourtSlotValidator(cfg.Log, cfg.CourtsOpenAt, cfg.CourtsCloseAt, cfg.CourtsHourlySlots)

	var courtSlotRepo repository.CourtSlotRepository
	if cfg.UsesMongo() {
		courtSlotRepo = repository.NewMongoCourtSlotRepository(cfg)
	} else {
		courtSlotRepo = repository.NewMemoryCourtSlotRepository()
	}

	courtSlotService := service.NewCourtSlotService(
		courtSlotRepo,
		courtSlotValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Court slot service initialized",
		"store", cfg.StoreDriver,
		"database", cfg.MongoDatabaseName,
		"total_courts", cfg.TotalCourts,
	)
	return courtSlotService
}
