package config

import "time"

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "courts"
	DefaultMongoConnTimeout  = 10 * time.Second
	DefaultStoreDriver       = StoreMongo
	DefaultMigrateOnStart    = true

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultDotEnv   = ".env"

	DefaultRedisDB = 0

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTotalCourts       = 6
	DefaultCourtsOpenAt      = "08:00"
	DefaultCourtsCloseAt     = "22:00"
	DefaultCourtsHourlySlots = true

	DefaultEventsEnabled  = false
	DefaultEventsTopic    = "court-reservations"
	DefaultEventsDLQTopic = "court-reservations-dlq"
)
