package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"
	EnvStoreDriver       = "STORE_DRIVER"
	EnvMigrateOnStart    = "MIGRATE_ON_START"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvDotEnv   = "DOTENV_FILE"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvTrustedProxies    = "TRUSTED_PROXIES"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTotalCourts       = "TOTAL_COURTS"
	EnvCourtsOpenAt      = "COURTS_OPEN_AT"
	EnvCourtsCloseAt     = "COURTS_CLOSE_AT"
	EnvCourtsHourlySlots = "COURTS_HOURLY_SLOTS"

	EnvEventsEnabled  = "EVENTS_ENABLED"
	EnvEventsTopic    = "COURTS_EVENTS_TOPIC"
	EnvEventsDLQTopic = "COURTS_EVENTS_DLQ_TOPIC"
)
