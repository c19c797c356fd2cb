package config

const (
	defaultServerPort = 8080

	defaultDatabaseMaxConns = 5

	defaultRetryMaxAttempts = 5
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":                 "0.0.0.0",
		"server.port":                 defaultServerPort,
		"server.read_timeout":         "5s",
		"server.write_timeout":        "10s",
		"server.idle_timeout":         "120s",
		"server.request_timeout":      "8s",
		"server.expose_error_details": false,

		"log.level":  "info",
		"log.format": "json",

		"database.url":                             "",
		"database.max_conns":                       defaultDatabaseMaxConns,
		"database.acquire_timeout":                 "3s",
		"database.migrate_on_start":                true,
		"database.connect_retry.max_attempts":      defaultRetryMaxAttempts,
		"database.connect_retry.initial_interval":  "200ms",
		"database.connect_retry.max_interval":      "5s",
		"database.connect_retry.multiplier":        defaultRetryMultiplier,
		"database.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"database.circuit_breaker.timeout":         "30s",
		"database.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,

		"metrics.enabled": true,
		"metrics.path":    "/metrics",

		"telemetry.enabled":      false,
		"telemetry.exporter":     "stdout",
		"telemetry.endpoint":     "",
		"telemetry.service_name": "todo-service",
	}
}

// plainEnvKeys maps unprefixed environment variables onto config keys.
var plainEnvKeys = map[string]string{
	"DATABASE_URL": "database.url",
	"HOST":         "server.host",
	"PORT":         "server.port",
}
