package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time provides the duration type used for timeouts
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, durations for timeouts.
type Config struct {
    Env              string        // application environment (e.g. "dev", "prod")
    Port             string        // HTTP port to listen on
    DBUser           string        // database username
    DBPass           string        // database password (optional)
    DBHost           string        // database host address
    DBPort           string        // database port number
    DBName           string        // database name
    AdmissionTimeout time.Duration // how long an admitted requester may hold a room
    WaitWindow       int           // sample window for queue wait statistics
    RabbitURL        string        // AMQP broker URL for stats events (optional)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:              must("APP_ENV"),                              // environment (dev/test/prod)
        Port:             must("APP_PORT"),                             // port to bind the HTTP server
        DBUser:           must("DB_USER"),                              // database user
        DBPass:           os.Getenv("DB_PASS"),                         // database password (empty allowed)
        DBHost:           must("DB_HOST"),                              // database host
        DBPort:           must("DB_PORT"),                              // database port
        DBName:           must("DB_NAME"),                              // database name
        AdmissionTimeout: mustDur("ADMISSION_TIMEOUT", 90*time.Second), // selection window per admitted requester
        WaitWindow:       mustIntDefault("WAIT_STATS_WINDOW", 50),      // recent admissions kept for avg wait
        RabbitURL:        os.Getenv("RABBITMQ_URL"),                    // stats broker (empty disables publishing)
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustIntDefault converts an optional environment variable to an integer,
// falling back to def when unset.  A malformed value is fatal.
func mustIntDefault(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// mustDur converts an optional environment variable to a duration, falling
// back to def when unset.  A malformed value is fatal.
func mustDur(key string, def time.Duration) time.Duration {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    d, err := time.ParseDuration(s)
    if err != nil {
        log.Fatalf("invalid duration for %s: %q", key, s)
    }
    return d
}
