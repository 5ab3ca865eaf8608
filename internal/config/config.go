package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "strings"  // strings splits the CORS origin list
    "time"     // time represents the token lifetime
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// lifetimes, ints for costs.
type Config struct {
    Env         string        // application environment (e.g. "dev", "prod")
    Port        string        // HTTP port to listen on
    DBUser      string        // database username
    DBPass      string        // database password (optional)
    DBHost      string        // database host address
    DBPort      string        // database port number
    DBName      string        // database name
    JWTSecret   string        // secret used to sign access tokens
    TokenTTL    time.Duration // access token time-to-live (default 24h)
    BcryptCost  int           // bcrypt cost for password hashing
    CORSOrigins []string      // allowed CORS origins ("*" when unset)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
    return Config{
        Env:         must("APP_ENV"),              // environment (dev/test/prod)
        Port:        must("APP_PORT"),             // port to bind the HTTP server
        DBUser:      must("DB_USER"),              // database user
        DBPass:      os.Getenv("DB_PASS"),         // database password (empty allowed)
        DBHost:      must("DB_HOST"),              // database host
        DBPort:      must("DB_PORT"),              // database port
        DBName:      must("DB_NAME"),              // database name
        JWTSecret:   must("JWT_SECRET"),           // secret used for signing tokens
        TokenTTL:    envDur("TOKEN_TTL", 24*time.Hour), // bearer token validity window
        BcryptCost:  envInt("BCRYPT_COST", 12),    // bcrypt cost factor
        CORSOrigins: splitOrigins(os.Getenv("CORS_ORIGINS")),
    }
}

// splitOrigins parses a comma-separated origin list.  An empty variable
// falls back to the wildcard origin, which suits local development.
func splitOrigins(s string) []string {
    if strings.TrimSpace(s) == "" {
        return []string{"*"}
    }
    var out []string
    for _, o := range strings.Split(s, ",") {
        if o = strings.TrimSpace(o); o != "" {
            out = append(out, o)
        }
    }
    return out
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

// envInt reads an integer variable, falling back to d when unset or invalid.
func envInt(key string, d int) int {
    v := os.Getenv(key)
    if v == "" {
        return d
    }
    if n, err := strconv.Atoi(v); err == nil {
        return n
    }
    return d
}

// envDur reads a duration variable (e.g. "24h"), falling back to d.
func envDur(key string, d time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" {
        return d
    }
    if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
        return dur
    }
    return d
}
