package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time expresses the duration-valued knobs
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for
// time-based policies, int64 for money expressed in cents.
type Config struct {
	Env                 string        // application environment (e.g. "dev", "prod")
	Port                string        // HTTP port to listen on
	DBUser              string        // database username
	DBPass              string        // database password (optional)
	DBHost              string        // database host address
	DBPort              string        // database port number
	DBName              string        // database name
	JWTSecret           string        // secret used to verify JWTs issued by the identity service
	PaymentBaseURL      string        // base URL of the payment provider API
	PaymentAPIKey       string        // bearer key for the payment provider API
	WebhookSecret       string        // shared secret verifying provider webhook signatures
	Currency            string        // ISO currency code charged on payment sessions
	SlotLockTTL         time.Duration // lifetime of a reservation lock on a table slot
	SlotLockingEnabled  bool          // disable to let slot contention resolve at confirmation only
	PriceToleranceCents int64         // allowed drift between charged and re-derived totals
	CancelMinLead       time.Duration // minimum lead time for customer booking cancellations
	RabbitURL           string        // AMQP connection string for notification events (optional)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:                 must("APP_ENV"),         // environment (dev/test/prod)
		Port:                must("APP_PORT"),        // port to bind the HTTP server
		DBUser:              must("DB_USER"),         // database user
		DBPass:              os.Getenv("DB_PASS"),    // database password (empty allowed)
		DBHost:              must("DB_HOST"),         // database host
		DBPort:              must("DB_PORT"),         // database port
		DBName:              must("DB_NAME"),         // database name
		JWTSecret:           must("JWT_SECRET"),      // secret used to verify JWTs
		PaymentBaseURL:      must("PAYMENT_BASE_URL"), // payment provider endpoint
		PaymentAPIKey:       must("PAYMENT_API_KEY"),  // payment provider credential
		WebhookSecret:       must("PAYMENT_WEBHOOK_SECRET"), // webhook HMAC secret
		Currency:            envStr("CURRENCY", "EUR"),
		SlotLockTTL:         time.Duration(envInt("SLOT_LOCK_TTL_MIN", 5)) * time.Minute,
		SlotLockingEnabled:  envBool("SLOT_LOCKING_ENABLED", true),
		PriceToleranceCents: int64(envInt("PRICE_TOLERANCE_CENTS", 1)),
		CancelMinLead:       time.Duration(envInt("CANCEL_MIN_LEAD_HOURS", 5)) * time.Hour,
		RabbitURL:           os.Getenv("RABBITMQ_URL"), // empty disables event publishing
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
