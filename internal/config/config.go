package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values.  Each field maps to
// one environment variable.  Required values are enforced by must()
// and abort startup when missing; the export and blob collaborators
// are optional and stay disabled when their variables are unset.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// Blob store (visitor photos).  Optional; photo upload is skipped
	// when BlobBaseURL is empty.
	BlobBaseURL string // object store base URL
	BlobBucket  string // bucket for visitor photos
	BlobToken   string // bearer token for uploads

	// Best-effort export collaborators.  Optional.
	VisitorWebhookURL string // webhook receiving visitor summaries
	BusWebhookURL     string // webhook receiving bus summaries
	SheetsAPIKey      string // Google Sheets API key
	VisitorsSheetID   string // spreadsheet receiving visitor rows
	BusesSheetID      string // spreadsheet receiving bus rows
}

// Load reads configuration from environment variables.  Missing
// required variables cause a fatal log and exit.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),

		BlobBaseURL: os.Getenv("BLOB_BASE_URL"),
		BlobBucket:  envStr("BLOB_BUCKET", "visitor-photos"),
		BlobToken:   os.Getenv("BLOB_TOKEN"),

		VisitorWebhookURL: os.Getenv("VISITOR_WEBHOOK_URL"),
		BusWebhookURL:     os.Getenv("BUS_WEBHOOK_URL"),
		SheetsAPIKey:      os.Getenv("GOOGLE_SHEETS_API_KEY"),
		VisitorsSheetID:   os.Getenv("VISITORS_SHEET_ID"),
		BusesSheetID:      os.Getenv("BUS_ENTRIES_SHEET_ID"),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
