package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config collects every knob the server needs. It is built once at startup
// and injected; nothing reads the environment after Load returns.
type Config struct {
	Port       string
	DataFile   string
	VotesFile  string
	UploadsDir string

	// MongoURI switches persistence from the JSON files to MongoDB.
	MongoURI string
	MongoDB  string

	// CloudinaryURL switches media storage from the uploads dir to Cloudinary.
	CloudinaryURL    string
	CloudinaryFolder string

	AdminPassword string
	JWTSecret     string
	TokenTTL      time.Duration

	AllowedOrigins []string
	MaxUploadBytes int64
	RateLimit      int
	RateWindow     time.Duration
	SeedDemo       bool
}

// Load reads .env (if present) and the environment. ADMIN_PASSWORD and
// JWT_SECRET have no safe defaults and must be set.
func Load() (Config, error) {
	// Missing .env is fine in production; env vars come from the platform.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getenv("PORT", "8080"),
		DataFile:         getenv("DATA_FILE", "data.json"),
		VotesFile:        getenv("VOTES_FILE", "votes.json"),
		UploadsDir:       getenv("UPLOADS_DIR", "uploads"),
		MongoURI:         os.Getenv("MONGODB_URI"),
		MongoDB:          getenv("MONGODB_DB", "laughschool"),
		CloudinaryURL:    os.Getenv("CLOUDINARY_URL"),
		CloudinaryFolder: getenv("CLOUDINARY_FOLDER", "laughschool"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TokenTTL:         24 * time.Hour,
		MaxUploadBytes:   50 << 20,
		RateLimit:        60,
		RateWindow:       time.Minute,
		SeedDemo:         getenv("SEED_DEMO", "true") == "true",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5500", "http://127.0.0.1:5500"}
	}

	if raw := os.Getenv("MAX_UPLOAD_MB"); raw != "" {
		mb, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || mb <= 0 {
			return Config{}, errors.New("MAX_UPLOAD_MB must be a positive integer")
		}
		cfg.MaxUploadBytes = mb << 20
	}

	if cfg.AdminPassword == "" || cfg.JWTSecret == "" {
		return Config{}, errors.New("ADMIN_PASSWORD and JWT_SECRET must be set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
