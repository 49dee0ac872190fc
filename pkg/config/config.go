package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Log          LogConfig
	Worklist     WorklistConfig
	Measurements MeasurementsConfig
	DICOM        DICOMConfig
	Reports      ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WorklistConfig tunes the study list engine and the per-session state it keeps.
type WorklistConfig struct {
	StudiesLimit          int
	DefaultResultsPerPage int
	PersistDebounce       time.Duration
	SessionTTL            time.Duration
	SeriesCacheSize       int
	SeriesFetchTimeout    time.Duration
	PreservedQueryKeys    []string
	ViewerDataPath        string
	ViewerModeName        string
	ViewerModeRoute       string
}

// MeasurementsConfig points at the downstream service receiving measurement uploads.
type MeasurementsConfig struct {
	PostURL     string
	PostTimeout time.Duration
}

// DICOMConfig controls uploads to the archive.
type DICOMConfig struct {
	UploadEnabled  bool
	StoreURL       string
	StoreTimeout   time.Duration
	ArchiveUIURL   string
	MaxUploadBytes int64
}

// ReportsConfig configures measurement report storage.
type ReportsConfig struct {
	StorageDir      string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *fs.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	studiesLimit := v.GetInt("STUDIES_LIMIT")
	if studiesLimit <= 0 {
		studiesLimit = 101
	}
	resultsPerPage := v.GetInt("DEFAULT_RESULTS_PER_PAGE")
	if resultsPerPage <= 0 {
		resultsPerPage = 25
	}
	cfg.Worklist = WorklistConfig{
		StudiesLimit:          studiesLimit,
		DefaultResultsPerPage: resultsPerPage,
		PersistDebounce:       parseDuration(v.GetString("WORKLIST_PERSIST_DEBOUNCE"), 200*time.Millisecond),
		SessionTTL:            parseDuration(v.GetString("WORKLIST_SESSION_TTL"), 12*time.Hour),
		SeriesCacheSize:       v.GetInt("SERIES_CACHE_SIZE"),
		SeriesFetchTimeout:    parseDuration(v.GetString("SERIES_FETCH_TIMEOUT"), 15*time.Second),
		PreservedQueryKeys:    splitAndTrim(v.GetString("PRESERVED_QUERY_KEYS")),
		ViewerDataPath:        v.GetString("VIEWER_DATA_PATH"),
		ViewerModeName:        v.GetString("VIEWER_MODE_NAME"),
		ViewerModeRoute:       v.GetString("VIEWER_MODE_ROUTE"),
	}

	cfg.Measurements = MeasurementsConfig{
		PostURL:     v.GetString("MEASUREMENTS_POST_URL"),
		PostTimeout: parseDuration(v.GetString("MEASUREMENTS_POST_TIMEOUT"), 10*time.Second),
	}

	maxUpload := v.GetInt64("DICOM_MAX_UPLOAD_BYTES")
	if maxUpload <= 0 {
		maxUpload = 512 * 1024 * 1024
	}
	cfg.DICOM = DICOMConfig{
		UploadEnabled:  v.GetBool("DICOM_UPLOAD_ENABLED"),
		StoreURL:       v.GetString("DICOM_STORE_URL"),
		StoreTimeout:   parseDuration(v.GetString("DICOM_STORE_TIMEOUT"), time.Minute),
		ArchiveUIURL:   v.GetString("ARCHIVE_UI_URL"),
		MaxUploadBytes: maxUpload,
	}

	cfg.Reports = ReportsConfig{
		StorageDir:      v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret: v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), time.Hour),
		CleanupInterval: parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pacs_worklist")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "pacs-worklist-api")
	v.SetDefault("JWT_EXPIRATION", "12h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STUDIES_LIMIT", 101)
	v.SetDefault("DEFAULT_RESULTS_PER_PAGE", 25)
	v.SetDefault("WORKLIST_PERSIST_DEBOUNCE", "200ms")
	v.SetDefault("WORKLIST_SESSION_TTL", "12h")
	v.SetDefault("SERIES_CACHE_SIZE", 256)
	v.SetDefault("SERIES_FETCH_TIMEOUT", "15s")
	v.SetDefault("PRESERVED_QUERY_KEYS", "configUrl,multimonitor,screenNumber,hangingProtocolId,token")
	v.SetDefault("VIEWER_DATA_PATH", "")
	v.SetDefault("VIEWER_MODE_NAME", "Basic Viewer")
	v.SetDefault("VIEWER_MODE_ROUTE", "viewer")

	v.SetDefault("MEASUREMENTS_POST_URL", "http://python-service:5001/json")
	v.SetDefault("MEASUREMENTS_POST_TIMEOUT", "10s")

	v.SetDefault("DICOM_UPLOAD_ENABLED", false)
	v.SetDefault("DICOM_STORE_URL", "http://localhost:8080/dcm4chee-arc/aets/DCM4CHEE/rs/studies")
	v.SetDefault("DICOM_STORE_TIMEOUT", "1m")
	v.SetDefault("ARCHIVE_UI_URL", "http://localhost:8080/dcm4chee-arc/ui2")
	v.SetDefault("DICOM_MAX_UPLOAD_BYTES", 512*1024*1024)

	v.SetDefault("REPORTS_STORAGE_DIR", "./reports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "1h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
