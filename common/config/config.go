package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func loadEnvString(key string, result *string) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	*result = s
}

func loadEnvUint(key string, result *uint) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return
	}
	*result = uint(n)
}

func loadEnvBool(key string, result *bool) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return
	}
	*result = b
}

// loadEnvDuration accepts Go duration strings ("3s", "500ms").
func loadEnvDuration(key string, result *time.Duration) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return
	}
	*result = d
}

/* Configuration */

/* PgSQL Configuration */
type pgSqlConfig struct {
	Host     string `json:"host"`
	Port     uint   `json:"port"`
	Database string `json:"database"`
	SslMode  string `json:"ssl_mode"`
	User     string `json:"user"`
	Password string `json:"password"`

	// TraceSkipTable silences query tracing for statements touching this table.
	TraceSkipTable string `json:"trace_skip_table"`
}

func (p pgSqlConfig) ConnStr() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s", p.Host, p.Port, p.User, p.Password, p.Database, p.SslMode)
}

func defaultPgSql() pgSqlConfig {
	return pgSqlConfig{
		Host:           "localhost",
		Port:           5432,
		Database:       "scooby_db",
		User:           "postgres",
		Password:       "postgres",
		SslMode:        "disable",
		TraceSkipTable: "tasks",
	}
}

func (p *pgSqlConfig) loadFromEnv() {
	loadEnvString("POSTGRES_HOST", &p.Host)
	loadEnvUint("POSTGRES_PORT", &p.Port)
	loadEnvString("POSTGRES_DB_NAME", &p.Database)
	loadEnvString("POSTGRES_SSLMODE", &p.SslMode)
	loadEnvString("POSTGRES_USERNAME", &p.User)
	loadEnvString("POSTGRES_PASSWORD", &p.Password)
	loadEnvString("POSTGRES_TRACE_SKIP_TABLE", &p.TraceSkipTable)
}

/* Listen Configuration */

type listenConfig struct {
	Host string `json:"host"`
	Port uint   `json:"port"`
}

func (l listenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

func defaultListenConfig() listenConfig {
	return listenConfig{
		Host: "127.0.0.1",
		Port: 8080,
	}
}

func (l *listenConfig) loadFromEnv() {
	loadEnvString("LISTEN_HOST", &l.Host)
	loadEnvUint("LISTEN_PORT", &l.Port)
}

type hostConfig struct {
	Host string `json:"host"`
}

func (h *hostConfig) loadFromEnv() {
	loadEnvString("HOST", &h.Host)
}

func defaultHostConfig() hostConfig {
	return hostConfig{
		Host: "localhost",
	}
}

type natsConfig struct {
	Enabled  bool
	Host     string
	Port     uint
	Username string
	Password string
}

func (c *natsConfig) loadFromEnv() {
	loadEnvBool("NATS_ENABLED", &c.Enabled)
	c.Host = getEnv("NATS_HOST", c.Host)
	loadEnvUint("NATS_PORT", &c.Port)
	c.Username = getEnv("NATS_USER", c.Username)
	c.Password = getEnv("NATS_PASSWORD", c.Password)
}

func (c *natsConfig) URL() string {
	return fmt.Sprintf("nats://%s:%d", c.Host, c.Port)
}

func defaultNatsConfig() natsConfig {
	return natsConfig{
		Enabled:  false,
		Host:     "localhost",
		Port:     4222,
		Username: "",
		Password: "",
	}
}

type redisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     uint   `json:"port"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

func (r *redisConfig) loadFromEnv() {
	loadEnvBool("REDIS_ENABLED", &r.Enabled)
	loadEnvString("REDIS_HOST", &r.Host)
	loadEnvUint("REDIS_PORT", &r.Port)
	loadEnvString("REDIS_PASSWORD", &r.Password)

	// Load DB number with a default of 0
	if dbStr := getEnv("REDIS_DB", "0"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			r.DB = db
		}
	}
	log.Info().Interface("redis", r).Msg("Redis config loaded")
}

func defaultRedisConfig() redisConfig {
	return redisConfig{
		Enabled:  false,
		Host:     "localhost",
		Port:     6379,
		Password: "",
		DB:       0,
	}
}

type GCSConfig struct {
	ProjectID       string
	CredentialsFile string
	Bucket          string
}

func (g *GCSConfig) loadFromEnv() {
	g.ProjectID = getEnv("GCS_PROJECT_ID", "")
	g.CredentialsFile = getEnv("GCS_CREDENTIALS_FILE", "")
	g.Bucket = getEnv("GCS_STORAGE_BUCKET", "")
}

// Enabled reports whether raw pages should be archived to a bucket.
func (g GCSConfig) Enabled() bool {
	return g.Bucket != ""
}

func defaultGcsConfig() GCSConfig {
	return GCSConfig{
		ProjectID:       "",
		CredentialsFile: "",
		Bucket:          "",
	}
}

/* Scraper Configuration */

type ScraperConfig struct {
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	MinPageDelay   time.Duration
	MaxPageDelay   time.Duration
	LogCapacity    uint // bounds the in-memory task log buffer
	Workers        uint
	QueueSize      uint
	ArchivePages   bool
}

func (s *ScraperConfig) loadFromEnv() {
	loadEnvString("SCRAPER_BASE_URL", &s.BaseURL)
	loadEnvString("SCRAPER_USER_AGENT", &s.UserAgent)
	loadEnvDuration("SCRAPER_REQUEST_TIMEOUT", &s.RequestTimeout)
	loadEnvDuration("SCRAPER_MIN_PAGE_DELAY", &s.MinPageDelay)
	loadEnvDuration("SCRAPER_MAX_PAGE_DELAY", &s.MaxPageDelay)
	loadEnvUint("SCRAPER_LOG_CAPACITY", &s.LogCapacity)
	loadEnvUint("SCRAPER_WORKERS", &s.Workers)
	loadEnvUint("SCRAPER_QUEUE_SIZE", &s.QueueSize)
	loadEnvBool("SCRAPER_ARCHIVE_PAGES", &s.ArchivePages)

	if s.MaxPageDelay < s.MinPageDelay {
		s.MaxPageDelay = s.MinPageDelay
	}
}

func defaultScraperConfig() ScraperConfig {
	return ScraperConfig{
		BaseURL:        "https://www.fincaraiz.com.co",
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3",
		RequestTimeout: 30 * time.Second,
		MinPageDelay:   2 * time.Second,
		MaxPageDelay:   5 * time.Second,
		LogCapacity:    100,
		Workers:        4,
		QueueSize:      50,
		ArchivePages:   false,
	}
}

type logConfig struct {
	Level  string
	Pretty bool
}

func (l *logConfig) loadFromEnv() {
	loadEnvString("LOG_LEVEL", &l.Level)
	loadEnvBool("LOG_PRETTY", &l.Pretty)
}

func defaultLogConfig() logConfig {
	return logConfig{
		Level:  "info",
		Pretty: false,
	}
}

type Config struct {
	Host    hostConfig
	Listen  listenConfig
	PgSql   pgSqlConfig
	Nats    natsConfig
	Redis   redisConfig
	GCS     GCSConfig
	Scraper ScraperConfig
	Log     logConfig
}

func (c *Config) LoadFromEnv() {
	c.Host.loadFromEnv()
	c.Listen.loadFromEnv()
	c.PgSql.loadFromEnv()
	c.Nats.loadFromEnv()
	c.Redis.loadFromEnv()
	c.GCS.loadFromEnv()
	c.Scraper.loadFromEnv()
	c.Log.loadFromEnv()
}

func DefaultConfig() Config {
	return Config{
		Host:    defaultHostConfig(),
		Listen:  defaultListenConfig(),
		PgSql:   defaultPgSql(),
		Nats:    defaultNatsConfig(),
		Redis:   defaultRedisConfig(),
		GCS:     defaultGcsConfig(),
		Scraper: defaultScraperConfig(),
		Log:     defaultLogConfig(),
	}
}
