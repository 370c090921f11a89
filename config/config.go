package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

var (
	ErrMissingToken       = errors.New("TOKEN is required in .env or environment")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
)

// Config is built once at startup and never changed afterwards.
type Config struct {
	Token       string
	Port        string
	LogLevel    string
	StoreDriver string
	DataFile    string
	DatabaseURL string

	TicketPriceUSD   decimal.Decimal
	TicketPriceRobux int64
	AdminIDs         []string
	DrawChannel      string
	CommandChannel   string
	LogChannel       string
	MinPlayers       int
	DrawInterval     time.Duration
	CheckSchedule    string
	ReplyTimeout     time.Duration
	AllowedOrigins   []string
}

// fileConfig mirrors the optional YAML file named by LOTTO_CONFIG.
type fileConfig struct {
	TicketPriceUSD      *float64 `yaml:"ticket_price_usd"`
	TicketPriceRobux    *int64   `yaml:"ticket_price_robux"`
	AdminIDs            []string `yaml:"admin_ids"`
	DrawChannel         string   `yaml:"draw_channel"`
	CommandChannel      string   `yaml:"command_channel"`
	LogChannel          string   `yaml:"log_channel"`
	MinPlayers          *int     `yaml:"min_players"`
	DrawIntervalDays    *int     `yaml:"draw_interval_days"`
	CheckSchedule       string   `yaml:"check_schedule"`
	ReplyTimeoutSeconds *int     `yaml:"reply_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

// Default returns the settings the bot ships with.
func Default() Config {
	return Config{
		Port:             "8080",
		LogLevel:         "info",
		StoreDriver:      StoreFile,
		DataFile:         "lotto_data.json",
		TicketPriceUSD:   decimal.RequireFromString("0.25"),
		TicketPriceRobux: 20,
		AdminIDs:         []string{"667010067585040390", "855507814352158730"},
		DrawChannel:      "inzo-lotto-result",
		CommandChannel:   "lotto-commands",
		LogChannel:       "lotto-log",
		MinPlayers:       3,
		DrawInterval:     14 * 24 * time.Hour,
		CheckSchedule:    "@every 24h",
		ReplyTimeout:     120 * time.Second,
		AllowedOrigins:   []string{"http://localhost:3000"},
	}
}

// Load reads .env (if present), the environment and the optional LOTTO_CONFIG
// YAML file, in that order of precedence for secrets: env wins.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	cfg := Default()

	if path := os.Getenv("LOTTO_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.Token = os.Getenv("TOKEN")
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.StoreDriver, "STORE_DRIVER")
	setString(&cfg.DataFile, "DATA_FILE")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		cfg.AdminIDs = splitList(v)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting the bot cannot start with.
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	switch c.StoreDriver {
	case StoreFile:
		if c.DataFile == "" {
			return errors.New("DATA_FILE must not be empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TicketPriceUSD.IsNegative() || c.TicketPriceRobux < 0 {
		return errors.New("ticket prices must not be negative")
	}
	if c.MinPlayers < 0 {
		return errors.New("min_players must not be negative")
	}
	if c.ReplyTimeout <= 0 || c.DrawInterval <= 0 {
		return errors.New("reply timeout and draw interval must be positive")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if fc.TicketPriceUSD != nil {
		c.TicketPriceUSD = decimal.NewFromFloat(*fc.TicketPriceUSD)
	}
	if fc.TicketPriceRobux != nil {
		c.TicketPriceRobux = *fc.TicketPriceRobux
	}
	if len(fc.AdminIDs) > 0 {
		c.AdminIDs = fc.AdminIDs
	}
	if fc.DrawChannel != "" {
		c.DrawChannel = fc.DrawChannel
	}
	if fc.CommandChannel != "" {
		c.CommandChannel = fc.CommandChannel
	}
	if fc.LogChannel != "" {
		c.LogChannel = fc.LogChannel
	}
	if fc.MinPlayers != nil {
		c.MinPlayers = *fc.MinPlayers
	}
	if fc.DrawIntervalDays != nil {
		c.DrawInterval = time.Duration(*fc.DrawIntervalDays) * 24 * time.Hour
	}
	if fc.CheckSchedule != "" {
		c.CheckSchedule = fc.CheckSchedule
	}
	if fc.ReplyTimeoutSeconds != nil {
		c.ReplyTimeout = time.Duration(*fc.ReplyTimeoutSeconds) * time.Second
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
