package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Storage
	DBPath   string `long:"db-path" env:"DB_PATH" default:"./data.db" description:"Path to the SQLite database file"`
	SeedFile string `long:"seed-file" env:"SEED_FILE" default:"./feeds.yml" description:"YAML file with feeds inserted into an empty database"`

	// HTTP boundary
	Port              string `long:"port" env:"PORT" default:"1377" description:"HTTP server port"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key required for mutating endpoints (optional)"`
	KeepAliveInterval int    `long:"keepalive-interval" env:"KEEPALIVE_INTERVAL" default:"25" description:"Event stream keep-alive interval in seconds"`

	// Ingestion
	FetchInterval   int `long:"fetch-interval" env:"FETCH_INTERVAL" default:"300" description:"Ingestion interval in seconds"`
	FetchTimeout    int `long:"fetch-timeout" env:"FETCH_TIMEOUT" default:"10" description:"Per-attempt feed fetch timeout in seconds"`
	FetchRetries    int `long:"fetch-retries" env:"FETCH_RETRIES" default:"2" description:"Additional fetch attempts after the first failure"`
	TeaserMaxLength int `long:"teaser-max-length" env:"TEASER_MAX_LENGTH" default:"220" description:"Maximum teaser length in characters"`

	// Logo resolution
	LogoPageTimeout int   `long:"logo-page-timeout" env:"LOGO_PAGE_TIMEOUT" default:"6" description:"Website page fetch timeout in seconds"`
	LogoIconTimeout int   `long:"logo-icon-timeout" env:"LOGO_ICON_TIMEOUT" default:"8" description:"Icon fetch timeout in seconds"`
	LogoMaxBytes    int64 `long:"logo-max-bytes" env:"LOGO_MAX_BYTES" default:"204800" description:"Maximum accepted icon size in bytes"`

	// Event forwarding
	AMQPURL      string `long:"amqp-url" env:"AMQP_URL" description:"AMQP broker URL for forwarding events (optional)"`
	AMQPExchange string `long:"amqp-exchange" env:"AMQP_EXCHANGE" default:"rss_desk" description:"AMQP exchange for forwarded events"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Desk/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Berlin)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses args instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	// A missing .env file is the normal case outside development.
	_ = godotenv.Load()

	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := raw.validate(); err != nil {
		return nil, err
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		SeedFile:          raw.SeedFile,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		KeepAliveInterval: seconds(raw.KeepAliveInterval),
		FetchInterval:     seconds(raw.FetchInterval),
		FetchTimeout:      seconds(raw.FetchTimeout),
		FetchRetries:      raw.FetchRetries,
		TeaserMaxLength:   raw.TeaserMaxLength,
		LogoPageTimeout:   seconds(raw.LogoPageTimeout),
		LogoIconTimeout:   seconds(raw.LogoIconTimeout),
		LogoMaxBytes:      raw.LogoMaxBytes,
		AMQPURL:           raw.AMQPURL,
		AMQPExchange:      raw.AMQPExchange,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func (r *rawCfg) validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"fetch interval", r.FetchInterval},
		{"fetch timeout", r.FetchTimeout},
		{"teaser max length", r.TeaserMaxLength},
		{"logo page timeout", r.LogoPageTimeout},
		{"logo icon timeout", r.LogoIconTimeout},
		{"keepalive interval", r.KeepAliveInterval},
	}
	for _, field := range positive {
		if field.value <= 0 {
			return fmt.Errorf("%s must be positive", field.name)
		}
	}
	if r.FetchRetries < 0 {
		return fmt.Errorf("fetch retries must be non-negative")
	}
	if r.LogoMaxBytes <= 0 {
		return fmt.Errorf("logo max bytes must be positive")
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
