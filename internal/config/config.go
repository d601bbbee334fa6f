package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverREST   = "rest"
	StoreDriverSQLite = "sqlite"

	AuthDriverRemote = "remote"
	AuthDriverLocal  = "local"
)

// Config holds all configuration for the application.
type Config struct {
	Logger  Logger  `mapstructure:"logger"`
	Server  Server  `mapstructure:"server"`
	Backend Backend `mapstructure:"backend"`
	Store   Store   `mapstructure:"store"`
	Auth    Auth    `mapstructure:"auth"`
	Journal Journal `mapstructure:"journal"`
}

// Backend holds the configuration for the hosted row/auth API.
type Backend struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// Store selects where trade records live.
type Store struct {
	Driver string `mapstructure:"driver"`
	Table  string `mapstructure:"table"`
	DSN    string `mapstructure:"dsn"`
}

// Auth selects the identity provider.
type Auth struct {
	Driver      string        `mapstructure:"driver"`
	JWTSecret   string        `mapstructure:"jwt_secret"`
	TokenTTL    time.Duration `mapstructure:"token_ttl"`
	SessionFile string        `mapstructure:"session_file"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Journal holds the master lists offered to the user and the default capital.
type Journal struct {
	InitialCapital float64      `mapstructure:"initial_capital"`
	Instruments    []Instrument `mapstructure:"instruments"`
	Strategies     []string     `mapstructure:"strategies"`
	Emotions       []string     `mapstructure:"emotions"`
	Sessions       []string     `mapstructure:"sessions"`
}

// Instrument is a tradable instrument keyed by a stable identifier. The
// multiplier converts a price move times lot size into account currency.
type Instrument struct {
	ID         string  `mapstructure:"id" json:"id" yaml:"id"`
	Label      string  `mapstructure:"label" json:"label" yaml:"label"`
	Multiplier float64 `mapstructure:"multiplier" json:"multiplier" yaml:"multiplier"`
}

// Multipliers returns the instrument id -> multiplier table.
func (j Journal) Multipliers() map[string]float64 {
	out := make(map[string]float64, len(j.Instruments))
	for _, in := range j.Instruments {
		out[in.ID] = in.Multiplier
	}
	return out
}

// Instrument looks up an instrument by id.
func (j Journal) Instrument(id string) (Instrument, bool) {
	for _, in := range j.Instruments {
		if in.ID == id {
			return in, true
		}
	}
	return Instrument{}, false
}

// DefaultJournal returns the built-in master lists.
func DefaultJournal() Journal {
	return Journal{
		InitialCapital: 1000,
		Instruments: []Instrument{
			{ID: "BOOM300", Label: "Boom 300", Multiplier: 1},
			{ID: "BOOM500", Label: "Boom 500", Multiplier: 1},
			{ID: "BOOM1000", Label: "Boom 1000", Multiplier: 1},
			{ID: "CRASH300", Label: "Crash 300", Multiplier: 1},
			{ID: "CRASH500", Label: "Crash 500", Multiplier: 1},
			{ID: "CRASH1000", Label: "Crash 1000", Multiplier: 1},
			{ID: "VOL75", Label: "Volatility 75", Multiplier: 1},
			{ID: "EURUSD", Label: "EURUSD", Multiplier: 1},
			{ID: "XAUUSD", Label: "XAUUSD", Multiplier: 100},
			{ID: "US30", Label: "US30", Multiplier: 10},
			{ID: "BTCUSD", Label: "BTCUSD", Multiplier: 1},
		},
		Strategies: []string{"Pullback", "Rompimiento", "Reversión", "Continuidad", "Smart Money", "Scalping", "Caza Spikes"},
		Emotions:   []string{"Confiado", "Miedo", "Venganza", "Euforia", "Aburrido", "Ansioso"},
		Sessions:   []string{"Londres", "Nueva York", "Asia", "Cierre Londres", "Pre-Mercado", "Indefinido"},
	}
}

// Validate checks driver names and the instrument table.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverREST, StoreDriverSQLite:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", StoreDriverREST, StoreDriverSQLite, c.Store.Driver)
	}
	switch c.Auth.Driver {
	case AuthDriverRemote, AuthDriverLocal:
	default:
		return fmt.Errorf("auth.driver must be %q or %q, got %q", AuthDriverRemote, AuthDriverLocal, c.Auth.Driver)
	}
	if (c.Store.Driver == StoreDriverREST || c.Auth.Driver == AuthDriverRemote) && c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required for the hosted drivers")
	}
	if c.Store.Driver == StoreDriverSQLite && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required for the sqlite driver")
	}
	if c.Auth.Driver == AuthDriverLocal && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required for the local driver")
	}
	if c.Journal.InitialCapital < 0 {
		return fmt.Errorf("journal.initial_capital must not be negative")
	}

	seen := make(map[string]struct{}, len(c.Journal.Instruments))
	for _, in := range c.Journal.Instruments {
		if in.ID == "" {
			return fmt.Errorf("journal.instruments: id is required")
		}
		if _, dup := seen[in.ID]; dup {
			return fmt.Errorf("journal.instruments: duplicate id %q", in.ID)
		}
		seen[in.ID] = struct{}{}
		if in.Multiplier <= 0 {
			return fmt.Errorf("journal.instruments: multiplier for %q must be positive", in.ID)
		}
	}
	return nil
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in the working directory is loaded first when present.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}

	fillJournalDefaults(&config.Journal)
	if config.Journal.InitialCapital == 0 && !v.IsSet("journal.initial_capital") {
		config.Journal.InitialCapital = DefaultJournal().InitialCapital
	}

	err = config.Validate()
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("server.port", 8080)

	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.rate_limit", 10) // requests per second
	v.SetDefault("backend.rate_limit_burst", 5)
	v.SetDefault("backend.timeout", "15s")

	v.SetDefault("store.driver", StoreDriverSQLite)
	v.SetDefault("store.table", "trades")
	v.SetDefault("store.dsn", "journal.db")

	v.SetDefault("auth.driver", AuthDriverLocal)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "1h")
	v.SetDefault("auth.session_file", ".journal-session.json")
}

func fillJournalDefaults(j *Journal) {
	def := DefaultJournal()
	if len(j.Instruments) == 0 {
		j.Instruments = def.Instruments
	}
	for i := range j.Instruments {
		if j.Instruments[i].Label == "" {
			j.Instruments[i].Label = j.Instruments[i].ID
		}
		if j.Instruments[i].Multiplier == 0 {
			j.Instruments[i].Multiplier = 1
		}
	}
	if len(j.Strategies) == 0 {
		j.Strategies = def.Strategies
	}
	if len(j.Emotions) == 0 {
		j.Emotions = def.Emotions
	}
	if len(j.Sessions) == 0 {
		j.Sessions = def.Sessions
	}
}
