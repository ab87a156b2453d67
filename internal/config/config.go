// Package config is the configuration of the indicadores commands.
//
// Values come from, in increasing priority: Default, the json5 config file and its local
// override, a .env file and finally the process environment.
package config

import (
	"errors"
	"fmt"
	"indicadores-backend/internal/chrono"
	"indicadores-backend/internal/scrapers/previred"
	"indicadores-backend/internal/scrapers/sii"
	"indicadores-backend/lib/configutil"
	configlibsql "indicadores-backend/lib/configutil/libsql"
	"indicadores-backend/lib/restyutil"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
)

const DefaultFile = "config.json5"

type SII struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	Years   int    `json:"years" validate:"min=1,max=10"`
}

type Previred struct {
	URL              string `json:"url" validate:"required,url"`
	BypassCloudflare bool   `json:"bypass_cloudflare"`
}

type HTTP struct {
	UserAgent         string  `json:"user_agent"`
	TimeoutSeconds    int     `json:"timeout_seconds" validate:"min=0"`
	RequestsPerSecond float64 `json:"requests_per_second" validate:"min=0"`
}

type Config struct {
	Port     int                 `json:"port" validate:"min=1,max=65535"`
	Database configlibsql.Struct `json:"database"`
	SII      SII                 `json:"sii"`
	Previred Previred            `json:"previred"`
	HTTP     HTTP                `json:"http"`
	// Schedule is the cron spec update cycles run on while serving, empty disables them.
	Schedule string `json:"schedule"`
	Timezone string `json:"timezone" validate:"required"`
	// CacheSeconds is how long looked up values are kept in memory, zero disables the cache.
	CacheSeconds int    `json:"cache_seconds" validate:"min=0"`
	DonationURL  string `json:"donation_url" validate:"omitempty,url"`
}

// environment is the set of variables that override the file.
type environment struct {
	Port           int    `envconfig:"PORT"`
	DBFile         string `envconfig:"INDICADORES_DB_FILE"`
	DBUrl          string `envconfig:"INDICADORES_DB_URL"`
	DBAuthToken    string `envconfig:"INDICADORES_DB_AUTH_TOKEN"`
	Schedule       string `envconfig:"INDICADORES_SCHEDULE"`
	PreviredBypass *bool  `envconfig:"INDICADORES_PREVIRED_BYPASS_CLOUDFLARE"`
}

func Default() Config {
	return Config{
		Port: 8080,
		Database: configlibsql.Struct{
			File: "indicadores.db",
		},
		SII: SII{
			BaseURL: sii.DefaultBaseURL,
			Years:   sii.DefaultYears,
		},
		Previred: Previred{
			URL: previred.DefaultURL,
		},
		HTTP: HTTP{
			UserAgent:         previred.DefaultUserAgent,
			TimeoutSeconds:    30,
			RequestsPerSecond: 1,
		},
		Schedule:     "0 9 * * *",
		Timezone:     chrono.DefaultLocation,
		CacheSeconds: 300,
		DonationURL:  "https://www.buymeacoffee.com/indicadoreschile",
	}
}

// Load reads the configuration starting from Default, a missing file at `path` is not an error.
func Load(path string) (Config, error) {
	config := Default()
	err := configutil.ReadInto(path, &config)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	var env environment
	err = envconfig.Process("", &env)
	if err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	config.applyEnvironment(env)

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) applyEnvironment(env environment) {
	if env.Port != 0 {
		c.Port = env.Port
	}
	if env.DBFile != "" {
		c.Database.File = env.DBFile
	}
	if env.DBUrl != "" {
		c.Database.Url = env.DBUrl
	}
	if env.DBAuthToken != "" {
		c.Database.AuthToken = env.DBAuthToken
	}
	if env.Schedule != "" {
		c.Schedule = env.Schedule
	}
	if env.PreviredBypass != nil {
		c.Previred.BypassCloudflare = *env.PreviredBypass
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Database.File == "" && c.Database.Url == "" {
		return fmt.Errorf("invalid config: database needs either a file or a url")
	}
	if c.Schedule != "" {
		_, err = cron.ParseStandard(c.Schedule)
		if err != nil {
			return fmt.Errorf("invalid config: schedule %q: %w", c.Schedule, err)
		}
	}
	_, err = time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid config: timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// ClientOptions is the http configuration shared by both scrapers, `baseURL` is the only field
// that differs between them.
func (c Config) ClientOptions(baseURL string) restyutil.Options {
	return restyutil.Options{
		BaseURL:           baseURL,
		UserAgent:         c.HTTP.UserAgent,
		Timeout:           time.Duration(c.HTTP.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.HTTP.RequestsPerSecond,
	}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheSeconds) * time.Second
}
