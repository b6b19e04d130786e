package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	DefaultAPIBaseURL     = "http://localhost:5000/api"
	DefaultRequestTimeout = 10 * time.Second
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Port           string        `yaml:"port" validate:"required"`
	APIBaseURL     string        `yaml:"api_base_url" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"required,gt=0"`
	VisitorTTL     time.Duration `yaml:"visitor_ttl" validate:"required,gt=0"` // idle visitors are evicted after this
	SweepInterval  time.Duration `yaml:"sweep_interval" validate:"required,gt=0"`
	MaxVisitors    int           `yaml:"max_visitors" validate:"required,gt=0"` // least recently seen is evicted beyond this
	SecureCookies  bool          `yaml:"secure_cookies"`
	MaxUploadSize  int64         `yaml:"max_upload_size" validate:"required,gt=0"` // bytes, excel uploads
	AllowedOrigins []string      `yaml:"allowed_origins"`                          // CORS for /api
	LogLevel       string        `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogJSON        bool          `yaml:"log_json"`
}

type Private struct {
	SessionKey string `yaml:"session_key" validate:"required,min=16"` // signs visitor cookies
}

func (c *Config) SessionKey() string {
	return c.private.SessionKey
}

func defaultPublic() Public {
	return Public{
		Port:           "8081",
		APIBaseURL:     DefaultAPIBaseURL,
		RequestTimeout: DefaultRequestTimeout,
		VisitorTTL:     24 * time.Hour,
		SweepInterval:  10 * time.Minute,
		MaxVisitors:    10000,
		MaxUploadSize:  16 << 20,
		LogLevel:       "info",
	}
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + err.Error())
	}
}

// applyEnv lets the deployment override what the files say.
func applyEnv(public *Public, private *Private) {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		public.APIBaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		public.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		public.LogLevel = v
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			public.LogJSON = b
		}
	}
	if v := os.Getenv("SESSION_KEY"); v != "" {
		private.SessionKey = v
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, applies
// environment overrides and panics if the result is invalid.
func MustLoad(configFolder string) *Config {
	public := defaultPublic()
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	privatePath := path.Join(configFolder, "private.yaml")
	if _, err := os.Stat(privatePath); err == nil {
		mustLoadPath(privatePath, &private)
	}

	applyEnv(&public, &private)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(public); err != nil {
		panic(fmt.Sprintf("invalid public config: %v", err))
	}
	if err := validate.Struct(private); err != nil {
		panic(fmt.Sprintf("invalid private config: %v", err))
	}

	return &Config{public, private}
}
