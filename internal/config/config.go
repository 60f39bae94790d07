package config

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var (
	cfg     *APIConfig
	cfgErr  error
	once    sync.Once
	envOnce sync.Once
)

// ErrMissingSecret is returned when no token signing secret is configured.
var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// APIConfig represents the root element.
type APIConfig struct {
	XMLName        xml.Name             `xml:"API"`
	RequestDump    bool                 `xml:"REQUEST_DUMP,attr"`
	Context        ContextConfig        `xml:"CONTEXT"`
	Authentication AuthenticationConfig `xml:"AUTHENTICATION"`
	DB             DBConfig             `xml:"DB"`
	Logging        LoggingConfig        `xml:"LOGGING"`
	Uploads        UploadsConfig        `xml:"UPLOADS"`
	Report         ReportConfig         `xml:"REPORT"`

	// JWTSecret never lives in the XML file; it is read from the environment.
	JWTSecret string `xml:"-"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port           int    `xml:"PORT"`
	Host           string `xml:"HOST"`
	MaxConnections int    `xml:"MAX_CONNECTIONS"`
	AllowedOrigins string `xml:"ALLOWED_ORIGINS"`
	// TrustedProxies lists proxy addresses or CIDRs whose X-Forwarded-For
	// is believed. Empty means the socket address is the client.
	TrustedProxies string `xml:"TRUSTED_PROXIES"`
}

// AuthenticationConfig holds authentication settings.
type AuthenticationConfig struct {
	StrictTiming    bool `xml:"STRICT_TIMING,attr"`
	TokenValidDays  int  `xml:"TOKEN_VALID_DAYS"`
	LoginRatePerMin int  `xml:"LOGIN_RATE_PER_MIN"`
	LoginBurst      int  `xml:"LOGIN_BURST"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Driver     string       `xml:"DRIVER"`
	DSN        string       `xml:"DSN"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	SSLMode    string       `xml:"SSL_MODE"`
	Names      DBNames      `xml:"NAMES"`
	Username   string       `xml:"USERNAME"`
	Password   DBPassword   `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBNames holds the names defined in the DB section.
type DBNames struct {
	OKURMEN string `xml:"OKURMEN,attr"`
}

// DBPassword holds password details.
type DBPassword struct {
	Type  string `xml:"TYPE,attr"`
	Value string `xml:",chardata"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// LoggingConfig controls the rotated log files.
type LoggingConfig struct {
	Debug      bool   `xml:"DEBUG,attr"`
	Dir        string `xml:"DIR"`
	MaxSizeMB  int    `xml:"MAX_SIZE_MB"`
	MaxBackups int    `xml:"MAX_BACKUPS"`
	MaxAgeDays int    `xml:"MAX_AGE_DAYS"`
}

// UploadsConfig limits question image uploads.
type UploadsConfig struct {
	MaxImageBytes int64 `xml:"MAX_IMAGE_BYTES"`
}

// ReportConfig configures PDF rendering.
type ReportConfig struct {
	FontPath string `xml:"FONT_PATH"`
}

// Default returns the configuration used when no XML file is present.
func Default() *APIConfig {
	return &APIConfig{
		Context: ContextConfig{
			Port:           5001,
			Host:           "0.0.0.0",
			MaxConnections: 512,
			AllowedOrigins: "*",
		},
		Authentication: AuthenticationConfig{
			TokenValidDays:  7,
			LoginRatePerMin: 30,
			LoginBurst:      10,
		},
		DB: DBConfig{
			Initialize: true,
			Driver:     "sqlite",
			Pool: DBPoolConfig{
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
		},
		Logging: LoggingConfig{
			Dir:        "logs",
			MaxSizeMB:  20,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Uploads: UploadsConfig{MaxImageBytes: 5 * 1024 * 1024},
	}
}

// LoadConfig loads and parses the XML configuration from the given file,
// then applies environment overrides. A missing file falls back to Default.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		loadEnvFile()

		newCfg := Default()
		f, err := os.Open(xmlPath)
		switch {
		case err == nil:
			defer f.Close()
			data, err := io.ReadAll(f)
			if err != nil {
				cfgErr = err
				return
			}
			if err := xml.Unmarshal(data, newCfg); err != nil {
				cfgErr = err
				return
			}
		case !errors.Is(err, os.ErrNotExist):
			cfgErr = err
			return
		}

		applyEnv(newCfg)
		if err := newCfg.Validate(); err != nil {
			cfgErr = err
			return
		}
		cfg = newCfg
	})

	if cfg == nil {
		if cfgErr == nil {
			cfgErr = os.ErrInvalid
		}
		return nil, cfgErr
	}
	return cfg, nil
}

// Validate rejects configurations the process must not start with.
func (c *APIConfig) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingSecret
	}
	if c.Authentication.TokenValidDays <= 0 {
		c.Authentication.TokenValidDays = 7
	}
	if c.Uploads.MaxImageBytes <= 0 {
		c.Uploads.MaxImageBytes = 5 * 1024 * 1024
	}
	return nil
}

// Origins splits the configured CORS origins.
func (c *APIConfig) Origins() []string {
	return splitList(c.Context.AllowedOrigins)
}

// Proxies splits the configured trusted proxies.
func (c *APIConfig) Proxies() []string {
	return splitList(c.Context.TrustedProxies)
}

func splitList(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func loadEnvFile() {
	envOnce.Do(func() {
		// .env is optional; real environment variables still apply.
		_ = godotenv.Load()
	})
}

func applyEnv(c *APIConfig) {
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if v := os.Getenv("DB_DRIVER"); v != "" {
		c.DB.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Context.Port = p
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Context.AllowedOrigins = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Context.TrustedProxies = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}
	if v := os.Getenv("REPORT_FONT"); v != "" {
		c.Report.FontPath = v
	}
	switch strings.ToLower(os.Getenv("STRICT_TIMING")) {
	case "1", "true", "yes":
		c.Authentication.StrictTiming = true
	case "0", "false", "no":
		c.Authentication.StrictTiming = false
	}
}
