// Package config centralises runtime configuration for the orientwire
// client: server address, credentials, timeouts, and telemetry wiring.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coachpo/orientwire/internal/protocol"
)

// Credentials captures the username and password used to authenticate
// against a server or a database.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ServerSettings locates the database server.
type ServerSettings struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Address renders the server settings as a dialable host:port pair.
func (s ServerSettings) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DatabaseSettings names the default database and how it is stored.
type DatabaseSettings struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Storage string `yaml:"storage"`
}

// TimeoutSettings bounds every blocking socket operation.
type TimeoutSettings struct {
	Connect time.Duration `yaml:"connect"`
	Read    time.Duration `yaml:"read"`
	Write   time.Duration `yaml:"write"`
}

// TelemetryConfig configures the OTLP metric exporter.
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
	ServiceName  string `yaml:"serviceName"`
}

// Settings is the configuration tree loaded from defaults, environment,
// and optionally a YAML file.
type Settings struct {
	Server          ServerSettings   `yaml:"server"`
	Credentials     Credentials      `yaml:"credentials"`
	Database        DatabaseSettings `yaml:"database"`
	Timeouts        TimeoutSettings  `yaml:"timeouts"`
	Serialization   string           `yaml:"serialization"`
	TokenAuth       bool             `yaml:"tokenAuth"`
	MinimumProtocol int              `yaml:"minimumProtocol"`
	Telemetry       TelemetryConfig  `yaml:"telemetry"`
}

// Default returns the default client configuration: a local server on
// the standard binary-protocol port, 30-second operation bounds, and
// CSV document serialization.
func Default() Settings {
	return Settings{
		Server: ServerSettings{Host: "localhost", Port: 2424},
		Database: DatabaseSettings{
			Type:    protocol.DBTypeDocument,
			Storage: protocol.StoragePLocal,
		},
		Timeouts: TimeoutSettings{
			Connect: 30 * time.Second,
			Read:    30 * time.Second,
			Write:   30 * time.Second,
		},
		Serialization:   protocol.SerializationCSV,
		TokenAuth:       false,
		MinimumProtocol: 0,
	}
}

// FromEnv loads configuration values from ORIENTWIRE_* environment
// variables, overriding defaults.
func FromEnv() Settings {
	cfg := Default()

	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_HOST")); v != "" {
		cfg.Server.Host = v
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_USER")); v != "" {
		cfg.Credentials.Username = v
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_PASSWORD")); v != "" {
		cfg.Credentials.Password = v
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_DB")); v != "" {
		cfg.Database.Name = v
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_DB_TYPE")); v != "" {
		cfg.Database.Type = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_DB_STORAGE")); v != "" {
		cfg.Database.Storage = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_CONNECT_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.Timeouts.Connect = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_READ_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.Timeouts.Read = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_WRITE_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			cfg.Timeouts.Write = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_TOKEN_AUTH")); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			cfg.TokenAuth = on
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_MIN_PROTOCOL")); v != "" {
		if floor, err := strconv.Atoi(v); err == nil {
			cfg.MinimumProtocol = floor
		}
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_OTLP_ENDPOINT")); v != "" {
		cfg.Telemetry.OTLPEndpoint = v
	}
	if v := strings.TrimSpace(os.Getenv("ORIENTWIRE_SERVICE_NAME")); v != "" {
		cfg.Telemetry.ServiceName = v
	}
	return cfg
}

// Option mutates Settings when applied via Apply.
type Option func(*Settings)

// Apply applies the provided Option set to a copy of the base Settings.
func Apply(base Settings, opts ...Option) Settings {
	cfg := base
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithAddress overrides the server host and port.
func WithAddress(host string, port int) Option {
	host = strings.TrimSpace(host)
	return func(s *Settings) {
		if host != "" {
			s.Server.Host = host
		}
		if port > 0 {
			s.Server.Port = port
		}
	}
}

// WithCredentials overrides the login credentials.
func WithCredentials(username, password string) Option {
	return func(s *Settings) {
		if username != "" {
			s.Credentials.Username = username
		}
		if password != "" {
			s.Credentials.Password = password
		}
	}
}

// WithDatabase overrides the default database name and placement.
func WithDatabase(name, dbType, storage string) Option {
	return func(s *Settings) {
		if name != "" {
			s.Database.Name = name
		}
		if dbType != "" {
			s.Database.Type = strings.ToLower(dbType)
		}
		if storage != "" {
			s.Database.Storage = strings.ToLower(storage)
		}
	}
}

// WithTimeouts overrides the socket operation bounds. Zero values keep
// the existing setting.
func WithTimeouts(connect, read, write time.Duration) Option {
	return func(s *Settings) {
		if connect > 0 {
			s.Timeouts.Connect = connect
		}
		if read > 0 {
			s.Timeouts.Read = read
		}
		if write > 0 {
			s.Timeouts.Write = write
		}
	}
}

// WithTokenAuth sets whether sessions negotiate token authentication.
func WithTokenAuth(on bool) Option {
	return func(s *Settings) { s.TokenAuth = on }
}

// WithMinimumProtocol sets the lowest handshake version the client
// accepts.
func WithMinimumProtocol(version int) Option {
	return func(s *Settings) {
		if version >= 0 {
			s.MinimumProtocol = version
		}
	}
}

// WithTelemetry configures the OTLP metric exporter endpoint.
func WithTelemetry(endpoint, service string) Option {
	return func(s *Settings) {
		if endpoint != "" {
			s.Telemetry.OTLPEndpoint = endpoint
		}
		if service != "" {
			s.Telemetry.ServiceName = service
		}
	}
}
