package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coachpo/orientwire/internal/protocol"
)

// Load reads the client configuration. An explicit path wins, then the
// ORIENTWIRE_CONFIG environment variable; with neither set the
// environment-derived settings are returned. File values override the
// defaults field by field.
func Load(ctx context.Context, path string) (Settings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("ORIENTWIRE_CONFIG"))
	}
	if path == "" {
		cfg := FromEnv()
		return cfg, cfg.Validate(ctx)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read client config: %w", err)
	}
	cfg := FromEnv()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Settings{}, fmt.Errorf("unmarshal client config: %w", err)
	}
	if err := cfg.Validate(ctx); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

// Validate performs semantic validation on the settings.
func (s Settings) Validate(ctx context.Context) error {
	_ = ctx
	if strings.TrimSpace(s.Server.Host) == "" {
		return fmt.Errorf("server host required")
	}
	if s.Server.Port <= 0 || s.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", s.Server.Port)
	}
	if s.Timeouts.Connect <= 0 || s.Timeouts.Read <= 0 || s.Timeouts.Write <= 0 {
		return fmt.Errorf("timeouts must be >0")
	}
	if s.Serialization != protocol.SerializationCSV {
		return fmt.Errorf("serialization %q not supported, use %s", s.Serialization, protocol.SerializationCSV)
	}
	if s.MinimumProtocol < 0 || s.MinimumProtocol > int(protocol.SupportedVersion) {
		return fmt.Errorf("minimum protocol %d outside 0..%d", s.MinimumProtocol, protocol.SupportedVersion)
	}
	switch s.Database.Type {
	case "", protocol.DBTypeDocument, protocol.DBTypeGraph:
	default:
		return fmt.Errorf("database type %q not supported", s.Database.Type)
	}
	switch s.Database.Storage {
	case "", protocol.StoragePLocal, protocol.StorageMemory:
	default:
		return fmt.Errorf("database storage %q not supported", s.Database.Storage)
	}
	return nil
}

// UnmarshalYAML accepts either a mapping with host and port keys or a
// scalar host:port pair.
func (s *ServerSettings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		address := strings.TrimSpace(node.Value)
		host, port, err := splitAddress(address)
		if err != nil {
			return fmt.Errorf("server address %q: %w", address, err)
		}
		s.Host = host
		s.Port = port
		return nil
	}
	type plain ServerSettings
	decoded := plain(*s)
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*s = ServerSettings(decoded)
	return nil
}

// UnmarshalYAML reads each timeout as a Go duration string such as "3s"
// or "500ms". Absent keys keep their current values.
func (t *TimeoutSettings) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Connect string `yaml:"connect"`
		Read    string `yaml:"read"`
		Write   string `yaml:"write"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	entries := []struct {
		key  string
		text string
		dst  *time.Duration
	}{
		{"connect", raw.Connect, &t.Connect},
		{"read", raw.Read, &t.Read},
		{"write", raw.Write, &t.Write},
	}
	for _, entry := range entries {
		text := strings.TrimSpace(entry.text)
		if text == "" {
			continue
		}
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("timeouts.%s: %w", entry.key, err)
		}
		*entry.dst = parsed
	}
	return nil
}

func splitAddress(address string) (string, int, error) {
	idx := strings.LastIndex(address, ":")
	if idx <= 0 || idx == len(address)-1 {
		return "", 0, fmt.Errorf("want host:port")
	}
	port, err := strconv.Atoi(address[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("parse port: %w", err)
	}
	return address[:idx], port, nil
}
