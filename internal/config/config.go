package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. It is built once by the CLI
// and passed explicitly into each component; no package carries implicit
// process-wide state.
type Config struct {
	DBPath    string `yaml:"db_path"`
	ScansDir  string `yaml:"scans_dir"`
	BackupDir string `yaml:"backup_dir"`
	Addr      string `yaml:"addr"` // HTTP API listen address
	Debug     bool   `yaml:"debug"`

	Nmap NmapConfig `yaml:"nmap"`
	SMTP SMTPConfig `yaml:"smtp"`
}

// Duration wraps time.Duration so YAML can carry "10m" style values.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NmapConfig controls how scans are executed.
type NmapConfig struct {
	Cmd        string   `yaml:"cmd"`
	TCPOpts    []string `yaml:"tcp_opts"`
	UDPOpts    []string `yaml:"udp_opts"`
	UDPPorts   string   `yaml:"udp_ports"` // e.g. "53,67-69,123"
	TCPTimeout Duration `yaml:"tcp_timeout"`
	UDPTimeout Duration `yaml:"udp_timeout"`
}

// SMTPConfig controls alert delivery.
type SMTPConfig struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	User          string   `yaml:"user"`
	Pass          string   `yaml:"pass"`
	From          string   `yaml:"from"`
	To            []string `yaml:"to"`
	StartTLS      bool     `yaml:"starttls"`       // try STARTTLS when the server announces it
	StartTLSForce bool     `yaml:"starttls_force"` // try STARTTLS even when not announced
	UseSSL        bool     `yaml:"use_ssl"`        // implicit TLS, typically port 465
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:    "db/surfaceminder.sqlite",
		ScansDir:  "scans",
		BackupDir: "backup",
		Addr:      ":8080",
		Nmap: NmapConfig{
			Cmd:        "nmap",
			TCPOpts:    []string{"-sT", "-p-", "-Pn", "-sV", "-oX", "-"},
			UDPOpts:    []string{"-sU", "-Pn", "-sV", "-oX", "-"},
			UDPPorts:   "53,67-69,123",
			TCPTimeout: Duration(10 * time.Minute),
			UDPTimeout: Duration(30 * time.Minute),
		},
		SMTP: SMTPConfig{
			Host:     "localhost",
			Port:     25,
			From:     "surfaceminder-alerts@example.com",
			StartTLS: true,
		},
	}
}

// Load reads the YAML config at path (missing file is fine, defaults apply)
// and then applies SURFACEMINDER_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.DBPath = getEnv("SURFACEMINDER_DB", cfg.DBPath)
	cfg.ScansDir = getEnv("SURFACEMINDER_SCANS", cfg.ScansDir)
	cfg.BackupDir = getEnv("SURFACEMINDER_BACKUP", cfg.BackupDir)
	cfg.Addr = getEnv("SURFACEMINDER_ADDR", cfg.Addr)
	cfg.Debug = getEnvBool("SURFACEMINDER_DEBUG", cfg.Debug)
	cfg.SMTP.Host = getEnv("SURFACEMINDER_SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = getEnvInt("SURFACEMINDER_SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.User = getEnv("SURFACEMINDER_SMTP_USER", cfg.SMTP.User)
	cfg.SMTP.Pass = getEnv("SURFACEMINDER_SMTP_PASS", cfg.SMTP.Pass)
	if v, ok := os.LookupEnv("SURFACEMINDER_SMTP_TO"); ok {
		cfg.SMTP.To = splitList(v)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
