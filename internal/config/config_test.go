package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
auth:
  enabled: true
  api_key: secret
transport:
  user_agent: harvest-agent
  delay_seconds: 3
  timeout_seconds: 45
  nav_timeout_seconds: 60
  selector_wait_seconds: 10
db:
  dsn: postgres://localhost:5432/listings
  max_conns: 16
snapshot:
  dir: /tmp/snapshots
  gcs_bucket: bucket
  prefix: raw
pubsub:
  project_id: my-project
  topic_name: search-events
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.Transport.UserAgent != "harvest-agent" || cfg.Transport.DelaySeconds != 3 {
		t.Fatalf("expected transport overrides to apply: %+v", cfg.Transport)
	}
	if cfg.DB.DSN != "postgres://localhost:5432/listings" || cfg.DB.MaxConns != 16 {
		t.Fatalf("expected db overrides to apply: %+v", cfg.DB)
	}
	if cfg.Snapshot.Dir != "/tmp/snapshots" || cfg.Snapshot.Prefix != "raw" {
		t.Fatalf("expected snapshot overrides to apply: %+v", cfg.Snapshot)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected logging.development to be false")
	}

	tc := cfg.TransportSettings()
	if tc.Delay != 3*time.Second || tc.RequestTimeout != 45*time.Second {
		t.Fatalf("unexpected transport settings: %+v", tc)
	}
	sc := cfg.StoreSettings()
	if sc.MaxConns != 16 || sc.MaxConnLifetime != 30*time.Minute {
		t.Fatalf("unexpected store settings: %+v", sc)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Transport.DelaySeconds != 2 || cfg.Transport.TimeoutSeconds != 30 {
		t.Fatalf("unexpected transport defaults: %+v", cfg.Transport)
	}
	if cfg.DB.DSN != "" {
		t.Fatalf("expected empty default dsn")
	}
	if cfg.Snapshot.Prefix != "pages" {
		t.Fatalf("expected default snapshot prefix, got %q", cfg.Snapshot.Prefix)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:    ServerConfig{Port: 8080},
		Transport: TransportConfig{DelaySeconds: 2, TimeoutSeconds: 30},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "negative delay",
			cfg: func() Config {
				c := base
				c.Transport.DelaySeconds = -1
				return c
			}(),
			want: "transport.delay_seconds",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.Transport.TimeoutSeconds = 0
				return c
			}(),
			want: "transport.timeout_seconds",
		},
		{
			name: "auth missing api key",
			cfg: func() Config {
				c := base
				c.Auth.Enabled = true
				return c
			}(),
			want: "auth.api_key",
		},
		{
			name: "pubsub missing project",
			cfg: func() Config {
				c := base
				c.PubSub.TopicName = "events"
				return c
			}(),
			want: "pubsub.project_id",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
