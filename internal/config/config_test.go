package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRead(t *testing.T) {
	t.Setenv("WEXT_SERVER_URL", "http://panel.local:9000")
	t.Setenv("WEXT_POLL_INTERVAL", "500ms")
	t.Setenv("WEXT_POLL_TIMEOUT", "2s")
	t.Setenv("WEXT_HISTORY_RETENTION", "24h")

	cfg, err := Read()
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := Config{
		ServerURL:        "http://panel.local:9000",
		PollInterval:     500 * time.Millisecond,
		PollTimeout:      2 * time.Second,
		HistoryRetention: 24 * time.Hour,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := Config{ServerURL: DefaultServerURL, PollInterval: time.Second, PollTimeout: time.Second, HistoryRetention: time.Hour}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "relative url", mutate: func(c *Config) { c.ServerURL = "/panel" }, wantErr: true},
		{name: "zero interval", mutate: func(c *Config) { c.PollInterval = 0 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.PollTimeout = -time.Second }, wantErr: true},
		{name: "history kept forever", mutate: func(c *Config) { c.HistoryRetention = 0 }},
		{name: "negative retention", mutate: func(c *Config) { c.HistoryRetention = -time.Hour }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
