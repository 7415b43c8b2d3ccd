package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
version: "1"
server:
  query_cooldown_seconds: 10
search:
  default_location: "Brooklyn, NY"
  limit_per_source: 50
  concurrent: true
sources:
  nyc_open_data:
    enabled: true
  eventbrite:
    enabled: true
    api_key: "real-token"
  city_feeds:
    enabled: true
    urls:
      - https://www.nycgovparks.org/xml/events_rss.rss
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoaderReadsConfig(t *testing.T) {
	l, err := NewLoader(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := l.Config()
	if cfg.Server.QueryCooldownSeconds != 10 {
		t.Errorf("cooldown = %d", cfg.Server.QueryCooldownSeconds)
	}
	if cfg.Search.DefaultLocation != "Brooklyn, NY" || cfg.Search.LimitPerSource != 50 || !cfg.Search.Concurrent {
		t.Errorf("search conf = %+v", cfg.Search)
	}
	if !cfg.Sources.Eventbrite.Enabled || cfg.Sources.Eventbrite.APIKey != "real-token" {
		t.Errorf("eventbrite conf = %+v", cfg.Sources.Eventbrite)
	}
	if len(cfg.Sources.CityFeeds.URLs) != 1 {
		t.Errorf("city feeds conf = %+v", cfg.Sources.CityFeeds)
	}
}

func TestLoaderDefaults(t *testing.T) {
	l, err := NewLoader(writeConfig(t, "version: \"1\"\n"))
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	cfg := l.Config()
	if cfg.Server.QueryCooldownSeconds != 6 {
		t.Errorf("default cooldown = %d", cfg.Server.QueryCooldownSeconds)
	}
	if cfg.Search.DefaultLocation != "New York, NY" || cfg.Search.LimitPerSource != 25 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
}

func TestLoaderReloadNotifies(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	l, err := NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}

	var got *Config
	l.OnChange(func(c *Config) { got = c })

	if err := os.WriteFile(path, []byte("version: \"2\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got == nil || got.Version != "2" {
		t.Fatalf("callback config = %+v", got)
	}
	if l.Config().Version != "2" {
		t.Errorf("current version = %q", l.Config().Version)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Version: "1",
		Sources: SourcesConf{
			NYCOpenData: NYCOpenDataConf{Enabled: true, BaseURL: "https://data.cityofnewyork.us/resource"},
		},
	}
	if err := Validate(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name string
		cfg  *Config
	}{
		{"missing version", &Config{}},
		{"no sources enabled", &Config{Version: "1"}},
		{"bad base url", &Config{Version: "1", Sources: SourcesConf{
			NYCOpenData: NYCOpenDataConf{Enabled: true, BaseURL: "not a url"},
		}}},
		{"city feeds without urls", &Config{Version: "1", Sources: SourcesConf{
			CityFeeds: CityFeedsConf{Enabled: true},
		}}},
		{"negative cooldown", &Config{
			Version: "1",
			Server:  ServerConf{QueryCooldownSeconds: -1},
			Sources: SourcesConf{NYCOpenData: NYCOpenDataConf{Enabled: true}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
