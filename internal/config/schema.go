package config

// Config is the top-level YAML structure.
type Config struct {
	Version string      `yaml:"version"`
	Server  ServerConf  `yaml:"server"`
	Search  SearchConf  `yaml:"search"`
	Sources SourcesConf `yaml:"sources"`
}

// ServerConf holds HTTP-facing settings.
type ServerConf struct {
	// QueryCooldownSeconds is the minimum interval between conversational
	// tool queries; violations get a "please wait" rejection.
	QueryCooldownSeconds int `yaml:"query_cooldown_seconds"`
}

// SearchConf holds defaults applied when a request omits them.
type SearchConf struct {
	DefaultLocation string `yaml:"default_location"`
	LimitPerSource  int    `yaml:"limit_per_source"`
	Concurrent      bool   `yaml:"concurrent"`
}

// SourcesConf enables and parameterizes the source adapters.
type SourcesConf struct {
	NYCOpenData NYCOpenDataConf `yaml:"nyc_open_data"`
	Eventbrite  EventbriteConf  `yaml:"eventbrite"`
	CityFeeds   CityFeedsConf   `yaml:"city_feeds"`
}

// NYCOpenDataConf configures the open civic-data adapter. It needs no
// credential.
type NYCOpenDataConf struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
}

// EventbriteConf configures the commercial adapter. A missing or
// placeholder API key skips the adapter rather than failing startup.
type EventbriteConf struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// CityFeedsConf configures the RSS feed adapter.
type CityFeedsConf struct {
	Enabled bool     `yaml:"enabled"`
	URLs    []string `yaml:"urls"`
}
