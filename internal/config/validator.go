package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the config for:
//   - Required fields and well-formed URLs
//   - At least one enabled source
//   - Sensible numeric ranges
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	var errs []string

	if cfg.Server.QueryCooldownSeconds < 0 {
		errs = append(errs, "server.query_cooldown_seconds must not be negative")
	}
	if cfg.Search.LimitPerSource < 0 {
		errs = append(errs, "search.limit_per_source must not be negative")
	}

	enabled := 0
	if cfg.Sources.NYCOpenData.Enabled {
		enabled++
		if cfg.Sources.NYCOpenData.BaseURL != "" {
			checkURL("sources.nyc_open_data.base_url", cfg.Sources.NYCOpenData.BaseURL, &errs)
		}
	}
	if cfg.Sources.Eventbrite.Enabled {
		enabled++
		if cfg.Sources.Eventbrite.BaseURL != "" {
			checkURL("sources.eventbrite.base_url", cfg.Sources.Eventbrite.BaseURL, &errs)
		}
	}
	if cfg.Sources.CityFeeds.Enabled {
		enabled++
		if len(cfg.Sources.CityFeeds.URLs) == 0 {
			errs = append(errs, "sources.city_feeds.urls must not be empty when enabled")
		}
		for i, u := range cfg.Sources.CityFeeds.URLs {
			checkURL(fmt.Sprintf("sources.city_feeds.urls[%d]", i), u, &errs)
		}
	}
	if enabled == 0 {
		errs = append(errs, "at least one source must be enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func checkURL(field, raw string, errs *[]string) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		*errs = append(*errs, fmt.Sprintf("%s: %q is not an absolute URL", field, raw))
	}
}
