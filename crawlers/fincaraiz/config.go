package fincaraiz

import (
	"fmt"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common"
	"github.com/LexiconIndonesia/property-scraper-service/common/config"
)

// FincaraizConfig holds the settings of a single scrape job.
type FincaraizConfig struct {
	BaseURL        string
	UserAgent      string
	RequestTimeout time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
}

// Validate validates the FincaraizConfig
func (c FincaraizConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", common.ErrInvalidConfig)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("%w: user agent is required", common.ErrInvalidConfig)
	}
	if c.MinDelay < 0 || c.MaxDelay < c.MinDelay {
		return fmt.Errorf("%w: page delay range is invalid", common.ErrInvalidConfig)
	}
	return nil
}

func ConfigFrom(cfg config.ScraperConfig) FincaraizConfig {
	return FincaraizConfig{
		BaseURL:        cfg.BaseURL,
		UserAgent:      cfg.UserAgent,
		RequestTimeout: cfg.RequestTimeout,
		MinDelay:       cfg.MinPageDelay,
		MaxDelay:       cfg.MaxPageDelay,
	}
}
