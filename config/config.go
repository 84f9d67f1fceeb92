// Package config loads viewer configuration from a YAML file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/vadiminshakov/tally/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	defaultListen         = "127.0.0.1:8717"
	defaultQuoteAsset     = "USDT"
	defaultReferenceAsset = "BTC"
	defaultMode           = domain.ModeMarginAssets
	defaultHTTPTimeout    = 10 * time.Second
	defaultDataDir        = "./data"
)

// Config viewer configuration.
type Config struct {
	// Listen address of the local web UI.
	Listen string
	// Mode balance aggregation strategy.
	Mode domain.Mode
	// QuoteAsset currency the total is denominated in.
	QuoteAsset string
	// ReferenceAsset currency the exchange reports margin net asset in.
	ReferenceAsset string
	// BaseURL exchange REST endpoint, overridable for tests.
	BaseURL string
	// HTTPTimeout bound for every outbound call.
	HTTPTimeout time.Duration
	// DataDir directory for the credential store.
	DataDir string
	// Setup run the terminal settings wizard instead of serving.
	Setup bool
}

// ConfigTmp mirrors Config with YAML-friendly string fields.
type ConfigTmp struct {
	Listen         string `yaml:"listen,omitempty"`
	Mode           string `yaml:"mode,omitempty"`
	QuoteAsset     string `yaml:"quote_asset,omitempty"`
	ReferenceAsset string `yaml:"reference_asset,omitempty"`
	BaseURL        string `yaml:"base_url,omitempty"`
	HTTPTimeoutStr string `yaml:"http_timeout,omitempty"`
	DataDir        string `yaml:"data_dir,omitempty"`
}

// Get parses CLI flags and, if -config is provided, the YAML file it points to.
// Flag values are ignored when a config file is used.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	listen := flag.String("listen", defaultListen, "address of the local web UI")
	mode := flag.String("mode", defaultMode.String(), "aggregation mode: margin_net_asset, margin_assets or margin_and_spot")
	quote := flag.String("quote", defaultQuoteAsset, "quote asset the total is denominated in")
	reference := flag.String("reference", defaultReferenceAsset, "asset the margin net asset figure is denominated in")
	timeout := flag.Duration("timeout", defaultHTTPTimeout, "timeout for every outbound HTTP call")
	dataDir := flag.String("datadir", defaultDataDir, "directory for the credential store")
	setup := flag.Bool("setup", false, "run the settings wizard and exit")
	flag.Parse()

	if *configPath != "" {
		cfg, err := getYaml(*configPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Setup = *setup
		return cfg, nil
	}

	return fromTmp(ConfigTmp{
		Listen:         *listen,
		Mode:           *mode,
		QuoteAsset:     *quote,
		ReferenceAsset: *reference,
		HTTPTimeoutStr: timeout.String(),
		DataDir:        *dataDir,
	}, *setup)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	return fromTmp(tmp, false)
}

func fromTmp(tmp ConfigTmp, setup bool) (Config, error) {
	cfg := Config{
		Listen:         tmp.Listen,
		QuoteAsset:     tmp.QuoteAsset,
		ReferenceAsset: tmp.ReferenceAsset,
		BaseURL:        tmp.BaseURL,
		DataDir:        tmp.DataDir,
		Setup:          setup,
	}

	if tmp.HTTPTimeoutStr != "" {
		timeout, err := time.ParseDuration(tmp.HTTPTimeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'http_timeout' param: %w", err)
		}
		cfg.HTTPTimeout = timeout
	}

	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}
	if cfg.QuoteAsset == "" {
		cfg.QuoteAsset = defaultQuoteAsset
	}
	if cfg.ReferenceAsset == "" {
		cfg.ReferenceAsset = defaultReferenceAsset
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}

	if tmp.Mode == "" {
		cfg.Mode = defaultMode
	} else {
		mode, err := domain.ParseMode(tmp.Mode)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'mode' param: %w", err)
		}
		cfg.Mode = mode
	}

	return cfg, nil
}
