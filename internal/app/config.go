package app

import (
	"errors"
	"fmt"
)

const (
	FormatTable = "table"
	FormatYAML  = "yaml"

	// MaxDecimalPlaces bounds the precision numbers are rendered with
	MaxDecimalPlaces = 64
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SheetPath     string
	DecimalPlaces int
	Format        string // table or yaml
	Encoding      string // encoding of the sheet file

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.SheetPath == "" {
		return nil, errors.New("SheetPath is a required configuration field and cannot be empty")
	}
	if cfg.DecimalPlaces < 0 || cfg.DecimalPlaces > MaxDecimalPlaces {
		return nil, fmt.Errorf("decimal places must be between 0 and %d, got %d", MaxDecimalPlaces, cfg.DecimalPlaces)
	}
	switch cfg.Format {
	case "":
		cfg.Format = FormatTable
	case FormatTable, FormatYAML:
	default:
		return nil, fmt.Errorf("invalid format %q: must be '%s' or '%s'", cfg.Format, FormatTable, FormatYAML)
	}
	if cfg.Encoding == "" {
		cfg.Encoding = EncodingUTF8
	}
	if _, err := lookupEncoding(cfg.Encoding); err != nil {
		return nil, err
	}
	return &cfg, nil
}
