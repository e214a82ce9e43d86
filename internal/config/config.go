package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"dataprofile/internal/errors"
)

// HeaderMode is the tri-state has_header configuration option (spec.md §4.9).
type HeaderMode string

const (
	HeaderAuto HeaderMode = "auto"
	HeaderYes  HeaderMode = "yes"
	HeaderNo   HeaderMode = "no"
)

// Format is one of the record-extractor variants spec.md §4.2 names.
type Format string

const (
	FormatCSV       Format = "csv"
	FormatTSV       Format = "tsv"
	FormatJSONArray Format = "json_array"
	FormatJSONLines Format = "json_lines"
	FormatParquet   Format = "parquet"
	FormatXLSX      Format = "xlsx"
	FormatXLSLegacy Format = "xls"
	FormatAvro      Format = "avro"
)

// SessionConfig carries every option init(config) recognizes (spec.md §4.9).
type SessionConfig struct {
	// Format overrides auto-detection when non-empty.
	Format Format

	// Delimiter overrides delimiter sniffing when non-zero.
	Delimiter byte

	HasHeader HeaderMode

	// SizeLimitBytes guardrails total stream size; exceeding it fails the
	// session with FileTooLarge. Zero means unlimited.
	SizeLimitBytes uint64

	// CardinalityBudget is the max distinct count at which
	// categorical_stats is still emitted.
	CardinalityBudget uint64

	// AnomalyCap is the max row indices retained per anomaly class.
	AnomalyCap uint64

	// TDigestCompression is the t-digest delta/compression parameter.
	TDigestCompression float64

	// HLLPrecision is log2(number of HyperLogLog registers).
	HLLPrecision uint8
}

// DefaultSessionConfig returns the spec's documented defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HasHeader:          HeaderAuto,
		SizeLimitBytes:     0,
		CardinalityBudget:  10_000,
		AnomalyCap:         100_000,
		TDigestCompression: 500,
		HLLPrecision:       14,
	}
}

// Validate rejects configurations that cannot be acted on.
func (c SessionConfig) Validate() error {
	switch c.HasHeader {
	case HeaderAuto, HeaderYes, HeaderNo, "":
	default:
		return errors.ConfigInvalid("has_header must be one of auto/yes/no")
	}
	if c.CardinalityBudget == 0 {
		return errors.ConfigInvalid("cardinality_budget must be positive")
	}
	if c.AnomalyCap == 0 {
		return errors.ConfigInvalid("anomaly_cap must be positive")
	}
	if c.TDigestCompression <= 0 {
		return errors.ConfigInvalid("tdigest_compression must be positive")
	}
	if c.HLLPrecision < 4 || c.HLLPrecision > 18 {
		return errors.ConfigInvalid("hll_precision must be in [4, 18]")
	}
	return nil
}

// CLIConfig holds the defaults the `profile` CLI reads from the
// environment/.env before applying flag overrides.
type CLIConfig struct {
	OutputPath    string
	OutputFormat  string
	FailOnMissing float64
	Tolerance     float64
}

// LoadCLIDefaults loads a .env file (if present) via godotenv, then reads
// environment variables into a CLIConfig. Missing .env files are not an
// error — the CLI may be invoked with flags alone.
func LoadCLIDefaults() CLIConfig {
	_ = godotenv.Load()

	return CLIConfig{
		OutputPath:    getEnvOrDefault("PROFILE_OUTPUT", ""),
		OutputFormat:  getEnvOrDefault("PROFILE_FORMAT", "json"),
		FailOnMissing: getEnvFloatOrDefault("PROFILE_FAIL_ON_MISSING", 100.0),
		Tolerance:     getEnvFloatOrDefault("PROFILE_TOLERANCE", 0.0),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
