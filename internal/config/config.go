package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/assetboard-cli/internal/analysis"
	"github.com/KaramelBytes/assetboard-cli/internal/asset"
	"github.com/KaramelBytes/assetboard-cli/internal/export"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
)

// Global configuration structure.
type Global struct {
	// Ingestion
	HeaderMarker       string              `mapstructure:"header_marker" yaml:"header_marker" validate:"required"`
	YearColumn         string              `mapstructure:"year_column" yaml:"year_column" validate:"required"`
	ExtraAliases       map[string][]string `mapstructure:"extra_aliases" yaml:"extra_aliases,omitempty"`
	DecimalSeparator   string              `mapstructure:"decimal_separator" yaml:"decimal_separator,omitempty" validate:"omitempty,len=1"`
	ThousandsSeparator string              `mapstructure:"thousands_separator" yaml:"thousands_separator,omitempty" validate:"omitempty,len=1"`

	// Statistics
	IncompleteThreshold   int      `mapstructure:"incomplete_threshold" yaml:"incomplete_threshold" validate:"min=1,max=4"`
	GoodConditionKeywords []string `mapstructure:"good_condition_keywords" yaml:"good_condition_keywords" validate:"min=1,dive,required"`
	HistogramBins         int      `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"min=0,max=200"`

	// Export
	ExportSheet    string `mapstructure:"export_sheet" yaml:"export_sheet" validate:"required,max=31"`
	ExportFilename string `mapstructure:"export_filename" yaml:"export_filename" validate:"required"`

	// Runtime
	Workers       int     `mapstructure:"workers" yaml:"workers" validate:"min=1,max=64"`
	ServeAddr     string  `mapstructure:"serve_addr" yaml:"serve_addr" validate:"required"`
	MaxUploadMB   int     `mapstructure:"max_upload_mb" yaml:"max_upload_mb" validate:"min=1"`
	SessionTTLMin int     `mapstructure:"session_ttl_min" yaml:"session_ttl_min" validate:"min=0"`
	UploadRPS     float64 `mapstructure:"upload_rps" yaml:"upload_rps" validate:"min=0"`
	UploadBurst   int     `mapstructure:"upload_burst" yaml:"upload_burst" validate:"min=1"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"header_marker", "year_column", "extra_aliases", "decimal_separator", "thousands_separator",
	"incomplete_threshold", "good_condition_keywords", "histogram_bins",
	"export_sheet", "export_filename",
	"workers", "serve_addr", "max_upload_mb", "session_ttl_min", "upload_rps", "upload_burst",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("header_marker", "No. Urut")
	v.SetDefault("year_column", "Tahun")
	v.SetDefault("extra_aliases", map[string][]string{})
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("incomplete_threshold", 2)
	v.SetDefault("good_condition_keywords", []string{"baik", "bagus", "good", "excellent", "perfect"})
	v.SetDefault("histogram_bins", 10)
	v.SetDefault("export_sheet", export.DefaultSheet)
	v.SetDefault("export_filename", export.DefaultFilename)
	v.SetDefault("workers", 4)
	v.SetDefault("serve_addr", "127.0.0.1:8080")
	v.SetDefault("max_upload_mb", 20)
	v.SetDefault("session_ttl_min", 60)
	v.SetDefault("upload_rps", 2.0)
	v.SetDefault("upload_burst", 5)
}

// Dir returns ~/.assetboard.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".assetboard"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.assetboard/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A .env file in the working directory is applied to the environment first.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ASSETBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// the file is optional; a present but malformed one is an error
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Defaults returns the built-in configuration, ignoring files and env.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

var validate = validator.New()

// Validate checks field constraints and alias role names.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if thou := firstRune(c.ThousandsSeparator); thou != 0 &&
		ingest.EffectiveDecimal(firstRune(c.DecimalSeparator), thou) == thou {
		return fmt.Errorf("invalid config: thousands_separator %q equals the decimal separator", c.ThousandsSeparator)
	}
	for role := range c.ExtraAliases {
		if _, err := asset.ParseRole(role); err != nil {
			return fmt.Errorf("invalid config: extra_aliases: %w", err)
		}
	}
	return nil
}

// IngestOptions maps the configuration onto normalizer options.
func (c *Global) IngestOptions() ingest.Options {
	opt := ingest.DefaultOptions()
	opt.HeaderMarker = c.HeaderMarker
	opt.YearColumn = c.YearColumn
	opt.DecimalSeparator = firstRune(c.DecimalSeparator)
	opt.ThousandsSeparator = firstRune(c.ThousandsSeparator)
	if len(c.ExtraAliases) > 0 {
		opt.ExtraAliases = make(map[asset.Role][]string, len(c.ExtraAliases))
		for name, aliases := range c.ExtraAliases {
			if role, err := asset.ParseRole(name); err == nil {
				opt.ExtraAliases[role] = append(opt.ExtraAliases[role], aliases...)
			}
		}
	}
	return opt
}

// AnalysisOptions maps the configuration onto statistics options.
func (c *Global) AnalysisOptions() analysis.Options {
	return analysis.Options{
		IncompleteThreshold: c.IncompleteThreshold,
		GoodKeywords:        append([]string(nil), c.GoodConditionKeywords...),
		HistogramBins:       c.HistogramBins,
	}
}

// ExportOptions maps the configuration onto workbook options.
func (c *Global) ExportOptions() export.Options {
	return export.Options{Sheet: c.ExportSheet, Filename: c.ExportFilename}
}

// SessionTTL is the dataset lifetime for the HTTP server.
func (c *Global) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

// MaxUploadBytes is the upload size limit for the HTTP server.
func (c *Global) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}
