package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"

	"folio/common"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// MarginsConfig holds CSS lengths used when margin mode is custom.
	MarginsConfig struct {
		Top    string `yaml:"top" validate:"required"`
		Right  string `yaml:"right" validate:"required"`
		Bottom string `yaml:"bottom" validate:"required"`
		Left   string `yaml:"left" validate:"required"`
	}

	PageConfig struct {
		Paper Paper `yaml:"paper" validate:"oneof=a3 a4 a5 b4 b5 letter legal ledger custom"`
		// Width and Height are in px and only used for custom paper.
		Width        float64            `yaml:"width" validate:"gte=0,required_if=Paper custom"`
		Height       float64            `yaml:"height" validate:"gte=0,required_if=Paper custom"`
		Orientation  common.Orientation `yaml:"orientation" validate:"gte=0"`
		MarginMode   common.MarginMode  `yaml:"margin_mode" validate:"gte=0"`
		Margins      MarginsConfig      `yaml:"margins"`
		HeaderFooter bool               `yaml:"header_footer"`
		MaxPages     int                `yaml:"max_pages" validate:"gte=0"`
	}

	StyleConfig struct {
		StylesheetPath string `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		UserAgent      bool   `yaml:"user_agent"`
		Hints          bool   `yaml:"hints"`
		HyphenationDir string `yaml:"hyphenation_dir" sanitize:"path_clean"`
	}

	PreviewConfig struct {
		Enable bool    `yaml:"enable"`
		Scale  float64 `yaml:"scale" validate:"gt=0,lte=8"`
	}

	OutputConfig struct {
		Format                common.OutputFmt `yaml:"format" validate:"gte=0"`
		NameTemplate          string           `yaml:"name_template"`
		FileNameTransliterate bool             `yaml:"file_name_transliterate"`
		Preview               PreviewConfig    `yaml:"preview"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Page      PageConfig     `yaml:"page"`
		Style     StyleConfig    `yaml:"style"`
		Output    OutputConfig   `yaml:"output"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

// NOTE: must match yaml field name above
const NameTemplateFieldName TemplateFieldName = "name_template"

var requiredOptions = []func(*gencfg.ProcessingOptions){
	gencfg.WithDoNotExpandField(string(NameTemplateFieldName)),
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// only fields we defined are allowed
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to
// provide sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

// Dump returns the configuration in YAML form.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

// PaperSize returns the page size in px before orientation is applied.
func (p *PageConfig) PaperSize() (w, h float64, err error) {
	if p.Paper == PaperCustom {
		if p.Width <= 0 || p.Height <= 0 {
			return 0, 0, fmt.Errorf("custom paper needs positive width and height, got %vx%v", p.Width, p.Height)
		}
		return p.Width, p.Height, nil
	}
	return p.Paper.Size()
}

// PageSize returns the configured page size with orientation applied.
func (p *PageConfig) PageSize() (w, h float64, err error) {
	if w, h, err = p.PaperSize(); err != nil {
		return 0, 0, err
	}
	switch {
	case p.Orientation == common.OrientationLandscape && w < h,
		p.Orientation == common.OrientationPortrait && w > h:
		w, h = h, w
	}
	return w, h, nil
}
