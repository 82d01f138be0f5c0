package fsplit

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = ".fsplit.yaml"

type Layout string

const (
	LayoutFlat      Layout = "flat"
	LayoutDirectory Layout = "directory"
)

type Config struct {
	MaxLines   int      `yaml:"max_lines"`
	Layout     Layout   `yaml:"layout"`
	Counting   string   `yaml:"counting"`
	BackupDir  string   `yaml:"backup_dir"`
	Extensions []string `yaml:"extensions"`
	Patterns   Patterns `yaml:"patterns"`
}

type Patterns struct {
	RoleSuffixes   []string `yaml:"role_suffixes"`
	ComponentTypes []string `yaml:"component_types"`
	Markup         string   `yaml:"markup"`
}

const defaultMarkup = `(?:^|[\s(>?:=&|,])<(?:/?[A-Za-z][\w.-]*(?:\s[^<>]*)?/?|/?)>`

func DefaultConfig() *Config {
	return &Config{
		MaxLines:   300,
		Layout:     LayoutFlat,
		Counting:   "literal",
		Extensions: []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
		Patterns: Patterns{
			RoleSuffixes:   []string{"Page", "Screen", "View", "Layout", "App", "Main", "Root", "Container"},
			ComponentTypes: []string{"FC", "FunctionComponent", "VFC", "VoidFunctionComponent", "ComponentType", "NextPage"},
			Markup:         defaultMarkup,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("FSPLIT_MAX_LINES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "FSPLIT_MAX_LINES", Message: fmt.Sprintf("not a number: %q", v)}
		}
		c.MaxLines = n
	}
	if v := os.Getenv("FSPLIT_BACKUP_DIR"); v != "" {
		c.BackupDir = v
	}
	if v := os.Getenv("FSPLIT_LAYOUT"); v != "" {
		c.Layout = Layout(v)
	}
	return nil
}

// Rules is the compiled, validated form of Config.
type Rules struct {
	MaxLines      int
	Layout        Layout
	Counting      Counting
	BackupDir     string
	Extensions    []string
	RoleSuffixes  []string
	componentType *regexp.Regexp
	markup        *regexp.Regexp
}

var genericComponentRe = regexp.MustCompile(`<[A-Z][\w$]*(?:\s+extends\s+[^>]+)?\s*,?\s*>\s*\(\s*(?:\{|props\b)`)

func (c *Config) Compile() (*Rules, error) {
	if c.MaxLines < 0 {
		return nil, &ConfigError{Field: "max_lines", Message: "must not be negative"}
	}

	layout := c.Layout
	if layout == "" {
		layout = LayoutFlat
	}
	if layout != LayoutFlat && layout != LayoutDirectory {
		return nil, &ConfigError{Field: "layout", Message: fmt.Sprintf("unknown layout %q", c.Layout)}
	}

	counting, err := ParseCounting(c.Counting)
	if err != nil {
		return nil, &ConfigError{Field: "counting", Message: err.Error()}
	}

	markupSrc := c.Patterns.Markup
	if markupSrc == "" {
		markupSrc = defaultMarkup
	}
	markup, err := regexp.Compile(markupSrc)
	if err != nil {
		return nil, &ConfigError{Field: "patterns.markup", Message: err.Error()}
	}

	var componentType *regexp.Regexp
	if len(c.Patterns.ComponentTypes) > 0 {
		names := make([]string, 0, len(c.Patterns.ComponentTypes))
		for _, n := range c.Patterns.ComponentTypes {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, regexp.QuoteMeta(n))
			}
		}
		src := `:\s*(?:React\.)?(?:` + strings.Join(names, "|") + `)\b`
		if componentType, err = regexp.Compile(src); err != nil {
			return nil, &ConfigError{Field: "patterns.component_types", Message: err.Error()}
		}
	}

	exts := make([]string, 0, len(c.Extensions))
	for _, e := range c.Extensions {
		if e == "" {
			continue
		}
		if e[0] != '.' {
			e = "." + e
		}
		exts = append(exts, strings.ToLower(e))
	}

	return &Rules{
		MaxLines:      c.MaxLines,
		Layout:        layout,
		Counting:      counting,
		BackupDir:     c.BackupDir,
		Extensions:    exts,
		RoleSuffixes:  append([]string(nil), c.Patterns.RoleSuffixes...),
		componentType: componentType,
		markup:        markup,
	}, nil
}

func (r *Rules) Supports(path string) bool {
	return HasAllowedExtension(strings.ToLower(path), r.Extensions)
}

func HasAllowedExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
