// Package config reads .telegen.yaml. Every key is optional; command-line
// flags override file values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/telegen/internal/analysis"
	"github.com/roach88/telegen/internal/codegen"
)

// FileName is looked up in the input directory when no --config is given.
const FileName = ".telegen.yaml"

// Config holds generator settings.
type Config struct {
	// OptionalNames are the wrapper type names treated as optional.
	OptionalNames []string `yaml:"optional_names"`
	// RuntimeImport is the import path of the point package.
	RuntimeImport string `yaml:"runtime_import"`
	// OutputSuffix names the generated file: <package><suffix>.
	OutputSuffix string `yaml:"output_suffix"`
	// Receiver is the receiver name of generated methods.
	Receiver string `yaml:"receiver"`
	// Capability is the interface added to every type parameter bound.
	// Empty means Metric in the runtime package.
	Capability string `yaml:"capability"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OptionalNames: append([]string(nil), analysis.DefaultOptionalNames...),
		RuntimeImport: codegen.DefaultRuntimeImport,
		OutputSuffix:  "_telegen.go",
		Receiver:      "r",
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.merge(file)
	return cfg, cfg.Validate()
}

// Resolve loads explicit when set, otherwise FileName in dir if present.
func Resolve(explicit, dir string) (Config, error) {
	if explicit != "" {
		return Load(explicit, false)
	}
	return Load(filepath.Join(dir, FileName), true)
}

func (c *Config) merge(o Config) {
	if len(o.OptionalNames) > 0 {
		c.OptionalNames = o.OptionalNames
	}
	if o.RuntimeImport != "" {
		c.RuntimeImport = o.RuntimeImport
	}
	if o.OutputSuffix != "" {
		c.OutputSuffix = o.OutputSuffix
	}
	if o.Receiver != "" {
		c.Receiver = o.Receiver
	}
	if o.Capability != "" {
		c.Capability = o.Capability
	}
}

// reservedNames are the locals of generated bodies.
var reservedNames = []string{"tags", "fields", "ts", "v", "ok"}

// Validate rejects settings that would produce uncompilable output.
func (c Config) Validate() error {
	if filepath.Ext(c.OutputSuffix) != ".go" {
		return fmt.Errorf("output_suffix %q must end in .go", c.OutputSuffix)
	}
	if slices.Contains(reservedNames, c.Receiver) {
		return fmt.Errorf("receiver %q collides with a generated local", c.Receiver)
	}
	return nil
}

// Analyzer returns the analyzer for these settings.
func (c Config) Analyzer() *analysis.Analyzer {
	capability := c.Capability
	if capability == "" {
		runtime := c.RuntimeImport
		if runtime == "" {
			runtime = codegen.DefaultRuntimeImport
		}
		capability = codegen.RuntimeQualifier(runtime) + ".Metric"
	}
	return &analysis.Analyzer{OptionalNames: c.OptionalNames, Capability: capability}
}

// Generator returns a generator for these settings.
func (c Config) Generator(opts codegen.Options) *codegen.Generator {
	opts.RuntimeImport = c.RuntimeImport
	opts.Receiver = c.Receiver
	opts.Analyzer = c.Analyzer()
	return codegen.New(opts)
}
