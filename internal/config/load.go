package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Error is a configuration file problem. Pos is set for CUE errors.
type Error struct {
	File    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads a .cue, .yaml or .yml file and overlays it on Default.
// The merged configuration is validated before it is returned.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".cue":
		cfg, err = ParseCUE(path, data)
	case ".yaml", ".yml":
		cfg, err = ParseYAML(path, data)
	default:
		return nil, &Error{File: path, Field: "file", Message: fmt.Sprintf("unsupported config format %q (want .cue, .yaml or .yml)", ext)}
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseCUE compiles src, unifies it with the embedded schema and overlays
// the result on Default. filename is used for error positions only.
func ParseCUE(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(filename, err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(filename, err)
	}

	merged := schema.LookupPath(cue.ParsePath("#Config")).Unify(v)
	if err := merged.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(filename, err)
	}

	data, err := merged.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(filename, err)
	}

	cfg := Default()
	// Lists in the file replace the defaults wholesale.
	for path, reset := range map[string]func(){
		"propagation.segments": func() { cfg.Propagation.Segments = nil },
		"absorption.materials": func() { cfg.Absorption.Materials = nil },
		"absorption.scenarios": func() { cfg.Absorption.Scenarios = nil },
	} {
		if merged.LookupPath(cue.ParsePath(path)).Exists() {
			reset()
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, &Error{File: filename, Field: "cue", Message: err.Error()}
	}
	return cfg, nil
}

// ParseYAML decodes src over Default, rejecting unknown fields.
func ParseYAML(filename string, src []byte) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(src))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, &Error{File: filename, Field: "yaml", Message: err.Error()}
	}
	return cfg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(filename string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{File: filename, Field: "cue", Message: err.Error()}
	}

	first := errs[0]
	format, args := first.Msg()
	out := &Error{File: filename, Field: "cue", Message: fmt.Sprintf(format, args...)}
	path := first.Path()
	if len(path) > 0 && path[0] == "#Config" {
		path = path[1:]
	}
	if len(path) > 0 {
		out.Field = strings.Join(path, ".")
	}
	if positions := errors.Positions(first); len(positions) > 0 {
		out.Pos = positions[0]
		// Prefer a position inside the user's file over one in the schema.
		for _, p := range positions {
			if p.Filename() == filename {
				out.Pos = p
				break
			}
		}
	}
	return out
}

// YAML renders cfg the way ParseYAML reads it.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}
