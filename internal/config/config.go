// Package config loads the YAML profile that supplies default sort and
// logging options. Profiles are validated against an embedded JSON Schema
// before they are decoded.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/amirbrooks/dictsort/internal/dict"
)

const (
	EnvPath     = "DICTSORT_CONFIG"
	DefaultPath = ".dictsort.yaml"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

//go:embed schema/profile.schema.json
var profileSchema []byte

type Profile struct {
	KeyField    int    `yaml:"key_field" json:"key_field"`
	Numeric     bool   `yaml:"numeric" json:"numeric"`
	Reverse     bool   `yaml:"reverse" json:"reverse"`
	Unique      bool   `yaml:"unique" json:"unique"`
	Pragma      bool   `yaml:"pragma" json:"pragma"`
	TrustPragma bool   `yaml:"trust_pragma" json:"trust_pragma"`
	Check       bool   `yaml:"check" json:"check"`
	LogLevel    string `yaml:"log_level" json:"log_level"`
	LogFormat   string `yaml:"log_format" json:"log_format"`
}

func Default() Profile {
	return Profile{
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// Options converts the sorting part of the profile.
func (p Profile) Options() dict.Options {
	return dict.Options{
		KeyField:    p.KeyField,
		Numeric:     p.Numeric,
		Reverse:     p.Reverse,
		Unique:      p.Unique,
		Pragma:      p.Pragma,
		TrustPragma: p.TrustPragma,
		Check:       p.Check,
	}
}

// ResolvePath picks the profile path: explicit flag, then the environment,
// then DefaultPath in the working directory when it exists. It returns ""
// when no profile applies.
func ResolvePath(flagPath string, getenv func(string) string) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return dict.ExpandHome(p)
	}
	if getenv != nil {
		if p := strings.TrimSpace(getenv(EnvPath)); p != "" {
			return dict.ExpandHome(p)
		}
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads the profile at path on top of the defaults. An empty path
// returns the defaults.
func Load(path string) (Profile, error) {
	p := Default()
	if path == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return p, fmt.Errorf("%w: config %s", ErrNotFound, path)
		}
		return p, err
	}
	if err := Parse(b, &p); err != nil {
		return p, fmt.Errorf("config %s: %w", path, err)
	}
	return p, nil
}

// Parse validates YAML profile bytes and decodes them into p. Keys absent
// from the document keep their current values.
func Parse(b []byte, p *Profile) error {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if doc == nil {
		// empty document
		return nil
	}
	if err := validate(doc); err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func validate(doc any) error {
	sch, err := compileSchema()
	if err != nil {
		return err
	}
	// Round-trip through JSON so the validator sees JSON-native types.
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := sch.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(profileSchema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("profile.schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("profile.schema.json")
}
