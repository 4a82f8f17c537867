package formula

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/alexandre1a/goblin-brew/internal/utils/logger"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
	k8syaml "sigs.k8s.io/yaml"
)

const schemaURL = "goblin://formula.schema.json"

// formulaSchema describes a formula file. Checksum presence is an audit
// concern, not a schema one, so sha256 may be empty here.
const formulaSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "url", "install", "test"],
  "additionalProperties": false,
  "properties": {
    "name":       {"type": "string", "pattern": "^[a-z0-9][a-z0-9._+-]*$"},
    "desc":       {"type": "string"},
    "homepage":   {"type": "string"},
    "url":        {"type": "string", "minLength": 1},
    "sha256":     {"type": "string", "pattern": "^([0-9a-fA-F]{64})?$"},
    "version":    {"type": "string"},
    "license":    {"type": "string"},
    "depends_on": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "install": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["kind", "source"],
        "additionalProperties": false,
        "properties": {
          "kind":        {"enum": ["bin", "libexec", "inreplace"]},
          "source":      {"type": "string", "minLength": 1},
          "dest":        {"type": "string"},
          "pattern":     {"type": "string"},
          "replacement": {"type": "string"}
        },
        "if":   {"properties": {"kind": {"const": "inreplace"}}},
        "then": {"required": ["pattern", "replacement"]}
      }
    },
    "test": {
      "type": "object",
      "required": ["contains"],
      "additionalProperties": false,
      "properties": {
        "args":      {"type": "array", "items": {"type": "string"}},
        "unset":     {"type": "array", "items": {"type": "string"}},
        "exit_code": {"type": "integer", "minimum": 0, "maximum": 255},
        "contains":  {"type": "string"},
        "timeout":   {"type": "string"},
        "binary":    {"type": "string"}
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString(schemaURL, formulaSchema)

// Parse validates data against the formula schema and decodes it.
func Parse(data []byte) (*types.Formula, error) {
	raw, err := k8syaml.YAMLToJSON(data)
	if err != nil {
		return nil, zerr.Wrap(err, types.ErrFormulaInvalid.Error())
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, zerr.Wrap(err, types.ErrFormulaInvalid.Error())
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return nil, zerr.Wrap(err, types.ErrFormulaInvalid.Error())
	}

	var f types.Formula
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, zerr.Wrap(err, types.ErrFormulaInvalid.Error())
	}
	return &f, nil
}

// LoadFile reads and parses one formula file.
func LoadFile(path string) (*types.Formula, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, types.ErrFormulaInvalid.Error()), "file", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return f, nil
}

// Registry resolves formulae by name.
type Registry struct {
	formulae map[string]types.Formula
}

// NewRegistry creates a registry holding the given formulae. Later entries
// replace earlier ones with the same name.
func NewRegistry(formulae ...types.Formula) *Registry {
	r := &Registry{formulae: make(map[string]types.Formula, len(formulae))}
	for _, f := range formulae {
		r.Add(f)
	}
	return r
}

// Add registers f under its lower-cased name.
func (r *Registry) Add(f types.Formula) {
	r.formulae[strings.ToLower(f.Name)] = f
}

// LoadDir registers every *.yaml and *.yml file found in dir. A missing
// directory is not an error.
func (r *Registry) LoadDir(dir string) error {
	log := logger.Logger()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("formula directory %s does not exist", dir)
			return nil
		}
		return zerr.With(zerr.Wrap(err, types.ErrFormulaInvalid.Error()), "dir", dir)
	}

	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		f, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		log.Debugf("loaded formula %s from %s", f.Name, entry.Name())
		r.Add(*f)
	}
	return nil
}

// Get returns the formula with the given name, case-insensitively.
func (r *Registry) Get(name string) (types.Formula, error) {
	f, ok := r.formulae[strings.ToLower(name)]
	if !ok {
		return types.Formula{}, zerr.With(types.ErrFormulaNotFound, "formula", name)
	}
	return f, nil
}

// All returns the registered formulae sorted by name.
func (r *Registry) All() []types.Formula {
	out := make([]types.Formula, 0, len(r.formulae))
	for _, f := range r.formulae {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
