package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// LoadParams reads a flat parameter override file. The extension picks
// the decoder: .yaml and .yml for YAML, .hcl for HCL attributes.
func LoadParams(path string) (map[string]float64, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	var out map[string]float64
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		out, err = ParseYAMLParams(src)
	case ".hcl":
		out, err = ParseHCLParams(src, path)
	default:
		err = fmt.Errorf("parameter file extension %q: %w", filepath.Ext(path), ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return out, nil
}

// ParseYAMLParams decodes a YAML mapping of names to numbers.
func ParseYAMLParams(src []byte) (map[string]float64, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out := make(map[string]float64, len(raw))
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f, err := toFloat(raw[k])
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		out[k] = f
	}
	return out, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}

// ParseHCLParams decodes top-level HCL attributes that evaluate to
// numbers. Blocks are rejected. Expressions are evaluated without
// variables, so arithmetic on literals works but references do not.
func ParseHCLParams(src []byte, filename string) (map[string]float64, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse hcl: %s", diags.Error())
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode hcl: %s", diags.Error())
	}
	out := make(map[string]float64, len(attrs))
	for name, attr := range attrs {
		f, err := attrFloat(attr)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = f
	}
	return out, nil
}

func attrFloat(attr *hcl.Attribute) (float64, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("%s", diags.Error())
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Number) {
		return 0, fmt.Errorf("expected a number, got %s", val.Type().FriendlyName())
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("expected a finite number, got %v", f)
	}
	return f, nil
}
