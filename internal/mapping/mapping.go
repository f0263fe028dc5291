// Package mapping turns values extracted from a response tree into display
// strings using declarative field mappings.
package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/itchyny/gojq"

	"github.com/tombee/awsdeck/internal/value"
)

// Transform identifiers accepted in a FieldMapping.
const (
	TransformTagsToMap   = "tags_to_map"
	TransformFormatBytes = "format_bytes"
	TransformBoolToYesNo = "bool_to_yes_no"
	TransformArrayToCSV  = "array_to_csv"
)

// jqTimeout bounds a single jq source evaluation.
const jqTimeout = time.Second

var transforms = map[string]func(any) string{
	TransformTagsToMap:   TagsToMap,
	TransformFormatBytes: formatBytesValue,
	TransformBoolToYesNo: BoolToYesNo,
	TransformArrayToCSV:  ArrayToCSV,
}

// FieldMapping converts one raw response value into one display field.
type FieldMapping struct {
	// Source is a pointer path ("/State/Name") or a jq expression (".Tags | length").
	Source string `yaml:"source" json:"source" validate:"required"`

	// Default is returned when Source does not resolve.
	Default string `yaml:"default" json:"default"`

	// Transform optionally names a display transform.
	Transform string `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// IsJQ reports whether the source is a jq expression rather than a pointer.
func (m FieldMapping) IsJQ() bool {
	return strings.HasPrefix(m.Source, ".")
}

// Validate checks the transform name and source syntax.
func (m FieldMapping) Validate() error {
	if err := ValidateTransform(m.Transform); err != nil {
		return err
	}
	if m.IsJQ() {
		if _, err := compileJQ(m.Source); err != nil {
			return err
		}
		return nil
	}
	return value.ValidatePath(m.Source)
}

// ValidateTransform returns an error for unknown transform identifiers.
// The empty identifier means no transform.
func ValidateTransform(name string) error {
	if name == "" {
		return nil
	}
	if _, ok := transforms[name]; !ok {
		return fmt.Errorf("unknown transform %q", name)
	}
	return nil
}

// Apply resolves m against tree and returns the display value. An absent
// or null source yields m.Default; a present one is passed through the
// transform, or stringified when there is none.
func Apply(tree any, m FieldMapping) string {
	c, err := Compile(m)
	if err != nil {
		return m.Default
	}
	return c.Apply(tree)
}

// Compiled is a FieldMapping with its jq source (if any) parsed once.
// It is immutable and safe for concurrent use.
type Compiled struct {
	mapping FieldMapping
	code    *gojq.Code
	fn      func(any) string
}

// Compile validates m and prepares it for repeated application.
func Compile(m FieldMapping) (*Compiled, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	c := &Compiled{mapping: m, fn: transforms[m.Transform]}
	if m.IsJQ() {
		code, err := compileJQ(m.Source)
		if err != nil {
			return nil, err
		}
		c.code = code
	}
	return c, nil
}

// Mapping returns the declaration c was compiled from.
func (c *Compiled) Mapping() FieldMapping {
	return c.mapping
}

// Apply resolves the mapping against tree.
func (c *Compiled) Apply(tree any) string {
	v, ok := c.extract(tree)
	if !ok || v == nil {
		return c.mapping.Default
	}
	if c.fn != nil {
		return c.fn(v)
	}
	return value.ToString(v)
}

func (c *Compiled) extract(tree any) (any, bool) {
	if c.code == nil {
		return value.Extract(tree, c.mapping.Source)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jqTimeout)
	defer cancel()

	iter := c.code.RunWithContext(ctx, tree)
	v, ok := iter.Next()
	if !ok {
		return nil, false
	}
	if _, isErr := v.(error); isErr {
		return nil, false
	}
	return v, true
}

func compileJQ(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression %q: %w", expression, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed for %q: %w", expression, err)
	}
	return code, nil
}
