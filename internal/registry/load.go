package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tombee/awsdeck/internal/mapping"
	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/value"
)

// Source is one configuration document. Name identifies it in errors.
type Source struct {
	Name string
	Data []byte
}

// definitionPattern matches definition files below a directory.
const definitionPattern = "**/*.{json,yaml,yml}"

// Loader builds registries. The zero value is not usable; use NewLoader.
type Loader struct {
	catalog  service.Catalog
	validate *validator.Validate
	logger   *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCatalog rejects resources whose service is missing from catalog.
func WithCatalog(catalog service.Catalog) Option {
	return func(l *Loader) {
		l.catalog = catalog
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	v := validator.New()
	// Report yaml field names rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	l := &Loader{
		validate: v,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load builds a registry from sources without a service catalog check.
func Load(sources ...Source) (*Registry, error) {
	return NewLoader().Load(sources...)
}

// LoadFiles builds a registry from the files matching patterns.
func LoadFiles(patterns ...string) (*Registry, error) {
	return NewLoader().LoadFiles(patterns...)
}

// Load builds a registry from sources. Resources keep the order in which
// they appear, source by source.
func (l *Loader) Load(sources ...Source) (*Registry, error) {
	reg := newRegistry()
	origin := make(map[string]string)

	for _, src := range sources {
		defs, err := decode(src)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			if prev, dup := origin[def.Name]; dup {
				return nil, &DefinitionError{
					Source:   src.Name,
					Resource: def.Name,
					Reason:   fmt.Sprintf("already defined in %s", prev),
					Err:      ErrDuplicateResourceName,
				}
			}
			if err := l.check(src.Name, def); err != nil {
				return nil, err
			}
			origin[def.Name] = src.Name
			reg.add(def)
		}
	}

	l.logger.Debug("loaded resource definitions",
		slog.Int("sources", len(sources)),
		slog.Int("resources", reg.Len()),
		slog.Int("services", len(reg.services)))
	return reg, nil
}

// LoadFiles builds a registry from the files matching the doublestar
// patterns, in sorted path order.
func (l *Loader) LoadFiles(patterns ...string) (*Registry, error) {
	sources, err := ReadFiles(patterns...)
	if err != nil {
		return nil, err
	}
	return l.Load(sources...)
}

// LoadDefault builds a registry from the bundled definitions followed by
// every definition file below dirs. Missing directories are skipped.
func (l *Loader) LoadDefault(dirs ...string) (*Registry, error) {
	sources, err := EmbeddedSources()
	if err != nil {
		return nil, err
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		extra, err := ReadFiles(filepath.Join(dir, definitionPattern))
		if err != nil {
			return nil, err
		}
		sources = append(sources, extra...)
	}
	return l.Load(sources...)
}

// ReadFiles reads every file matching the doublestar patterns. Each file is
// read once even when several patterns match it.
func ReadFiles(patterns ...string) ([]Source, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid definition pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read definition file: %w", err)
		}
		sources = append(sources, Source{Name: path, Data: data})
	}
	return sources, nil
}

// decode parses one document. JSON documents are valid YAML, so both go
// through the yaml.Node tree, which keeps resource order.
func decode(src Source) ([]*ResourceDefinition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src.Data, &doc); err != nil {
		return nil, malformed(src.Name, "", "", "invalid document", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, malformed(src.Name, "", "", "empty document", nil)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed(src.Name, "", "", "top level must be a mapping", nil)
	}
	resources := mappingValue(root, "resources")
	if resources == nil {
		return nil, malformed(src.Name, "", "resources", "is required", nil)
	}
	if resources.Kind != yaml.MappingNode {
		return nil, malformed(src.Name, "", "resources", "must be a mapping", nil)
	}

	defs := make([]*ResourceDefinition, 0, len(resources.Content)/2)
	for i := 0; i+1 < len(resources.Content); i += 2 {
		key, node := resources.Content[i], resources.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, malformed(src.Name, "", "resources", fmt.Sprintf("line %d: resource name must be a non-empty string", key.Line), nil)
		}
		name := key.Value
		if node.Kind != yaml.MappingNode {
			return nil, malformed(src.Name, name, "", "definition must be a mapping", nil)
		}

		def := &ResourceDefinition{}
		if err := node.Decode(def); err != nil {
			return nil, malformed(src.Name, name, "", "invalid field", err)
		}
		def.Name = name
		defs = append(defs, def)
	}
	return defs, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// check validates def structurally, then semantically, and compiles its
// field mappings.
func (l *Loader) check(src string, def *ResourceDefinition) error {
	if err := l.validate.Struct(def); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return malformed(src, def.Name, fieldPath(fe), describeTag(fe), nil)
		}
		return malformed(src, def.Name, "", "invalid definition", err)
	}

	if l.catalog != nil && !l.catalog.Has(def.Service) {
		return malformed(src, def.Name, "service", fmt.Sprintf("unknown service %q", def.Service), nil)
	}

	if err := value.ValidatePath(def.ResponseRoot()); err != nil {
		return malformed(src, def.Name, "api_config.response_root", "invalid path", err)
	}
	if p := def.APIConfig.Pagination; p != nil {
		if err := value.ValidatePath(Pointer(p.OutputToken)); err != nil {
			return malformed(src, def.Name, "api_config.pagination.output_token", "invalid path", err)
		}
	}
	for _, p := range []struct{ field, path string }{
		{"id_field", def.IDPath()},
		{"name_field", def.NamePath()},
		{"items_path", def.ItemsPointer()},
	} {
		if err := value.ValidatePath(p.path); err != nil {
			return malformed(src, def.Name, p.field, "invalid path", err)
		}
	}

	def.compiled = make(map[string]*mapping.Compiled, len(def.FieldMappings))
	for _, name := range def.FieldNames() {
		c, err := mapping.Compile(def.FieldMappings[name])
		if err != nil {
			return malformed(src, def.Name, "field_mappings."+name, "invalid mapping", err)
		}
		def.compiled[name] = c
	}

	for i, col := range def.Columns {
		if _, ok := def.FieldMappings[col.JSONPath]; ok {
			continue
		}
		if err := value.ValidatePath(Pointer(col.JSONPath)); err != nil {
			return malformed(src, def.Name, fmt.Sprintf("columns[%d].json_path", i), "invalid path", err)
		}
	}

	for i, action := range def.Actions {
		if _, ok := def.ActionConfigs[action.SDKMethod]; !ok {
			return malformed(src, def.Name, fmt.Sprintf("actions[%d].sdk_method", i),
				fmt.Sprintf("no action_configs entry %q", action.SDKMethod), nil)
		}
	}
	for id, cfg := range def.ActionConfigs {
		if err := value.ValidatePath(Pointer(cfg.ResponseRoot)); err != nil {
			return malformed(src, def.Name, "action_configs."+id+".response_root", "invalid path", err)
		}
	}
	if def.DescribeConfig != nil {
		if err := value.ValidatePath(def.DescribeRoot()); err != nil {
			return malformed(src, def.Name, "describe_config.response_root", "invalid path", err)
		}
	}
	return nil
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "required_with":
		return fmt.Sprintf("is required when %s is set", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
