package registry

import (
	"sort"
	"strings"

	"github.com/tombee/awsdeck/internal/mapping"
)

// ResourceDefinition declares one resource type: how to list it, how to
// describe and act on one instance, and how its fields are displayed.
type ResourceDefinition struct {
	// Name is the unique resource name, taken from the key in the
	// "resources" mapping.
	Name string `yaml:"-" json:"name"`

	DisplayName  string `yaml:"display_name" json:"display_name" validate:"required"`
	Service      string `yaml:"service" json:"service" validate:"required"`
	SDKMethod    string `yaml:"sdk_method" json:"sdk_method"`
	ResponsePath string `yaml:"response_path" json:"response_path"`
	IDField      string `yaml:"id_field" json:"id_field" validate:"required"`
	NameField    string `yaml:"name_field" json:"name_field"`
	IsGlobal     bool   `yaml:"is_global" json:"is_global"`

	// ItemsPath, when set, points inside each collection element at a
	// nested sequence whose elements are the records (EC2 instances inside
	// reservations).
	ItemsPath string `yaml:"items_path,omitempty" json:"items_path,omitempty"`

	Columns        []Column                        `yaml:"columns" json:"columns" validate:"omitempty,dive"`
	Actions        []ActionDefinition              `yaml:"actions" json:"actions" validate:"omitempty,dive"`
	APIConfig      APIConfig                       `yaml:"api_config" json:"api_config"`
	FieldMappings  map[string]mapping.FieldMapping `yaml:"field_mappings" json:"field_mappings" validate:"omitempty,dive"`
	ActionConfigs  map[string]ActionConfig         `yaml:"action_configs" json:"action_configs" validate:"omitempty,dive"`
	DescribeConfig *ActionConfig                   `yaml:"describe_config" json:"describe_config,omitempty" validate:"omitempty"`

	compiled map[string]*mapping.Compiled
}

// Column is one display column. JSONPath names a field mapping or, when no
// mapping has that name, a pointer into the item.
type Column struct {
	Header   string `yaml:"header" json:"header" validate:"required"`
	JSONPath string `yaml:"json_path" json:"json_path" validate:"required"`
	Width    int    `yaml:"width" json:"width" validate:"gte=0"`
	ColorMap string `yaml:"color_map,omitempty" json:"color_map,omitempty"`
}

// ActionDefinition is the UI-facing half of an action. SDKMethod names the
// action_configs entry that executes it.
type ActionDefinition struct {
	Key         string   `yaml:"key" json:"key"`
	DisplayName string   `yaml:"display_name" json:"display_name" validate:"required"`
	Shortcut    string   `yaml:"shortcut" json:"shortcut"`
	SDKMethod   string   `yaml:"sdk_method" json:"sdk_method" validate:"required"`
	Confirm     *Confirm `yaml:"confirm,omitempty" json:"confirm,omitempty" validate:"omitempty"`
}

// Confirm is the confirmation policy a caller applies before invoking an
// action.
type Confirm struct {
	Message     string `yaml:"message" json:"message"`
	DefaultYes  bool   `yaml:"default_yes" json:"default_yes"`
	Destructive bool   `yaml:"destructive" json:"destructive"`
}

// APIConfig describes the list operation.
type APIConfig struct {
	Protocol     string         `yaml:"protocol" json:"protocol" validate:"required,oneof=query json rest-json rest-xml"`
	Action       string         `yaml:"action" json:"action" validate:"required"`
	Method       string         `yaml:"method,omitempty" json:"method,omitempty"`
	Path         string         `yaml:"path,omitempty" json:"path,omitempty"`
	ResponseRoot string         `yaml:"response_root,omitempty" json:"response_root,omitempty"`
	Pagination   *Pagination    `yaml:"pagination,omitempty" json:"pagination,omitempty" validate:"omitempty"`
	StaticParams map[string]any `yaml:"static_params,omitempty" json:"static_params,omitempty"`
}

// Pagination names the request parameter that carries the continuation
// token and the response field that returns it.
type Pagination struct {
	InputToken  string `yaml:"input_token" json:"input_token" validate:"required"`
	OutputToken string `yaml:"output_token" json:"output_token" validate:"required"`

	// PageSize optionally names the page-size request parameter, sent with
	// PageSizeValue on every page.
	PageSize      string `yaml:"page_size,omitempty" json:"page_size,omitempty"`
	PageSizeValue int    `yaml:"page_size_value,omitempty" json:"page_size_value,omitempty" validate:"required_with=PageSize,gte=0"`
}

// ActionConfig describes an action or describe operation on one resource
// instance.
type ActionConfig struct {
	ActionID     string         `yaml:"action_id" json:"action_id"`
	Protocol     string         `yaml:"protocol" json:"protocol" validate:"required,oneof=query json rest-json rest-xml"`
	Action       string         `yaml:"action" json:"action" validate:"required"`
	IDParam      string         `yaml:"id_param,omitempty" json:"id_param,omitempty"`
	BodyTemplate string         `yaml:"body_template,omitempty" json:"body_template,omitempty"`
	StaticParams map[string]any `yaml:"static_params,omitempty" json:"static_params,omitempty"`
	Method       string         `yaml:"method,omitempty" json:"method,omitempty"`
	Path         string         `yaml:"path,omitempty" json:"path,omitempty"`
	ResponseRoot string         `yaml:"response_root,omitempty" json:"response_root,omitempty"`
}

// ResponseRoot returns the pointer to the item collection in a list
// response. Bare names such as "Users" are read as "/Users".
func (d *ResourceDefinition) ResponseRoot() string {
	if d.APIConfig.ResponseRoot != "" {
		return Pointer(d.APIConfig.ResponseRoot)
	}
	return Pointer(d.ResponsePath)
}

// DescribeRoot returns the pointer to the described item.
func (d *ResourceDefinition) DescribeRoot() string {
	if d.DescribeConfig != nil && d.DescribeConfig.ResponseRoot != "" {
		return Pointer(d.DescribeConfig.ResponseRoot)
	}
	return d.ResponseRoot()
}

// ItemsPointer returns the element-relative pointer of the nested record
// sequence, or "" when elements are records themselves.
func (d *ResourceDefinition) ItemsPointer() string {
	return Pointer(d.ItemsPath)
}

// IDPath returns the item-relative pointer of the identifier field.
func (d *ResourceDefinition) IDPath() string {
	return Pointer(d.IDField)
}

// NamePath returns the item-relative pointer of the name field, or "" when
// the resource declares none.
func (d *ResourceDefinition) NamePath() string {
	if d.NameField == "" {
		return ""
	}
	return Pointer(d.NameField)
}

// FindAction resolves an action id to its configuration. The id matches
// an action's sdk_method or an action_configs key. The returned
// definition is nil for configs with no UI-facing action.
func (d *ResourceDefinition) FindAction(id string) (*ActionDefinition, *ActionConfig, bool) {
	cfg, ok := d.ActionConfigs[id]
	if !ok {
		return nil, nil, false
	}
	for i := range d.Actions {
		if d.Actions[i].SDKMethod == id {
			return &d.Actions[i], &cfg, true
		}
	}
	return nil, &cfg, true
}

// FieldNames returns the mapped field names, sorted.
func (d *ResourceDefinition) FieldNames() []string {
	names := make([]string, 0, len(d.FieldMappings))
	for name := range d.FieldMappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MapFields applies every field mapping to item.
func (d *ResourceDefinition) MapFields(item any) map[string]string {
	fields := make(map[string]string, len(d.FieldMappings))
	for name, m := range d.FieldMappings {
		if c, ok := d.compiled[name]; ok {
			fields[name] = c.Apply(item)
			continue
		}
		fields[name] = mapping.Apply(item, m)
	}
	return fields
}

// Pointer turns a bare field name into an item-relative pointer. Values
// that already start with "/" are returned unchanged.
func Pointer(field string) string {
	if field == "" || strings.HasPrefix(field, "/") {
		return field
	}
	return "/" + field
}
