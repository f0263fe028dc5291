package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/tombee/awsdeck/internal/registry"
)

// resourceIDPlaceholder is replaced with the resource id in body templates.
const resourceIDPlaceholder = "{resource_id}"

// Describe fetches one resource instance through the resource's describe
// configuration. When the describe root holds a sequence the first element
// (after items_path flattening) is the described item.
func (d *Dispatcher) Describe(ctx context.Context, name, id, region string) (*Record, error) {
	def, err := d.lookup(OpDescribe, name)
	if err != nil {
		return nil, err
	}
	cfg := def.DescribeConfig
	if cfg == nil {
		return nil, newError(OpDescribe, name, ErrNoDescribeConfig)
	}

	tree, err := d.invoke(ctx, OpDescribe, def, cfg, id, region, false)
	if err != nil {
		return nil, newError(OpDescribe, name, err)
	}

	items, err := collection(tree, def.DescribeRoot(), cfg.Protocol)
	if err != nil {
		return nil, newError(OpDescribe, name, err)
	}
	items = flatten(items, def.ItemsPointer())
	if len(items) == 0 {
		return nil, newError(OpDescribe, name, fmt.Errorf("%w: no item for %q", ErrMissingResponseRoot, id))
	}

	record := toRecord(def, items[0])
	recordRecords(def.Name, 1)
	return &record, nil
}

// InvokeAction runs an action on one resource instance and returns the
// parsed response unmapped; an empty response body yields nil.
// Confirmation is the caller's concern.
func (d *Dispatcher) InvokeAction(ctx context.Context, name, actionID, id, region string) (any, error) {
	def, err := d.lookup(OpAction, name)
	if err != nil {
		return nil, err
	}
	_, cfg, ok := def.FindAction(actionID)
	if !ok {
		return nil, newError(OpAction, name, fmt.Errorf("%w %q", ErrUnknownAction, actionID))
	}

	tree, err := d.invoke(ctx, OpAction, def, cfg, id, region, true)
	if err != nil {
		return nil, newError(OpAction, name, err)
	}
	return tree, nil
}

func (d *Dispatcher) invoke(ctx context.Context, op string, def *registry.ResourceDefinition, cfg *registry.ActionConfig, id, region string, allowEmpty bool) (any, error) {
	params, err := actionParams(cfg, id)
	if err != nil {
		return nil, err
	}
	return d.execute(ctx, &call{
		op:            op,
		def:           def,
		protocol:      cfg.Protocol,
		action:        cfg.Action,
		method:        cfg.Method,
		path:          cfg.Path,
		params:        params,
		region:        region,
		correlationID: uuid.NewString(),
		allowEmpty:    allowEmpty,
	})
}

// actionParams builds the request parameters for an action: static params,
// then the rendered body template, then the id parameter.
func actionParams(cfg *registry.ActionConfig, id string) (map[string]any, error) {
	params := maps.Clone(cfg.StaticParams)
	if params == nil {
		params = make(map[string]any)
	}

	if cfg.BodyTemplate != "" {
		rendered := strings.ReplaceAll(cfg.BodyTemplate, resourceIDPlaceholder, jsonEscape(id))
		var body map[string]any
		if err := json.Unmarshal([]byte(rendered), &body); err != nil {
			return nil, fmt.Errorf("body template for %s: %w", cfg.Action, err)
		}
		maps.Copy(params, body)
	}

	if cfg.IDParam != "" {
		params[cfg.IDParam] = id
	}
	return params, nil
}

// jsonEscape returns s escaped for use inside a JSON string literal.
func jsonEscape(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return s
	}
	return string(b[1 : len(b)-1])
}
