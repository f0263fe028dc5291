package dispatch

import (
	"context"
	"iter"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/tombee/awsdeck/internal/registry"
	"github.com/tombee/awsdeck/internal/service"
	"github.com/tombee/awsdeck/internal/value"
)

// Pager fetches the pages of one list call in sequence. Each page's input
// token is the previous page's output token, so pages are never fetched
// concurrently. A Pager is not restartable and not safe for concurrent
// use.
type Pager struct {
	d             *Dispatcher
	def           *registry.ResourceDefinition
	region        string
	correlationID string

	token string
	page  int
	done  bool
	err   error
}

// List starts listing a resource. No request is sent until Next is called.
// An unknown resource name is reported by the first Next.
func (d *Dispatcher) List(ctx context.Context, name, region string) *Pager {
	p := &Pager{
		d:             d,
		region:        region,
		correlationID: uuid.NewString(),
	}
	p.def, p.err = d.lookup(OpList, name)
	return p
}

// ListAll fetches every page and concatenates the records in arrival
// order.
func (d *Dispatcher) ListAll(ctx context.Context, name, region string) ([]Record, error) {
	var all []Record
	for records, err := range d.List(ctx, name, region).Pages(ctx) {
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// Done reports whether the last page has been fetched or a fetch failed.
func (p *Pager) Done() bool {
	return p.done
}

// Page returns the number of pages fetched so far.
func (p *Pager) Page() int {
	return p.page
}

// Next fetches the next page. After Done it returns nil records and a nil
// error. A failed fetch ends the pager.
func (p *Pager) Next(ctx context.Context) ([]Record, error) {
	if p.done {
		return nil, nil
	}
	if p.err != nil {
		p.done = true
		return nil, p.err
	}

	records, err := p.fetch(ctx)
	if err != nil {
		p.done = true
		return nil, newError(OpList, p.def.Name, err)
	}
	return records, nil
}

// Pages yields each page until the pager is done. Breaking out of the
// loop stops fetching.
func (p *Pager) Pages(ctx context.Context) iter.Seq2[[]Record, error] {
	return func(yield func([]Record, error) bool) {
		for !p.done {
			records, err := p.Next(ctx)
			if !yield(records, err) || err != nil {
				return
			}
		}
	}
}

func (p *Pager) fetch(ctx context.Context) ([]Record, error) {
	def := p.def
	cfg := def.APIConfig
	pagination := cfg.Pagination

	params := maps.Clone(cfg.StaticParams)
	if params == nil {
		params = make(map[string]any)
	}
	if pagination != nil {
		if pagination.PageSize != "" && pagination.PageSizeValue > 0 {
			params[pagination.PageSize] = pagination.PageSizeValue
		}
		if p.token != "" {
			params[pagination.InputToken] = p.token
		}
	}

	p.page++
	tree, err := p.d.execute(ctx, &call{
		op:            OpList,
		def:           def,
		protocol:      cfg.Protocol,
		action:        cfg.Action,
		method:        cfg.Method,
		path:          cfg.Path,
		params:        params,
		region:        p.region,
		correlationID: p.correlationID,
		page:          p.page,
	})
	if err != nil {
		return nil, err
	}

	items, err := collection(tree, def.ResponseRoot(), cfg.Protocol)
	if err != nil {
		return nil, err
	}
	items = flatten(items, def.ItemsPointer())
	records := make([]Record, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(def, item))
	}
	recordRecords(def.Name, len(records))

	next := ""
	if pagination != nil {
		if v, ok := value.Extract(tree, registry.Pointer(pagination.OutputToken)); ok {
			next = strings.TrimSpace(value.ToString(v))
		}
	}
	// A repeated token would loop forever.
	if next == "" || next == p.token {
		p.done = true
	}
	p.token = next
	return records, nil
}

// collection extracts the items at root. A sequence yields its elements,
// a single mapping or scalar yields itself, and an empty node yields no
// items. XML dialects omit empty collections entirely, so there a missing
// root under an empty parent is also an empty collection.
func collection(tree any, root, protocol string) ([]any, error) {
	v, ok := value.Extract(tree, root)
	if !ok {
		if isXML(protocol) && emptyParent(tree, root) {
			return nil, nil
		}
		return nil, ErrMissingResponseRoot
	}
	if isEmpty(v) {
		return nil, nil
	}
	if seq, ok := v.([]any); ok {
		return seq, nil
	}
	return []any{v}, nil
}

// flatten replaces each element with the nested sequence at path. An
// element without one contributes no items.
func flatten(items []any, path string) []any {
	if path == "" {
		return items
	}
	var out []any
	for _, item := range items {
		v, ok := value.Extract(item, path)
		if !ok || isEmpty(v) {
			continue
		}
		if seq, ok := v.([]any); ok {
			out = append(out, seq...)
			continue
		}
		out = append(out, v)
	}
	return out
}

func isXML(protocol string) bool {
	return protocol == service.ProtocolQuery || protocol == service.ProtocolRESTXML
}

func emptyParent(tree any, root string) bool {
	i := strings.LastIndex(root, "/")
	if i <= 0 {
		return false
	}
	parent, ok := value.Extract(tree, root[:i])
	return ok && isEmpty(parent)
}

func isEmpty(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(n) == ""
	case []any:
		return len(n) == 0
	case map[string]any:
		return len(n) == 0
	}
	return false
}

func identity(fields map[string]string, item any, field, path string) string {
	if field == "" {
		return ""
	}
	if v, ok := fields[field]; ok {
		return v
	}
	if v, ok := value.Extract(item, path); ok {
		return value.ToString(v)
	}
	return ""
}
