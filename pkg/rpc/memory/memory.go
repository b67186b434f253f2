// Package memory is an in-process backend serving the remote resource
// operations from a map. It backs the development server and every store test.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/zuccha/dnd-portal-sub002/pkg/i18n"
	"github.com/zuccha/dnd-portal-sub002/pkg/resource"
	"github.com/zuccha/dnd-portal-sub002/pkg/rpc"
	"go.uber.org/zap"
)

// Kind declares a resource kind the backend serves.
type Kind struct {
	Kind   resource.Kind
	Plural string
	// Translations lists the localized fields. Create and update write the
	// translation params of a call into these fields for the call's language.
	Translations []string
}

type Config struct {
	Kinds []Kind
	// Campaigns maps campaign ids to display names.
	Campaigns map[string]string
	Logger    *zap.Logger
}

type record = map[string]interface{}

// Backend implements rpc.Handler.
type Backend struct {
	cfg    Config
	kinds  map[resource.Kind]Kind
	plural map[string]Kind

	mu      sync.Mutex
	records map[string]record
	calls   map[string]int
	fail    map[string]string
	gate    chan struct{}
}

var _ rpc.Handler = (*Backend)(nil)

func New(cfg Config) *Backend {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	b := &Backend{
		cfg:     cfg,
		kinds:   make(map[resource.Kind]Kind),
		plural:  make(map[string]Kind),
		records: make(map[string]record),
		calls:   make(map[string]int),
		fail:    make(map[string]string),
	}
	for _, k := range cfg.Kinds {
		b.Register(k)
	}
	return b
}

// Register starts serving k. Registering a kind again replaces it.
func (b *Backend) Register(k Kind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kinds[k.Kind] = k
	b.plural[k.Plural] = k
}

// Seed stores resources as given. Each must encode to an object with an id and
// a kind the backend serves.
func (b *Backend) Seed(resources ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, res := range resources {
		raw, err := json.Marshal(res)
		if err != nil {
			return errors.Wrap(err, "[memory] - encoding seed")
		}
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return errors.Wrap(err, "[memory] - seed is not an object")
		}
		id, _ := r["id"].(string)
		if id == "" {
			return errors.New("[memory] - seed has no id")
		}
		if _, ok := b.kinds[resource.Kind(str(r["kind"]))]; !ok {
			return errors.Newf("[memory] - seed %s has unknown kind %q", id, r["kind"])
		}
		b.records[id] = r
	}
	return nil
}

// Calls returns how many times op has been called.
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Hold blocks every subsequent call after it is counted, until the returned
// release function is called.
func (b *Backend) Hold() (release func()) {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gate = gate
	b.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			if b.gate == gate {
				b.gate = nil
			}
			b.mu.Unlock()
			close(gate)
		})
	}
}

// FailNext makes the next call to op fail with message.
func (b *Backend) FailNext(op, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = message
}

func (b *Backend) Serve(ctx context.Context, op string, params json.RawMessage) (interface{}, error) {
	b.mu.Lock()
	b.calls[op]++
	gate := b.gate
	msg, fail := b.fail[op]
	delete(b.fail, op)
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, &rpc.Error{Op: op, Message: msg}
	}
	b.cfg.Logger.Debug("serving", zap.String("op", op))

	switch {
	case op == rpc.FetchResourceOptions:
		var p rpc.FetchOptionsParams
		return decode(op, params, &p, func() (interface{}, error) { return b.fetchOptions(p), nil })
	case op == rpc.DeleteResources:
		var p rpc.DeleteParams
		return decode(op, params, &p, func() (interface{}, error) { return nil, b.delete(op, p) })
	case strings.HasPrefix(op, "fetch_"):
		name := strings.TrimPrefix(op, "fetch_")
		if k, ok := b.kind(name); ok {
			var p rpc.FetchParams
			return decode(op, params, &p, func() (interface{}, error) { return b.fetch(op, k, p) })
		}
		if k, ok := b.pluralKind(name); ok {
			var p rpc.FetchManyParams
			return decode(op, params, &p, func() (interface{}, error) { return b.fetchMany(k, p), nil })
		}
	case strings.HasPrefix(op, "create_"):
		if k, ok := b.kind(strings.TrimPrefix(op, "create_")); ok {
			var p rpc.CreateParams
			return decode(op, params, &p, func() (interface{}, error) { return nil, b.create(op, k, p) })
		}
	case strings.HasPrefix(op, "update_"):
		if k, ok := b.kind(strings.TrimPrefix(op, "update_")); ok {
			var p rpc.UpdateParams
			return decode(op, params, &p, func() (interface{}, error) { return nil, b.update(op, k, p) })
		}
	}
	return nil, errors.Wrapf(rpc.ErrUnknownOp, "%s", op)
}

func (b *Backend) kind(name string) (Kind, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k, ok := b.kinds[resource.Kind(name)]
	return k, ok
}

func (b *Backend) pluralKind(name string) (Kind, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	k, ok := b.plural[name]
	return k, ok
}

func decode(op string, raw json.RawMessage, params interface{}, then func() (interface{}, error)) (interface{}, error) {
	if err := json.Unmarshal(raw, params); err != nil {
		return nil, &rpc.Error{Op: op, Message: "invalid parameters: " + err.Error()}
	}
	return then()
}

func (b *Backend) fetch(op string, k Kind, p rpc.FetchParams) (interface{}, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.records[p.ID]
	if !ok || str(r["kind"]) != string(k.Kind) {
		return nil, &rpc.Error{Op: op, Message: "resource not found"}
	}
	return project(r, k.Translations, nil), nil
}

func (b *Backend) fetchMany(k Kind, p rpc.FetchManyParams) []record {
	b.mu.Lock()
	out := make([]record, 0)
	for _, r := range b.records {
		if str(r["kind"]) != string(k.Kind) || str(r["campaign_id"]) != p.CampaignID {
			continue
		}
		if !matches(r, p.Filters) {
			continue
		}
		out = append(out, project(r, k.Translations, p.Langs))
	}
	b.mu.Unlock()
	lang := i18n.Default
	if len(p.Langs) > 0 {
		lang = p.Langs[0]
	}
	sortRecords(out, p.OrderBy, p.OrderDir, lang)
	return out
}

func (b *Backend) fetchOptions(p rpc.FetchOptionsParams) []resource.Option {
	kinds := make(map[resource.Kind]bool, len(p.Kinds))
	for _, k := range p.Kinds {
		kinds[k] = true
	}
	b.mu.Lock()
	out := make([]resource.Option, 0)
	for id, r := range b.records {
		kind := resource.Kind(str(r["kind"]))
		if !kinds[kind] || str(r["campaign_id"]) != p.CampaignID {
			continue
		}
		out = append(out, resource.Option{
			ID:   id,
			Kind: kind,
			Name: toText(onlyLangs(textOf(r["name"]), p.Langs)),
		})
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (b *Backend) create(op string, k Kind, p rpc.CreateParams) error {
	if p.CampaignID == "" {
		return &rpc.Error{Op: op, Message: "campaign is required"}
	}
	if p.Lang == "" {
		return &rpc.Error{Op: op, Message: "language is required"}
	}
	if str(p.Translation["name"]) == "" {
		return &rpc.Error{Op: op, Message: "name is required"}
	}
	r := record{
		"id":          uuid.New().String(),
		"kind":        string(k.Kind),
		"campaign_id": p.CampaignID,
		"visibility":  string(resource.Private),
	}
	if name, ok := b.cfg.Campaigns[p.CampaignID]; ok {
		r["campaign_name"] = name
	}
	for _, f := range k.Translations {
		r[f] = map[string]interface{}{}
	}
	if err := apply(op, k, r, p.Lang, p.Resource, p.Translation); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[r["id"].(string)] = r
	return nil
}

func (b *Backend) update(op string, k Kind, p rpc.UpdateParams) error {
	if p.Lang == "" && len(p.Translation) > 0 {
		return &rpc.Error{Op: op, Message: "language is required"}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.records[p.ID]
	if !ok || str(r["kind"]) != string(k.Kind) {
		return &rpc.Error{Op: op, Message: "resource not found"}
	}
	next := project(r, k.Translations, nil)
	if err := apply(op, k, next, p.Lang, p.Resource, p.Translation); err != nil {
		return err
	}
	b.records[p.ID] = next
	return nil
}

func (b *Backend) delete(op string, p rpc.DeleteParams) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range p.IDs {
		if _, ok := b.records[id]; !ok {
			return &rpc.Error{Op: op, Message: "resource " + id + " not found"}
		}
	}
	for _, id := range p.IDs {
		delete(b.records, id)
	}
	return nil
}

var immutable = map[string]bool{"id": true, "kind": true, "campaign_id": true, "campaign_name": true}

func apply(op string, k Kind, r record, lang string, fields, translation resource.Fields) error {
	localized := make(map[string]bool, len(k.Translations))
	for _, f := range k.Translations {
		localized[f] = true
	}
	for f, v := range fields {
		if immutable[f] || localized[f] {
			return &rpc.Error{Op: op, Message: "field " + f + " cannot be set"}
		}
		if f == "visibility" && v != string(resource.Public) && v != string(resource.Private) {
			return &rpc.Error{Op: op, Message: "invalid visibility"}
		}
		r[f] = v
	}
	for f, v := range translation {
		if !localized[f] {
			return &rpc.Error{Op: op, Message: "field " + f + " is not translatable"}
		}
		m, _ := r[f].(map[string]interface{})
		if m == nil {
			m = map[string]interface{}{}
		}
		m[lang] = v
		r[f] = m
	}
	return nil
}

// project copies r, restricting its translation fields to langs when langs is
// not empty.
func project(r record, translations []string, langs []string) record {
	out := make(record, len(r))
	for k, v := range r {
		out[k] = v
	}
	for _, f := range translations {
		if m, ok := r[f].(map[string]interface{}); ok {
			out[f] = onlyLangs(m, langs)
		}
	}
	return out
}

func onlyLangs(m map[string]interface{}, langs []string) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for l, v := range m {
		if len(langs) == 0 || contains(langs, l) {
			out[l] = v
		}
	}
	return out
}

// toText keeps the string values of a decoded text map.
func toText(m map[string]interface{}) i18n.Text {
	out := make(i18n.Text, len(m))
	for l, v := range m {
		if s, ok := v.(string); ok {
			out[l] = s
		}
	}
	return out
}

func textOf(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func contains(ss []string, s string) bool {
	for _, e := range ss {
		if e == s {
			return true
		}
	}
	return false
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}
