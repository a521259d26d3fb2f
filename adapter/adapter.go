// Package adapter implements a namespaced key-value storage adapter on top of
// a store.Engine.
//
// Every Adapter owns the physical keys starting with "RaStore.<appKey>.".
// Values are stored as JSON text, and changes to a key made through the
// engine, by this or any other Adapter sharing it, are published to the
// subscribers of that key.
//
//	a := adapter.New(engine, adapter.WithAppKey("admin"), adapter.WithVersion("2"))
//	defer a.Teardown()
//
//	if err := a.Setup(); err != nil {
//		return err
//	}
//	unsubscribe := a.Subscribe("theme", func(v any) { fmt.Println(v) })
//	defer unsubscribe()
//
//	_ = a.SetItem("theme", "dark")
package adapter

import (
	"encoding/json"
	"io"
	"log/slog"
	"slices"
	"strings"

	"go.hackfix.me/rastore/store"
)

const (
	// RootLabel is the first component of every physical key.
	RootLabel = "RaStore"
	// Separator joins the components of a physical key.
	Separator = "."
	// VersionKey is the logical key holding the version marker.
	VersionKey = "version"
)

// Adapter maps logical keys to physical keys under a single namespace.
// It is safe for concurrent use.
type Adapter struct {
	engine  store.Engine
	version string
	appKey  string
	logger  *slog.Logger

	prefix string // "RaStore.<appKey>"
	nsRoot string // prefix + Separator

	listener store.Listener
	subs     *subscriptions
}

// New returns an Adapter for the namespace of the given app key, and starts
// listening for changes on engine. Call Teardown to stop listening.
func New(engine store.Engine, opts ...Option) *Adapter {
	a := &Adapter{
		engine:  engine,
		version: "1",
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(a)
	}

	a.subs = newSubscriptions(a.logger)
	a.prefix = RootLabel + Separator + a.appKey
	a.nsRoot = a.prefix + Separator
	a.listener = engine.OnValueChanged(a.onValueChanged)

	return a
}

// Prefix returns the namespace prefix, i.e. "RaStore.<appKey>".
func (a *Adapter) Prefix() string {
	return a.prefix
}

// Version returns the version the adapter was created with.
func (a *Adapter) Version() string {
	return a.version
}

// AppKey returns the application key of the namespace.
func (a *Adapter) AppKey() string {
	return a.appKey
}

func (a *Adapter) physicalKey(key string) string {
	return a.nsRoot + key
}

// GetItem returns the decoded value stored under key, or defaultValue if the
// key doesn't exist. Values that aren't valid JSON are returned as the raw
// string.
func (a *Adapter) GetItem(key string, defaultValue any) (any, error) {
	raw, ok, err := a.read(a.physicalKey(key))
	if err != nil {
		return nil, err
	}
	if !ok {
		return defaultValue, nil
	}

	return tryParse(raw), nil
}

// SetItem stores the JSON encoding of value under key. A nil value removes
// the key. To store a JSON null use json.RawMessage("null").
func (a *Adapter) SetItem(key string, value any) error {
	if value == nil {
		return a.engine.Delete(a.physicalKey(key))
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return a.engine.Set(a.physicalKey(key), string(data))
}

// RemoveItem deletes key. Deleting a missing key is not an error.
func (a *Adapter) RemoveItem(key string) error {
	return a.engine.Delete(a.physicalKey(key))
}

// RemoveItems deletes every key whose name starts with keyPrefix. For example,
// "resources.posts" removes "resources.posts.list" and
// "resources.posts.detail".
func (a *Adapter) RemoveItems(keyPrefix string) error {
	return a.deleteMatching(a.physicalKey(keyPrefix))
}

// Reset deletes every key in the namespace, including the version marker.
func (a *Adapter) Reset() error {
	return a.deleteMatching(a.nsRoot)
}

// Setup compares the stored version marker with the adapter version. If they
// differ, all keys in the namespace are deleted. The marker is then set to the
// adapter version.
func (a *Adapter) Setup() error {
	versionKey := a.physicalKey(VersionKey)

	stored, ok, err := a.read(versionKey)
	if err != nil {
		return err
	}

	if ok && stored != a.version {
		a.logger.Debug("version changed, clearing namespace",
			"namespace", a.prefix, "stored_version", stored, "version", a.version)

		keys, err := a.matchingKeys(a.nsRoot)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := a.engine.Delete(k); err != nil {
				return err
			}
		}
	}

	return a.engine.Set(versionKey, a.version)
}

// Keys returns the sorted logical keys in the namespace starting with
// keyPrefix.
func (a *Adapter) Keys(keyPrefix string) ([]string, error) {
	keys, err := a.matchingKeys(a.physicalKey(keyPrefix))
	if err != nil {
		return nil, err
	}

	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, a.nsRoot)
	}
	slices.Sort(keys)

	return keys, nil
}

// Subscribe registers fn to be called with the new value whenever key
// changes, or with nil when it's deleted. The returned function removes the
// subscription; calling it more than once has no effect.
func (a *Adapter) Subscribe(key string, fn func(value any)) (unsubscribe func()) {
	id := a.subs.add(key, fn)
	return func() { a.subs.remove(id) }
}

// Teardown stops listening for engine changes. Existing subscriptions are kept
// but won't be called again.
func (a *Adapter) Teardown() {
	a.listener.Remove()
	a.subs.stop()
	a.logger.Debug("adapter torn down", "namespace", a.prefix)
}

// read returns the raw value stored under the physical key. An empty value is
// reported as missing.
func (a *Adapter) read(physKey string) (string, bool, error) {
	raw, ok, err := a.engine.GetString(physKey)
	if err != nil {
		return "", false, err
	}
	if !ok || raw == "" {
		return "", false, nil
	}
	return raw, true, nil
}

func (a *Adapter) matchingKeys(physPrefix string) ([]string, error) {
	all, err := a.engine.AllKeys()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0)
	for _, k := range all {
		if strings.HasPrefix(k, physPrefix) {
			keys = append(keys, k)
		}
	}

	return keys, nil
}

func (a *Adapter) deleteMatching(physPrefix string) error {
	keys, err := a.matchingKeys(physPrefix)
	if err != nil {
		return err
	}

	for _, k := range keys {
		if err := a.engine.Delete(k); err != nil {
			return err
		}
	}

	return nil
}

// onValueChanged is the engine listener. It ignores keys outside the
// namespace, and queues the logical key for publishing.
func (a *Adapter) onValueChanged(physKey string) {
	key, ok := strings.CutPrefix(physKey, a.nsRoot)
	if !ok {
		return
	}

	a.subs.dispatch(key, func() (any, bool) {
		// The current value is read when the event is delivered, not when the
		// mutation happened.
		raw, ok, err := a.read(physKey)
		if err != nil {
			a.logger.Warn("failed reading changed value",
				"key", physKey, "error", err)
			return nil, false
		}
		if !ok {
			return nil, true
		}
		return tryParse(raw), true
	})
}

// tryParse decodes raw as JSON, falling back to the raw string if it's not
// valid JSON.
func tryParse(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}
