package adapter

import "log/slog"

// Option is a function that allows configuring the adapter.
type Option func(*Adapter)

// WithVersion sets the version compared against the stored version marker by
// Setup. The default is "1".
func WithVersion(version string) Option {
	return func(a *Adapter) {
		a.version = version
	}
}

// WithAppKey sets the application key that namespaces all keys.
func WithAppKey(appKey string) Option {
	return func(a *Adapter) {
		a.appKey = appKey
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}
