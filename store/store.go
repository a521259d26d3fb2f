package store

// Engine is a synchronous key-value engine that stores string values and
// notifies listeners of every mutation.
//
// Implementations must be safe for concurrent use. Listeners are invoked
// synchronously from within Set and Delete, after the mutation is visible to
// readers, with the physical key that was changed.
type Engine interface {
	// GetString returns the value stored under key. ok is false if the key
	// doesn't exist; a missing key is not an error.
	GetString(key string) (value string, ok bool, err error)
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is a no-op, but listeners are
	// still notified.
	Delete(key string) error
	// AllKeys returns every key currently stored, across all namespaces.
	AllKeys() ([]string, error)
	// OnValueChanged registers fn to be called after each Set and Delete.
	OnValueChanged(fn func(key string)) Listener
	Close() error
}

// Listener is a registered change callback.
type Listener interface {
	// Remove stops further invocations. It is safe to call more than once.
	Remove()
}
