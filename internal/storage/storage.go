package storage

import "fmt"

// Keys used by the receipt builder
const (
	KeyLanguage       = "language"
	KeyDarkMode       = "darkMode"
	KeyCurrency       = "currency"
	KeyReceiptHistory = "receiptHistory"
	KeySavedReceipts  = "savedReceipts"
)

// Store defines a synchronous string-keyed, string-valued store
type Store interface {
	// Get returns the value for key. ok is false when the key is not set.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	// Close releases the underlying resources
	Close() error
}

// Backend names accepted by Open
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Open creates a Store for the named backend. path is ignored for the memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendBolt:
		return NewBoltStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}
