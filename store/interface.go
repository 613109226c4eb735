package store

// Store is the durable key-value store the cart engine persists into.
// Get reports ok=false for a key that was never written.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error

	Close() error
}
