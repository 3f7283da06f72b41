package driven

// ConfigStore provides persistent key-value configuration.
// Keys use dot notation for nesting (e.g. "llm.provider").
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	GetInt(key string) int

	// GetFloat retrieves a floating-point configuration value.
	GetFloat(key string) float64

	// Set stores a configuration value and persists immediately.
	Set(key string, value any) error

	// Load reads configuration from the backing store.
	Load() error

	// Path returns the location of the backing store, for display.
	Path() string
}
