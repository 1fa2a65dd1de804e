package typeutil

// Config tunes a Runtime.
type Config struct {
	// ResolveCacheSize bounds the method resolution cache.
	ResolveCacheSize int
	// StrictLookups turns unresolved names in the routing functions into
	// errors instead of a logged nil result.
	StrictLookups bool
	// SiteCacheWays is how many receiver types a PropertyAccessor caches
	// before it goes megamorphic.
	SiteCacheWays int
	// LogLevel is applied to the shared logger when the Runtime is built.
	// Empty leaves the logger untouched.
	LogLevel string
}

// DefaultConfig is used by Default and by New for zero fields.
var DefaultConfig = Config{
	ResolveCacheSize: 1024,
	StrictLookups:    false,
	SiteCacheWays:    4,
	LogLevel:         "",
}

func (c Config) withDefaults() Config {
	if c.ResolveCacheSize <= 0 {
		c.ResolveCacheSize = DefaultConfig.ResolveCacheSize
	}
	if c.SiteCacheWays <= 0 {
		c.SiteCacheWays = DefaultConfig.SiteCacheWays
	}
	return c
}
