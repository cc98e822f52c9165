package cache

// ScopedKeyer wraps a Keyer with a prefix so several databases or users can
// share one cache backend without key collisions.
//
//	dbKeyer := NewScopedKeyer(NewDefaultKeyer(), "db:alice:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for store response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// NetlistKey generates a prefixed key for netlist caching.
func (k *ScopedKeyer) NetlistKey(docsHash string) string {
	return k.prefix + k.inner.NetlistKey(docsHash)
}

// SpiceKey generates a prefixed key for generated-deck caching.
func (k *ScopedKeyer) SpiceKey(docsHash string, opts SpiceKeyOpts) string {
	return k.prefix + k.inner.SpiceKey(docsHash, opts)
}
