package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The HTTP API uses it to give every workspace its own saved layout while
// sharing one redis or mongo deployment.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "workspace:team-a:")
//	keyer.LayoutKey("unified-chart-layout") // "workspace:team-a:layout:unified-chart-layout"
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// LayoutKey generates a prefixed key for a saved layout.
func (k *ScopedKeyer) LayoutKey(name string) string {
	return k.prefix + k.inner.LayoutKey(name)
}

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(datasetHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(datasetHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
