package cache

// ScopedKeyer wraps a Keyer with a prefix for session isolation.
// Sessions that share a Redis backend each get their own key space:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "session:"+id+":")
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

// Prefix returns the prefix applied to every key.
func (k *ScopedKeyer) Prefix() string { return k.prefix }

// MatchKey generates a prefixed key for a name/rank match.
func (k *ScopedKeyer) MatchKey(name, rank string) string {
	return k.prefix + k.inner.MatchKey(name, rank)
}

// ChildrenKey generates a prefixed key for a children page.
func (k *ScopedKeyer) ChildrenKey(id int64, offset, limit int) string {
	return k.prefix + k.inner.ChildrenKey(id, offset, limit)
}
