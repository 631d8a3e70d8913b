package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Keyer builds cache keys for each memoized operation kind.
type Keyer interface {
	// MatchKey keys a name/rank match lookup.
	MatchKey(name, rank string) string
	// ChildrenKey keys one page of a taxon's children.
	ChildrenKey(id int64, offset, limit int) string
}

// Key kinds reported to cache hooks.
const (
	KindMatch    = "match"
	KindChildren = "children"
)

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// MatchKey hashes the normalized name with the rank. Names are compared
// case-insensitively with surrounding whitespace ignored, matching how the
// service treats them.
func (DefaultKeyer) MatchKey(name, rank string) string {
	return hashKey(KindMatch, strings.ToLower(strings.TrimSpace(name)), strings.ToUpper(rank))
}

// ChildrenKey encodes the page coordinates directly; they are short and
// already safe as key material.
func (DefaultKeyer) ChildrenKey(id int64, offset, limit int) string {
	return fmt.Sprintf("%s:%d:%d:%d", KindChildren, id, offset, limit)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
