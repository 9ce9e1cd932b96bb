package vessel

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
)

// KeySeparator joins key components.
const KeySeparator = "|"

// KeyTier is the rule that produced a record key.
type KeyTier int

const (
	KeyByID       KeyTier = iota + 1 // IMO + loading start + commodity
	KeyByName                        // vessel name + loading start + commodity
	KeyByFallback                    // timestamp + random suffix; not idempotent
)

func (t KeyTier) String() string {
	switch t {
	case KeyByID:
		return "id"
	case KeyByName:
		return "name"
	case KeyByFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Key is a record identity for upsert.
type Key struct {
	Value string
	Tier  KeyTier
}

// Degraded reports whether re-importing the same row would produce a
// different key.
func (k Key) Degraded() bool {
	return k.Tier == KeyByFallback
}

// Keyer derives record keys. Now and Rand default to the wall clock and
// crypto/rand; tests replace them.
type Keyer struct {
	Now  func() time.Time
	Rand io.Reader
}

// Derive picks the first tier whose components are all present. commodity
// should already be normalized so spelling variants share a key.
func (k Keyer) Derive(id, name, date, commodity string) Key {
	id, name = strings.TrimSpace(id), strings.TrimSpace(name)
	date, commodity = strings.TrimSpace(date), strings.TrimSpace(commodity)

	if date != "" && commodity != "" {
		if id != "" {
			return Key{Value: strings.Join([]string{id, date, commodity}, KeySeparator), Tier: KeyByID}
		}
		if name != "" {
			return Key{Value: strings.Join([]string{name, date, commodity}, KeySeparator), Tier: KeyByName}
		}
	}
	return Key{Value: k.fallback(), Tier: KeyByFallback}
}

func (k Keyer) fallback() string {
	now := time.Now
	if k.Now != nil {
		now = k.Now
	}
	src := k.Rand
	if src == nil {
		src = rand.Reader
	}

	suffix := make([]byte, 4)
	if _, err := io.ReadFull(src, suffix); err != nil {
		id := uuid.New()
		copy(suffix, id[:])
	}
	return fmt.Sprintf("%d-%s", now().UnixMilli(), hex.EncodeToString(suffix))
}
