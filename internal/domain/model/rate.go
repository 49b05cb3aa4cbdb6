package model

import (
	"encoding/json"
	"time"
)

// CachedRate is the rate table fetched for one base currency. Rates are
// expressed as units of target per one unit of base and always contain
// base -> base = 1.
type CachedRate struct {
	Rates     map[Currency]float64
	ExpiresAt time.Time
}

type cachedRateJSON struct {
	Rates     map[Currency]float64 `json:"rates"`
	ExpiredAt int64                `json:"expired_at"`
}

// MarshalJSON writes the expiry as Unix milliseconds, the layout used by
// the settings document.
func (r CachedRate) MarshalJSON() ([]byte, error) {
	rates := r.Rates
	if rates == nil {
		rates = map[Currency]float64{}
	}
	return json.Marshal(cachedRateJSON{Rates: rates, ExpiredAt: r.ExpiresAt.UnixMilli()})
}

func (r *CachedRate) UnmarshalJSON(data []byte) error {
	var raw cachedRateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Rates = raw.Rates
	r.ExpiresAt = time.UnixMilli(raw.ExpiredAt).UTC()
	return nil
}

func (r CachedRate) IsEmpty() bool {
	return len(r.Rates) == 0
}

func (r CachedRate) Clone() CachedRate {
	rates := make(map[Currency]float64, len(r.Rates))
	for k, v := range r.Rates {
		rates[k] = v
	}
	return CachedRate{Rates: rates, ExpiresAt: r.ExpiresAt}
}

// RateCache maps a base currency to its cached rate table.
type RateCache map[Currency]CachedRate

// Clone returns a deep copy safe to hand to readers.
func (c RateCache) Clone() RateCache {
	out := make(RateCache, len(c))
	for k, v := range c {
		out[k] = v.Clone()
	}
	return out
}

// Lookup returns the record for a base, or nil when absent.
func (c RateCache) Lookup(base Currency) *CachedRate {
	rec, ok := c[base]
	if !ok {
		return nil
	}
	return &rec
}

type SyncStatus struct {
	Synced  bool `json:"synced"`
	Syncing bool `json:"syncing"`
}

// SyncEvent is published to observers every time a batch merges into the
// cache.
type SyncEvent struct {
	BatchID string     `json:"batch_id"`
	Forced  bool       `json:"forced"`
	Synced  bool       `json:"synced"`
	Updated []Currency `json:"updated"`
	Failed  []Currency `json:"failed"`
	At      time.Time  `json:"at"`
}
