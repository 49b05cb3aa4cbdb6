package service

import (
	"time"

	"world-rates-service/internal/domain/model"
)

const (
	DefaultTTL           = 24 * time.Hour
	DefaultRefreshMargin = 3 * time.Hour
)

// FreshnessPolicy decides when a cached rate table must be re-fetched and
// which expiry a fetched table receives.
type FreshnessPolicy struct {
	TTL    time.Duration
	Margin time.Duration
}

func NewFreshnessPolicy(ttl, margin time.Duration) FreshnessPolicy {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if margin < 0 {
		margin = DefaultRefreshMargin
	}
	return FreshnessPolicy{TTL: ttl, Margin: margin}
}

// NeedsRefresh is true when forcing, when the record is absent or empty,
// or when less than Margin remains before it expires.
func (p FreshnessPolicy) NeedsRefresh(record *model.CachedRate, force bool, now time.Time) bool {
	if force || record == nil || record.IsEmpty() {
		return true
	}
	return record.ExpiresAt.Sub(now) < p.Margin
}

// NextExpiry keeps the current expiry for a non-forced refresh of a record
// that has not expired yet, so topping up targets does not extend its TTL.
func (p FreshnessPolicy) NextExpiry(record *model.CachedRate, force bool, now time.Time) time.Time {
	if !force && record != nil && now.Before(record.ExpiresAt) {
		return record.ExpiresAt
	}
	return now.Add(p.TTL)
}

func (p FreshnessPolicy) IsFresh(record *model.CachedRate, now time.Time) bool {
	return record != nil && !record.IsEmpty() && now.Before(record.ExpiresAt)
}
