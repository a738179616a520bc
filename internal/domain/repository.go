package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are stored as JSON; Get returns the encoded bytes.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RuleSource supplies the configured pawn-term rules in evaluation order.
// An empty tenantID returns the rules of every tenant.
type RuleSource interface {
	ListRules(ctx context.Context, tenantID string) ([]PawnTermRule, error)
}

// TenantCanonicalizer is implemented by rule sources that accept several
// spellings of a tenant id but report rules under one canonical spelling
type TenantCanonicalizer interface {
	CanonicalTenantID(tenantID string) string
}

// MatchAuditRecorder persists match evaluations
type MatchAuditRecorder interface {
	RecordMatch(ctx context.Context, audit MatchAudit) error
	ListRecent(ctx context.Context, tenantID string, limit int) ([]MatchAudit, error)
}
