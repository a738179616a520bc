package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gadai/backend/internal/domain"
	"github.com/gadai/backend/internal/logging"
	"github.com/rs/zerolog"
)

const (
	defaultRuleCacheTTL = 5 * time.Minute
	defaultAuditLimit   = 50
	maxAuditLimit       = 500
)

// MataServiceConfig holds configuration for the Mata service
type MataServiceConfig struct {
	RuleCacheTTL       time.Duration
	EnableDebugLogging bool
}

// MataService classifies pawned items against the configured pawn-term rules.
// Flow: resolve rules (caller supplied -> cache -> rule source) -> match -> audit
type MataService struct {
	cache              domain.CacheRepository
	source             domain.RuleSource
	audit              domain.MatchAuditRecorder
	cacheTTL           time.Duration
	enableDebugLogging bool
	logger             zerolog.Logger
}

// NewMataService creates a new Mata service. cache and audit may be nil.
func NewMataService(
	cache domain.CacheRepository,
	source domain.RuleSource,
	audit domain.MatchAuditRecorder,
	config MataServiceConfig,
) *MataService {
	cacheTTL := config.RuleCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultRuleCacheTTL
	}

	return &MataService{
		cache:              cache,
		source:             source,
		audit:              audit,
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
		logger:             logging.GetLogger("mata"),
	}
}

// AuditEnabled reports whether evaluations are being recorded
func (s *MataService) AuditEnabled() bool {
	return s.audit != nil
}

// Match classifies a single item
func (s *MataService) Match(ctx context.Context, request *domain.MatchRequest) (domain.MatchResult, error) {
	if request == nil {
		return domain.MatchResult{}, domain.ErrInvalidRequest
	}

	rules, tenantID, err := s.resolveRules(ctx, request.TenantID, request.Rules)
	if err != nil {
		return domain.MatchResult{}, err
	}

	result := MatchMata(request.Item, rules, tenantID)
	s.logDecision(tenantID, request.Item, len(rules), result)
	s.recordAudit(ctx, tenantID, request.Item, len(rules), result)

	return result, nil
}

// Classify classifies every item of a selection against one rule set, in input order
func (s *MataService) Classify(ctx context.Context, request *domain.ClassifyRequest) (*domain.BatchClassification, error) {
	if request == nil || len(request.Items) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	rules, tenantID, err := s.resolveRules(ctx, request.TenantID, request.Rules)
	if err != nil {
		return nil, err
	}

	batch := &domain.BatchClassification{
		Items: make([]domain.ClassifiedItem, 0, len(request.Items)),
		Total: len(request.Items),
	}

	for _, item := range request.Items {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		result := MatchMata(item, rules, tenantID)
		if result.IsMata {
			batch.MataCount++
		}
		batch.Items = append(batch.Items, domain.ClassifiedItem{Item: item, Result: result})

		s.logDecision(tenantID, item, len(rules), result)
		s.recordAudit(ctx, tenantID, item, len(rules), result)
	}

	s.logger.Info().
		Str("ptId", tenantID).
		Int("total", batch.Total).
		Int("mataCount", batch.MataCount).
		Msg("classified item selection")

	return batch, nil
}

// Rules returns the rule set for a tenant, served from cache when possible
func (s *MataService) Rules(ctx context.Context, tenantID string) ([]domain.PawnTermRule, error) {
	tenantID = s.canonicalTenantID(tenantID)
	key := ruleCacheKey(tenantID)

	if rules, err := s.getFromCache(ctx, key); err == nil {
		return rules, nil
	}

	if s.source == nil {
		return nil, fmt.Errorf("%w: no rule source configured", domain.ErrRuleSourceUnavailable)
	}

	rules, err := s.source.ListRules(ctx, tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) ||
			errors.Is(err, domain.ErrRuleSourceUnavailable) ||
			errors.Is(err, domain.ErrRuleSourceFailure) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrRuleSourceFailure, err)
	}

	if err := s.setInCache(ctx, key, rules); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache rules")
	}

	s.logger.Debug().Str("ptId", tenantID).Int("count", len(rules)).Msg("loaded rules from source")
	return rules, nil
}

// InvalidateRules drops the cached rule set of a tenant
func (s *MataService) InvalidateRules(ctx context.Context, tenantID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, ruleCacheKey(s.canonicalTenantID(tenantID)))
}

// RecentAudits returns the latest recorded evaluations for a tenant
func (s *MataService) RecentAudits(ctx context.Context, tenantID string, limit int) ([]domain.MatchAudit, error) {
	if s.audit == nil {
		return nil, domain.ErrAuditDisabled
	}

	switch {
	case limit <= 0:
		limit = defaultAuditLimit
	case limit > maxAuditLimit:
		limit = maxAuditLimit
	}

	return s.audit.ListRecent(ctx, s.canonicalTenantID(tenantID), limit)
}

// resolveRules returns the rule set to evaluate and the tenant id to filter it
// by. Rules from the source are filtered by the source's canonical tenant id;
// caller-supplied rules by the id as given.
func (s *MataService) resolveRules(ctx context.Context, tenantID string, supplied []domain.PawnTermRule) ([]domain.PawnTermRule, string, error) {
	tenantID = strings.TrimSpace(tenantID)
	if supplied != nil {
		return supplied, tenantID, nil
	}

	tenantID = s.canonicalTenantID(tenantID)
	rules, err := s.Rules(ctx, tenantID)
	return rules, tenantID, err
}

// canonicalTenantID trims the tenant id and, when the rule source has a
// canonical spelling for it, rewrites it to that spelling
func (s *MataService) canonicalTenantID(tenantID string) string {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return tenantID
	}
	if c, ok := s.source.(domain.TenantCanonicalizer); ok {
		return c.CanonicalTenantID(tenantID)
	}
	return tenantID
}

// ruleCacheKey creates the cache key of a tenant's rule set.
// Format: "mata:rules:{ptId}", or "mata:rules:all" without a tenant
func ruleCacheKey(tenantID string) string {
	if tenantID == "" {
		tenantID = "all"
	}
	return "mata:rules:" + tenantID
}

// getFromCache retrieves a rule set from cache
func (s *MataService) getFromCache(ctx context.Context, key string) ([]domain.PawnTermRule, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var rules []domain.PawnTermRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, domain.ErrCacheMiss
	}
	if rules == nil {
		rules = []domain.PawnTermRule{}
	}

	return rules, nil
}

// setInCache stores a rule set in cache
func (s *MataService) setInCache(ctx context.Context, key string, rules []domain.PawnTermRule) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Set(ctx, key, rules, s.cacheTTL)
}

func (s *MataService) logDecision(tenantID string, item domain.PawnItem, ruleCount int, result domain.MatchResult) {
	if !s.enableDebugLogging {
		return
	}
	s.logger.Debug().
		Str("ptId", tenantID).
		Str("itemId", item.ID).
		Float64("value", EffectiveValue(item)).
		Int("rules", ruleCount).
		Bool("isMata", result.IsMata).
		Str("rule", result.MataRuleName).
		Msg("evaluated item")
}

// recordAudit persists the evaluation; failures are logged, never returned
func (s *MataService) recordAudit(ctx context.Context, tenantID string, item domain.PawnItem, ruleCount int, result domain.MatchResult) {
	if s.audit == nil {
		return
	}

	normalized := normalizeItem(item)
	if math.IsNaN(normalized.value) || math.IsInf(normalized.value, 0) {
		normalized.value = 0
	}
	audit := domain.MatchAudit{
		TenantID:  tenantID,
		ItemID:    item.ID,
		SpkID:     item.SpkID,
		ItemValue: normalized.value,
		RuleCount: ruleCount,
		Result:    result,
		Details: map[string]interface{}{
			"itemTypeId":     normalized.typeID,
			"itemTypeName":   normalized.typeName,
			"estimatedValue": item.EstimatedValue,
			"appraisedValue": item.AppraisedValue,
		},
		CreatedAt: time.Now(),
	}

	if err := s.audit.RecordMatch(ctx, audit); err != nil {
		s.logger.Warn().Err(err).Str("itemId", item.ID).Msg("failed to record match audit")
	}
}
