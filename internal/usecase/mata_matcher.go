package usecase

import (
	"math"
	"strings"

	"github.com/gadai/backend/internal/domain"
)

// normalizedItem is a PawnItem reduced to the fields the matcher compares.
// Precedence: item type id comes from ItemTypeID, then ItemType.UUID; value
// comes from EstimatedValue when present (read strictly, so "12abc" is NaN and
// never in range), then AppraisedValue by numeric prefix (0 if unparseable).
type normalizedItem struct {
	typeID   string
	typeName string
	value    float64
}

// normalizedRule is a PawnTermRule reduced to the fields the matcher compares
type normalizedRule struct {
	tenantID    string
	typeID      string
	typeName    string
	min         float64
	max         float64
	displayName string
}

func normalizeItem(item domain.PawnItem) normalizedItem {
	n := normalizedItem{typeID: item.ItemTypeID}
	if item.ItemType != nil {
		if n.typeID == "" {
			n.typeID = item.ItemType.UUID
		}
		n.typeName = item.ItemType.TypeName
	}

	if v, ok := item.EstimatedValue.Strict(); ok {
		n.value = v
	} else {
		n.value = item.AppraisedValue.OrZero()
	}

	return n
}

func normalizeRule(rule domain.PawnTermRule) normalizedRule {
	n := normalizedRule{
		tenantID: rule.TenantID,
		typeID:   rule.ItemTypeID,
		min:      strictOr(rule.LoanLimitMin, 0),
		max:      strictOr(rule.LoanLimitMax, math.Inf(1)),
	}
	if rule.ItemType != nil {
		if n.typeID == "" {
			n.typeID = rule.ItemType.UUID
		}
		n.typeName = rule.ItemType.TypeName
	}

	switch {
	case rule.RuleName != nil && strings.TrimSpace(*rule.RuleName) != "":
		n.displayName = strings.TrimSpace(*rule.RuleName)
	case n.typeName != "":
		n.displayName = n.typeName
	default:
		n.displayName = domain.DefaultMataLabel
	}

	return n
}

// strictOr reads a rule bound by whole-string rules; unset, unparseable and
// zero bounds take the fallback (a stored maximum of 0 means "no maximum")
func strictOr(n domain.FlexNumber, fallback float64) float64 {
	v, ok := n.Strict()
	if !ok || math.IsNaN(v) || v == 0 {
		return fallback
	}
	return v
}

// typeMatches reports whether the item and rule share an item type id, or
// (independently) an item type name compared after lower-casing.
// A rule with neither id nor name never matches.
func (r normalizedRule) typeMatches(item normalizedItem) bool {
	if item.typeID != "" && r.typeID != "" && item.typeID == r.typeID {
		return true
	}
	return item.typeName != "" && r.typeName != "" && strings.ToLower(item.typeName) == strings.ToLower(r.typeName)
}

// inRange reports whether v lies in the rule's inclusive [min, max] range
func (r normalizedRule) inRange(v float64) bool {
	return v >= r.min && v <= r.max
}

// MatchMata classifies a pawned item against an ordered rule set. The first
// rule whose item type and inclusive loan-limit range both match wins.
// When tenantID is non-empty, rules owned by other tenants are skipped.
//
// MatchMata is a pure function: it never mutates its inputs, never fails and
// never panics; missing data degrades to a non-Mata result.
func MatchMata(item domain.PawnItem, rules []domain.PawnTermRule, tenantID string) domain.MatchResult {
	if len(rules) == 0 {
		return domain.MatchResult{}
	}

	normalized := normalizeItem(item)

	for _, rule := range rules {
		if tenantID != "" && rule.TenantID != tenantID {
			continue
		}

		r := normalizeRule(rule)
		if !r.typeMatches(normalized) {
			continue
		}

		if r.inRange(normalized.value) {
			return domain.MatchResult{IsMata: true, MataRuleName: r.displayName}
		}
	}

	return domain.MatchResult{}
}

// EffectiveValue returns the value MatchMata compares against rule ranges
func EffectiveValue(item domain.PawnItem) float64 {
	return normalizeItem(item).value
}
