package database

import (
	"context"
	"fmt"

	"github.com/gadai/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PawnTermRepository reads pawn-term rules straight from the back-office database
type PawnTermRepository struct {
	db *gorm.DB
}

func NewPawnTermRepository(db *gorm.DB) *PawnTermRepository {
	return &PawnTermRepository{db: db}
}

// CanonicalTenantID returns the lower-case hyphenated form of a UUID tenant id,
// the spelling ListRules reports rules under. Other ids are returned unchanged.
func (r *PawnTermRepository) CanonicalTenantID(tenantID string) string {
	ptID, err := uuid.Parse(tenantID)
	if err != nil {
		return tenantID
	}
	return ptID.String()
}

// ListRules returns the live rules of a tenant (every tenant when tenantID is
// empty) in creation order, which is the order they are evaluated in
func (r *PawnTermRepository) ListRules(ctx context.Context, tenantID string) ([]domain.PawnTermRule, error) {
	query := r.db.WithContext(ctx).
		Preload("ItemType").
		Order("created_at ASC").
		Order("uuid ASC")

	if tenantID != "" {
		ptID, err := uuid.Parse(tenantID)
		if err != nil {
			return nil, fmt.Errorf("%w: ptId %q is not a UUID", domain.ErrInvalidRequest, tenantID)
		}
		query = query.Where("pt_id = ?", ptID)
	}

	var records []PawnTermRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: query pawn_terms: %v", domain.ErrRuleSourceFailure, err)
	}

	rules := make([]domain.PawnTermRule, 0, len(records))
	for _, rec := range records {
		rules = append(rules, toDomainRule(rec))
	}
	return rules, nil
}

func toDomainRule(rec PawnTermRecord) domain.PawnTermRule {
	rule := domain.PawnTermRule{
		ID:           rec.UUID.String(),
		TenantID:     rec.PtID.String(),
		ItemTypeID:   rec.ItemTypeID.String(),
		LoanLimitMin: domain.NumericString(rec.LoanLimitMin),
		LoanLimitMax: domain.NumericString(rec.LoanLimitMax),
		RuleName:     rec.RuleName,
		InterestRate: domain.NumericString(rec.InterestRate),
		AdminFee:     domain.NumericString(rec.AdminFee),
	}
	if rec.TenorDefault != nil {
		rule.TenorDefault = domain.Number(float64(*rec.TenorDefault))
	}
	// soft-deleted item types are not preloaded
	if rec.ItemType != nil {
		rule.ItemType = &domain.ItemTypeRef{
			UUID:     rec.ItemType.UUID.String(),
			TypeCode: rec.ItemType.TypeCode,
			TypeName: rec.ItemType.TypeName,
		}
	}
	return rule
}
