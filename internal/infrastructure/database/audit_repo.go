package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gadai/backend/internal/domain"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MatchAuditRepository stores Mata evaluations in mata_match_audits
type MatchAuditRepository struct {
	db *gorm.DB
}

func NewMatchAuditRepository(db *gorm.DB) *MatchAuditRepository {
	return &MatchAuditRepository{db: db}
}

// RecordMatch inserts one audit row
func (r *MatchAuditRepository) RecordMatch(ctx context.Context, audit domain.MatchAudit) error {
	details, err := json.Marshal(audit.Details)
	if err != nil {
		return fmt.Errorf("encode audit details: %w", err)
	}

	createdAt := audit.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	row := MataMatchAudit{
		ID:        uuid.New(),
		TenantID:  audit.TenantID,
		ItemID:    audit.ItemID,
		SpkID:     audit.SpkID,
		IsMata:    audit.Result.IsMata,
		RuleName:  audit.Result.MataRuleName,
		ItemValue: audit.ItemValue,
		RuleCount: audit.RuleCount,
		Details:   datatypes.JSON(details),
		CreatedAt: createdAt,
	}

	return r.db.WithContext(ctx).Create(&row).Error
}

// ListRecent returns the newest audit rows first; an empty tenantID lists all tenants
func (r *MatchAuditRepository) ListRecent(ctx context.Context, tenantID string, limit int) ([]domain.MatchAudit, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit)
	if tenantID != "" {
		query = query.Where("tenant_id = ?", tenantID)
	}

	var rows []MataMatchAudit
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	audits := make([]domain.MatchAudit, 0, len(rows))
	for _, row := range rows {
		audit := domain.MatchAudit{
			TenantID:  row.TenantID,
			ItemID:    row.ItemID,
			SpkID:     row.SpkID,
			ItemValue: row.ItemValue,
			RuleCount: row.RuleCount,
			Result: domain.MatchResult{
				IsMata:       row.IsMata,
				MataRuleName: row.RuleName,
			},
			CreatedAt: row.CreatedAt,
		}
		if len(row.Details) > 0 {
			if err := json.Unmarshal(row.Details, &audit.Details); err != nil {
				return nil, fmt.Errorf("decode audit details of %s: %w", row.ID, err)
			}
		}
		audits = append(audits, audit)
	}

	return audits, nil
}
