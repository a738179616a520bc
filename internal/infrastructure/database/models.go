package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemTypeRecord is a row of item_types
type ItemTypeRecord struct {
	UUID      uuid.UUID `gorm:"column:uuid;type:uuid;primaryKey"`
	TypeCode  string    `gorm:"column:type_code;size:8;index"`
	TypeName  string    `gorm:"column:type_name"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ItemTypeRecord) TableName() string { return "item_types" }

// PawnTermRecord is a row of pawn_terms. Decimal columns are kept as text.
type PawnTermRecord struct {
	UUID          uuid.UUID       `gorm:"column:uuid;type:uuid;primaryKey"`
	PtID          uuid.UUID       `gorm:"column:pt_id;type:uuid;index;uniqueIndex:uq_pawn_terms_pt_item_type"`
	ItemTypeID    uuid.UUID       `gorm:"column:item_type_id;type:uuid;index;uniqueIndex:uq_pawn_terms_pt_item_type"`
	ItemType      *ItemTypeRecord `gorm:"foreignKey:ItemTypeID;references:UUID"`
	LoanLimitMin  string          `gorm:"column:loan_limit_min;type:decimal(15,2);not null"`
	LoanLimitMax  string          `gorm:"column:loan_limit_max;type:decimal(15,2);not null"`
	RuleName      *string         `gorm:"column:rule_name;size:255"`
	TenorDefault  *int            `gorm:"column:tenor_default"`
	InterestRate  string          `gorm:"column:interest_rate;type:decimal(5,2);not null"`
	AdminFee      string          `gorm:"column:admin_fee;type:decimal(15,2);default:0"`
	ItemCondition string          `gorm:"column:item_condition;size:64;default:present_and_matching"`
	CreatedAt     time.Time       `gorm:"index"`
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

func (PawnTermRecord) TableName() string { return "pawn_terms" }

// BeforeCreate assigns a UUID when none is set
func (r *PawnTermRecord) BeforeCreate(tx *gorm.DB) error {
	if r.UUID == uuid.Nil {
		r.UUID = uuid.New()
	}
	return nil
}

// MataMatchAudit is one recorded Mata evaluation
type MataMatchAudit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID  string    `gorm:"column:tenant_id;index"`
	ItemID    string    `gorm:"column:item_id;index"`
	SpkID     string    `gorm:"column:spk_id"`
	IsMata    bool      `gorm:"column:is_mata;index"`
	RuleName  string    `gorm:"column:rule_name"`
	ItemValue float64   `gorm:"column:item_value"`
	RuleCount int       `gorm:"column:rule_count"`
	Details   datatypes.JSON
	CreatedAt time.Time `gorm:"index"`
}

func (MataMatchAudit) TableName() string { return "mata_match_audits" }
