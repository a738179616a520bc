package domain

import "time"

// DefaultMataLabel is the display name used when a matched rule has neither
// a rule name nor an item type name
const DefaultMataLabel = "Mata"

// ItemTypeRef is the item type relation embedded in items and rules
type ItemTypeRef struct {
	UUID     string `json:"uuid,omitempty"`
	TypeCode string `json:"typeCode,omitempty"` // e.g. "H" for Handphone
	TypeName string `json:"typeName,omitempty"`
}

// PawnItem is a pawned item as recorded on an SPK
type PawnItem struct {
	ID             string       `json:"id,omitempty"`
	SpkID          string       `json:"spkId,omitempty"`
	Description    string       `json:"description,omitempty"`
	ItemTypeID     string       `json:"itemTypeId,omitempty"`
	ItemType       *ItemTypeRef `json:"itemType,omitempty"`
	EstimatedValue FlexNumber   `json:"estimatedValue"`
	AppraisedValue FlexNumber   `json:"appraisedValue"`
}

// PawnTermRule is an administrator-configured "Mata" rule: an item type and an
// inclusive loan-limit range, scoped to one PT (tenant company)
type PawnTermRule struct {
	ID           string       `json:"uuid,omitempty"`
	TenantID     string       `json:"ptId,omitempty"`
	ItemTypeID   string       `json:"itemTypeId,omitempty"`
	ItemType     *ItemTypeRef `json:"itemType,omitempty"`
	LoanLimitMin FlexNumber   `json:"loanLimitMin"`
	LoanLimitMax FlexNumber   `json:"loanLimitMax"`
	RuleName     *string      `json:"ruleName,omitempty"`
	TenorDefault FlexNumber   `json:"tenorDefault"`
	InterestRate FlexNumber   `json:"interestRate"`
	AdminFee     FlexNumber   `json:"adminFee"`
}

// MatchResult is the outcome of classifying one item against a rule set.
// MataRuleName is empty unless IsMata is true.
type MatchResult struct {
	IsMata       bool   `json:"isMata"`
	MataRuleName string `json:"mataRuleName,omitempty"`
}

// ClassifiedItem pairs an item with its match result
type ClassifiedItem struct {
	Item   PawnItem    `json:"item"`
	Result MatchResult `json:"result"`
}

// BatchClassification is the result of classifying a selection of items,
// e.g. the candidates for an auction batch
type BatchClassification struct {
	Items     []ClassifiedItem `json:"items"`
	MataCount int              `json:"mataCount"`
	Total     int              `json:"total"`
}

// MatchAudit records one evaluation for later review
type MatchAudit struct {
	TenantID  string                 `json:"ptId"`
	ItemID    string                 `json:"itemId"`
	SpkID     string                 `json:"spkId,omitempty"`
	ItemValue float64                `json:"itemValue"`
	RuleCount int                    `json:"ruleCount"`
	Result    MatchResult            `json:"result"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// MatchRequest asks for one item to be classified. When Rules is nil the
// configured rule source is used; a non-nil (even empty) Rules is used verbatim.
type MatchRequest struct {
	Item     PawnItem       `json:"item"`
	TenantID string         `json:"ptId,omitempty"`
	Rules    []PawnTermRule `json:"rules,omitempty"`
}

// ClassifyRequest asks for a selection of items to be classified against one rule set
type ClassifyRequest struct {
	Items    []PawnItem     `json:"items"`
	TenantID string         `json:"ptId,omitempty"`
	Rules    []PawnTermRule `json:"rules,omitempty"`
}
