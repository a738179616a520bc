package gadaiapi

import (
	"encoding/json"
	"strings"

	"github.com/gadai/backend/internal/domain"
)

// ItemTypeDTO is the item type relation as returned by the API
type ItemTypeDTO struct {
	UUID     string `json:"uuid"`
	TypeCode string `json:"typeCode"`
	TypeName string `json:"typeName"`
}

// PawnTermDTO is one pawn term as returned by GET /v1/pawn-terms
type PawnTermDTO struct {
	UUID          string            `json:"uuid"`
	PtID          string            `json:"ptId"`
	ItemTypeID    string            `json:"itemTypeId"`
	ItemType      *ItemTypeDTO      `json:"itemType"`
	LoanLimitMin  domain.FlexNumber `json:"loanLimitMin"`
	LoanLimitMax  domain.FlexNumber `json:"loanLimitMax"`
	RuleName      *string           `json:"ruleName"`
	TenorDefault  domain.FlexNumber `json:"tenorDefault"`
	InterestRate  domain.FlexNumber `json:"interestRate"`
	AdminFee      domain.FlexNumber `json:"adminFee"`
	ItemCondition string            `json:"itemCondition"`
}

// PageMeta is the pagination block of list responses
type PageMeta struct {
	Page            int  `json:"page"`
	PageSize        int  `json:"pageSize"`
	Count           int  `json:"count"`
	PageCount       int  `json:"pageCount"`
	HasPreviousPage bool `json:"hasPreviousPage"`
	HasNextPage     bool `json:"hasNextPage"`
}

// PageResponse is a page of pawn terms
type PageResponse struct {
	Data []PawnTermDTO `json:"data"`
	Meta PageMeta      `json:"meta"`
}

// ErrorResponse is the API error body. Message is either a string or a list
// of validation messages.
type ErrorResponse struct {
	StatusCode int             `json:"statusCode"`
	Message    json.RawMessage `json:"message"`
	Error      string          `json:"error"`
}

// Text returns a single-line description of the error
func (e ErrorResponse) Text() string {
	if len(e.Message) > 0 {
		var single string
		if err := json.Unmarshal(e.Message, &single); err == nil && single != "" {
			return single
		}
		var list []string
		if err := json.Unmarshal(e.Message, &list); err == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return e.Error
}

// MapToRule converts an API pawn term to a domain rule
func MapToRule(dto PawnTermDTO) domain.PawnTermRule {
	rule := domain.PawnTermRule{
		ID:           dto.UUID,
		TenantID:     dto.PtID,
		ItemTypeID:   dto.ItemTypeID,
		LoanLimitMin: dto.LoanLimitMin,
		LoanLimitMax: dto.LoanLimitMax,
		RuleName:     dto.RuleName,
		TenorDefault: dto.TenorDefault,
		InterestRate: dto.InterestRate,
		AdminFee:     dto.AdminFee,
	}

	if dto.ItemType != nil && (dto.ItemType.UUID != "" || dto.ItemType.TypeName != "" || dto.ItemType.TypeCode != "") {
		rule.ItemType = &domain.ItemTypeRef{
			UUID:     dto.ItemType.UUID,
			TypeCode: dto.ItemType.TypeCode,
			TypeName: dto.ItemType.TypeName,
		}
	}

	return rule
}

// MapToRules converts a page of API pawn terms, preserving order
func MapToRules(dtos []PawnTermDTO) []domain.PawnTermRule {
	rules := make([]domain.PawnTermRule, 0, len(dtos))
	for _, dto := range dtos {
		rules = append(rules, MapToRule(dto))
	}
	return rules
}
