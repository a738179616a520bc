package gadaiapi

import (
	"encoding/json"
	"testing"

	"github.com/gadai/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapToRule(t *testing.T) {
	name := "Gold Priority"

	tests := []struct {
		name string
		dto  PawnTermDTO
		want domain.PawnTermRule
	}{
		{
			name: "complete pawn term",
			dto: PawnTermDTO{
				UUID:         "r1",
				PtID:         "T1",
				ItemTypeID:   "gold-01",
				ItemType:     &ItemTypeDTO{UUID: "gold-01", TypeCode: "E", TypeName: "Emas"},
				LoanLimitMin: domain.NumericString("1000000.00"),
				LoanLimitMax: domain.NumericString("10000000.00"),
				RuleName:     &name,
				InterestRate: domain.NumericString("1.50"),
				AdminFee:     domain.NumericString("0.00"),
			},
			want: domain.PawnTermRule{
				ID:           "r1",
				TenantID:     "T1",
				ItemTypeID:   "gold-01",
				ItemType:     &domain.ItemTypeRef{UUID: "gold-01", TypeCode: "E", TypeName: "Emas"},
				LoanLimitMin: domain.NumericString("1000000.00"),
				LoanLimitMax: domain.NumericString("10000000.00"),
				RuleName:     &name,
				InterestRate: domain.NumericString("1.50"),
				AdminFee:     domain.NumericString("0.00"),
			},
		},
		{
			name: "empty item type relation is dropped",
			dto: PawnTermDTO{
				UUID:       "r2",
				ItemTypeID: "hp",
				ItemType:   &ItemTypeDTO{},
			},
			want: domain.PawnTermRule{
				ID:         "r2",
				ItemTypeID: "hp",
			},
		},
		{
			name: "no relation",
			dto:  PawnTermDTO{UUID: "r3", LoanLimitMax: domain.Number(0)},
			want: domain.PawnTermRule{ID: "r3", LoanLimitMax: domain.Number(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapToRule(tt.dto))
		})
	}
}

func TestMapToRules_PreservesOrder(t *testing.T) {
	rules := MapToRules([]PawnTermDTO{{UUID: "b"}, {UUID: "a"}, {UUID: "c"}})

	require.Len(t, rules, 3)
	assert.Equal(t, "b", rules[0].ID)
	assert.Equal(t, "a", rules[1].ID)
	assert.Equal(t, "c", rules[2].ID)

	assert.NotNil(t, MapToRules(nil))
}

func TestPageResponse_Decode(t *testing.T) {
	body := `{
		"data": [{
			"uuid": "r1",
			"ptId": "T1",
			"itemTypeId": "gold-01",
			"itemType": {"uuid": "gold-01", "typeCode": "E", "typeName": "Emas"},
			"loanLimitMin": "1000000.00",
			"loanLimitMax": "10000000.00",
			"ruleName": null,
			"tenorDefault": 30,
			"interestRate": "1.50",
			"adminFee": "5000.00",
			"itemCondition": "present_and_matching"
		}],
		"meta": {"page": 1, "pageSize": 10, "count": 1, "pageCount": 1, "hasPreviousPage": false, "hasNextPage": false}
	}`

	var resp PageResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	require.Len(t, resp.Data, 1)
	rule := MapToRule(resp.Data[0])
	assert.Equal(t, 1_000_000.0, rule.LoanLimitMin.OrZero())
	assert.Equal(t, 10_000_000.0, rule.LoanLimitMax.OrZero())
	assert.Equal(t, 30.0, rule.TenorDefault.OrZero())
	assert.Nil(t, rule.RuleName)
	assert.Equal(t, "Emas", rule.ItemType.TypeName)
	assert.False(t, resp.Meta.HasNextPage)
	assert.Equal(t, 1, resp.Meta.PageCount)
}

func TestErrorResponse_Text(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string message", `{"statusCode":401,"message":"Unauthorized"}`, "Unauthorized"},
		{"validation list", `{"statusCode":400,"message":["ptId must be a UUID","page must be positive"],"error":"Bad Request"}`, "ptId must be a UUID; page must be positive"},
		{"error only", `{"statusCode":500,"error":"Internal Server Error"}`, "Internal Server Error"},
		{"empty", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.want, resp.Text())
		})
	}
}
