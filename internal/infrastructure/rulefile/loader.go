// Package rulefile reads pawn-term rules from a YAML file.
//
// The file uses the same field names as the back-office API:
//
//	rules:
//	  - uuid: r1
//	    ptId: T1
//	    itemTypeId: gold-01
//	    itemType: {typeName: Emas}
//	    loanLimitMin: "1000000.00"
//	    loanLimitMax: 10000000
//	    ruleName: Gold Priority
package rulefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"

	"github.com/gadai/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

type yamlItemType struct {
	UUID     string `yaml:"uuid"`
	TypeCode string `yaml:"typeCode"`
	TypeName string `yaml:"typeName"`
}

// yamlRule keeps numeric fields untyped: YAML authors write both 1000000 and "1000000.00"
type yamlRule struct {
	UUID         string        `yaml:"uuid"`
	PtID         string        `yaml:"ptId"`
	ItemTypeID   string        `yaml:"itemTypeId"`
	ItemType     *yamlItemType `yaml:"itemType"`
	LoanLimitMin interface{}   `yaml:"loanLimitMin"`
	LoanLimitMax interface{}   `yaml:"loanLimitMax"`
	RuleName     *string       `yaml:"ruleName"`
	TenorDefault interface{}   `yaml:"tenorDefault"`
	InterestRate interface{}   `yaml:"interestRate"`
	AdminFee     interface{}   `yaml:"adminFee"`
}

type yamlRulesFile struct {
	Rules []yamlRule `yaml:"rules"`
}

// Loader serves rules from a YAML file. The file is re-read on every call so
// edits take effect once the service's rule cache expires.
type Loader struct {
	path string
}

// NewLoader creates a loader for the file at path
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the file the loader reads
func (l *Loader) Path() string {
	return l.path
}

// ListRules returns the rules of a tenant in file order; all rules when tenantID is empty
func (l *Loader) ListRules(ctx context.Context, tenantID string) ([]domain.PawnTermRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rules, err := l.Load()
	if err != nil {
		return nil, err
	}
	if tenantID == "" {
		return rules, nil
	}

	filtered := make([]domain.PawnTermRule, 0, len(rules))
	for _, rule := range rules {
		if rule.TenantID == tenantID {
			filtered = append(filtered, rule)
		}
	}
	return filtered, nil
}

// Load reads and parses the whole file
func (l *Loader) Load() ([]domain.PawnTermRule, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: rule file %s not found", domain.ErrRuleSourceUnavailable, l.path)
		}
		return nil, fmt.Errorf("%w: failed to read file %s: %v", domain.ErrRuleSourceUnavailable, l.path, err)
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrRuleSourceFailure, l.path, err)
	}
	return rules, nil
}

// Parse decodes a YAML rules document
func Parse(data []byte) ([]domain.PawnTermRule, error) {
	var file yamlRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	rules := make([]domain.PawnTermRule, 0, len(file.Rules))
	for _, yr := range file.Rules {
		rules = append(rules, convertYAMLRule(yr))
	}
	return rules, nil
}

func convertYAMLRule(yr yamlRule) domain.PawnTermRule {
	rule := domain.PawnTermRule{
		ID:           yr.UUID,
		TenantID:     yr.PtID,
		ItemTypeID:   yr.ItemTypeID,
		LoanLimitMin: toNumber(yr.LoanLimitMin),
		LoanLimitMax: toNumber(yr.LoanLimitMax),
		RuleName:     yr.RuleName,
		TenorDefault: toNumber(yr.TenorDefault),
		InterestRate: toNumber(yr.InterestRate),
		AdminFee:     toNumber(yr.AdminFee),
	}
	if yr.ItemType != nil {
		rule.ItemType = &domain.ItemTypeRef{
			UUID:     yr.ItemType.UUID,
			TypeCode: yr.ItemType.TypeCode,
			TypeName: yr.ItemType.TypeName,
		}
	}
	return rule
}

// toNumber converts a decoded YAML scalar the same way a JSON field is decoded
func toNumber(v interface{}) domain.FlexNumber {
	switch n := v.(type) {
	case nil:
		return domain.FlexNumber{}
	case int:
		return domain.Number(float64(n))
	case int64:
		return domain.Number(float64(n))
	case uint64:
		return domain.Number(float64(n))
	case float64:
		return domain.Number(n)
	case string:
		return domain.NumericString(n)
	default:
		return domain.Number(math.NaN())
	}
}
