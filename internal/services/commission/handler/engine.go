package handler

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cattleguard-system/internal/database/models"
)

func parseDecimal(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func parseStrictDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

var oneHundred = decimal.NewFromInt(100)

// loadSettingsSnapshot reads all active settings once, ordered by level
// ascending. The snapshot is immutable for the duration of one approval;
// a concurrent settings change never affects an approval already running.
func loadSettingsSnapshot(tx *gorm.DB) ([]models.CommissionSetting, error) {
	var settings []models.CommissionSetting
	if err := tx.Where("is_active = ?", true).Order("level asc").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// agentLookup resolves an agent by id. The second return is false when the
// agent does not exist.
type agentLookup func(id int64) (*models.Agent, bool, error)

// walkAgentChain walks upward from the selling agent, collecting at most
// maxLevels agents. Visited ids are tracked so a malformed hierarchy (an
// agent that is its own ancestor) fails fast instead of walking in circles;
// the level bound alone is a safety net, not cycle handling.
func walkAgentChain(lookup agentLookup, sellerID int64, maxLevels int) ([]models.Agent, error) {
	chain := make([]models.Agent, 0, maxLevels)
	visited := make(map[int64]bool, maxLevels)

	currentID := &sellerID
	for currentID != nil && len(chain) < maxLevels {
		if visited[*currentID] {
			return nil, fmt.Errorf("agent hierarchy cycle detected at agent %d", *currentID)
		}
		visited[*currentID] = true

		agent, found, err := lookup(*currentID)
		if err != nil {
			return nil, err
		}
		if !found {
			// Dangling parent reference: treat the chain as exhausted.
			break
		}

		chain = append(chain, *agent)
		currentID = agent.ParentID
	}

	return chain, nil
}

func loadAgentChain(tx *gorm.DB, sellerID int64, maxLevels int) ([]models.Agent, error) {
	return walkAgentChain(func(id int64) (*models.Agent, bool, error) {
		var agent models.Agent
		if err := tx.First(&agent, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, false, nil
			}
			return nil, false, err
		}
		return &agent, true, nil
	}, sellerID, maxLevels)
}

// premiumEligible checks the premium against the setting's inclusive range.
// Unset bounds are unbounded.
func premiumEligible(premium decimal.Decimal, setting models.CommissionSetting) bool {
	if setting.MinPremium != nil && premium.LessThan(parseDecimal(*setting.MinPremium)) {
		return false
	}
	if setting.MaxPremium != nil && premium.GreaterThan(parseDecimal(*setting.MaxPremium)) {
		return false
	}
	return true
}

// buildCommissionPlan computes the pending commission records for one
// approved policy. Level 1 is the selling agent; each further level is one
// parent hop up. A level with no configured setting, or a premium outside
// the setting's range, produces no record but does not stop the walk.
//
// Amounts are premium * percent / 100 rounded to 2 decimals, half away from
// zero.
func buildCommissionPlan(policyID int64, premium decimal.Decimal, chain []models.Agent, settings []models.CommissionSetting) []models.Commission {
	byLevel := make(map[int32]models.CommissionSetting, len(settings))
	for _, s := range settings {
		byLevel[s.Level] = s
	}

	var plan []models.Commission
	for i := 0; i < len(settings) && i < len(chain); i++ {
		level := int32(i + 1)
		agent := chain[i]

		setting, ok := byLevel[level]
		if !ok {
			continue
		}
		if !premiumEligible(premium, setting) {
			continue
		}

		percent := parseDecimal(setting.Percent)
		if level == 1 && agent.CommissionPercent != nil {
			percent = parseDecimal(*agent.CommissionPercent)
		}

		amount := premium.Mul(percent).Div(oneHundred).Round(2)
		plan = append(plan, models.Commission{
			PolicyID: policyID,
			AgentID:  agent.ID,
			Level:    level,
			Percent:  percent.StringFixed(2),
			Amount:   amount.StringFixed(2),
			Status:   models.CommissionStatusPending,
		})
	}

	return plan
}

// CreateForPolicy runs the commission engine for an approved policy inside
// the caller's transaction. An engine error must roll back the whole
// approval, so everything here returns rather than logs.
func CreateForPolicy(tx *gorm.DB, policy *models.Policy) ([]models.Commission, error) {
	if policy.AgentID == nil {
		return nil, nil
	}

	settings, err := loadSettingsSnapshot(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to load commission settings: %w", err)
	}
	if len(settings) == 0 {
		return nil, nil
	}

	chain, err := loadAgentChain(tx, *policy.AgentID, len(settings))
	if err != nil {
		return nil, err
	}

	plan := buildCommissionPlan(policy.ID, parseDecimal(policy.PremiumAmount), chain, settings)
	if len(plan) == 0 {
		return nil, nil
	}

	if err := tx.Create(&plan).Error; err != nil {
		return nil, fmt.Errorf("failed to create commission records: %w", err)
	}
	return plan, nil
}
