package handler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cattleguard-system/internal/database/models"
)

func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

func setting(level int32, percent string) models.CommissionSetting {
	return models.CommissionSetting{Level: level, Percent: percent, IsActive: true}
}

func TestBuildCommissionPlan_ThreeLevelsDepthTwo(t *testing.T) {
	// Premium 1000, settings 10%/5%/2%, hierarchy depth 2: expect exactly
	// two records, no level-3 record.
	chain := []models.Agent{
		{ID: 1, ParentID: int64Ptr(2)},
		{ID: 2},
	}
	settings := []models.CommissionSetting{
		setting(1, "10.00"),
		setting(2, "5.00"),
		setting(3, "2.00"),
	}

	plan := buildCommissionPlan(99, decimal.NewFromInt(1000), chain, settings)

	require.Len(t, plan, 2)

	assert.Equal(t, int64(99), plan[0].PolicyID)
	assert.Equal(t, int64(1), plan[0].AgentID)
	assert.Equal(t, int32(1), plan[0].Level)
	assert.Equal(t, "100.00", plan[0].Amount)
	assert.Equal(t, models.CommissionStatusPending, plan[0].Status)

	assert.Equal(t, int64(2), plan[1].AgentID)
	assert.Equal(t, int32(2), plan[1].Level)
	assert.Equal(t, "50.00", plan[1].Amount)
}

func TestBuildCommissionPlan_LevelOneOverride(t *testing.T) {
	chain := []models.Agent{
		{ID: 1, CommissionPercent: strPtr("12.50"), ParentID: int64Ptr(2)},
		{ID: 2, CommissionPercent: strPtr("99.00")},
	}
	settings := []models.CommissionSetting{
		setting(1, "10.00"),
		setting(2, "5.00"),
	}

	plan := buildCommissionPlan(1, decimal.NewFromInt(1000), chain, settings)

	require.Len(t, plan, 2)
	// Seller gets their own override; the parent's override is ignored
	// because overrides only apply at level 1.
	assert.Equal(t, "12.50", plan[0].Percent)
	assert.Equal(t, "125.00", plan[0].Amount)
	assert.Equal(t, "5.00", plan[1].Percent)
	assert.Equal(t, "50.00", plan[1].Amount)
}

func TestBuildCommissionPlan_PremiumOutsideRangeSkipsLevelButContinues(t *testing.T) {
	chain := []models.Agent{
		{ID: 1, ParentID: int64Ptr(2)},
		{ID: 2},
	}
	settings := []models.CommissionSetting{
		{Level: 1, Percent: "10.00", MinPremium: strPtr("5000.00"), IsActive: true},
		setting(2, "5.00"),
	}

	plan := buildCommissionPlan(1, decimal.NewFromInt(1000), chain, settings)

	// Level 1 is ineligible but the walk continues to level 2.
	require.Len(t, plan, 1)
	assert.Equal(t, int32(2), plan[0].Level)
	assert.Equal(t, int64(2), plan[0].AgentID)
}

func TestBuildCommissionPlan_InclusiveRangeBounds(t *testing.T) {
	s := models.CommissionSetting{
		MinPremium: strPtr("100.00"),
		MaxPremium: strPtr("1000.00"),
	}

	assert.True(t, premiumEligible(decimal.NewFromInt(100), s))
	assert.True(t, premiumEligible(decimal.NewFromInt(1000), s))
	assert.False(t, premiumEligible(decimal.NewFromFloat(99.99), s))
	assert.False(t, premiumEligible(decimal.NewFromFloat(1000.01), s))
	assert.True(t, premiumEligible(decimal.NewFromInt(1), models.CommissionSetting{}))
}

func TestBuildCommissionPlan_MissingLevelProducesNoRecord(t *testing.T) {
	chain := []models.Agent{
		{ID: 1, ParentID: int64Ptr(2)},
		{ID: 2, ParentID: int64Ptr(3)},
		{ID: 3},
	}
	// Two active settings at levels 1 and 3: the walk is bounded by the
	// setting count, so only level 1 yields a record.
	settings := []models.CommissionSetting{
		setting(1, "10.00"),
		setting(3, "2.00"),
	}

	plan := buildCommissionPlan(1, decimal.NewFromInt(1000), chain, settings)

	require.Len(t, plan, 1)
	assert.Equal(t, int32(1), plan[0].Level)
}

func TestBuildCommissionPlan_RoundsHalfAwayFromZero(t *testing.T) {
	chain := []models.Agent{{ID: 1}}
	settings := []models.CommissionSetting{setting(1, "10.00")}

	plan := buildCommissionPlan(1, decimal.RequireFromString("100.05"), chain, settings)

	// 100.05 * 10% = 10.005 -> 10.01
	require.Len(t, plan, 1)
	assert.Equal(t, "10.01", plan[0].Amount)
}

func TestBuildCommissionPlan_NoSettings(t *testing.T) {
	chain := []models.Agent{{ID: 1}}

	plan := buildCommissionPlan(1, decimal.NewFromInt(1000), chain, nil)

	assert.Empty(t, plan)
}

func TestWalkAgentChain_StopsAtRoot(t *testing.T) {
	agents := map[int64]*models.Agent{
		1: {ID: 1, ParentID: int64Ptr(2)},
		2: {ID: 2},
	}
	lookup := func(id int64) (*models.Agent, bool, error) {
		a, ok := agents[id]
		return a, ok, nil
	}

	chain, err := walkAgentChain(lookup, 1, 5)

	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, int64(1), chain[0].ID)
	assert.Equal(t, int64(2), chain[1].ID)
}

func TestWalkAgentChain_BoundedByLevels(t *testing.T) {
	agents := map[int64]*models.Agent{
		1: {ID: 1, ParentID: int64Ptr(2)},
		2: {ID: 2, ParentID: int64Ptr(3)},
		3: {ID: 3, ParentID: int64Ptr(4)},
		4: {ID: 4},
	}
	lookup := func(id int64) (*models.Agent, bool, error) {
		a, ok := agents[id]
		return a, ok, nil
	}

	chain, err := walkAgentChain(lookup, 1, 2)

	require.NoError(t, err)
	assert.Len(t, chain, 2)
}

func TestWalkAgentChain_DetectsCycle(t *testing.T) {
	agents := map[int64]*models.Agent{
		1: {ID: 1, ParentID: int64Ptr(2)},
		2: {ID: 2, ParentID: int64Ptr(1)},
	}
	lookup := func(id int64) (*models.Agent, bool, error) {
		a, ok := agents[id]
		return a, ok, nil
	}

	_, err := walkAgentChain(lookup, 1, 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestWalkAgentChain_DanglingParentEndsChain(t *testing.T) {
	agents := map[int64]*models.Agent{
		1: {ID: 1, ParentID: int64Ptr(42)},
	}
	lookup := func(id int64) (*models.Agent, bool, error) {
		a, ok := agents[id]
		return a, ok, nil
	}

	chain, err := walkAgentChain(lookup, 1, 10)

	require.NoError(t, err)
	assert.Len(t, chain, 1)
}
