package limits

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckLimitUnderCap(t *testing.T) {
	check := CheckLimit(TierFree, LimitDailyGenerations, 3)

	assert.True(t, check.Allowed)
	assert.Equal(t, 5, check.Limit)
	assert.Equal(t, 3, check.Current)
	assert.Equal(t, 2, check.Remaining)
	assert.Empty(t, check.UpgradeRequired)
}

func TestCheckLimitAtCap(t *testing.T) {
	check := CheckLimit(TierFree, LimitDailyGenerations, 5)

	assert.False(t, check.Allowed)
	assert.Equal(t, 0, check.Remaining)
	assert.Equal(t, TierStarter, check.UpgradeRequired)
}

func TestCheckLimitUnlimited(t *testing.T) {
	check := CheckLimit(TierPro, LimitDailyGenerations, 10000)

	assert.True(t, check.Allowed)
	assert.Equal(t, Unlimited, check.Limit)
	assert.Equal(t, Unlimited, check.Remaining)
}

func TestCheckLimitSocialAccounts(t *testing.T) {
	check := CheckLimit(TierFree, LimitSocialAccounts, 1)

	assert.False(t, check.Allowed)
	assert.Equal(t, 1, check.Limit)
	assert.Equal(t, 1, check.Current)
	assert.Equal(t, TierStarter, check.UpgradeRequired)
}

func TestCheckLimitUpgradeSkipsEqualTiers(t *testing.T) {
	// STARTER keeps teamMembers at 1, so the suggestion must skip to PRO.
	check := CheckLimit(TierFree, LimitTeamMembers, 1)

	assert.False(t, check.Allowed)
	assert.Equal(t, TierPro, check.UpgradeRequired)
}

func TestCheckLimitTopTierHasNoUpgrade(t *testing.T) {
	check := CheckLimit(TierAgency, LimitTeamMembers, 50)

	assert.True(t, check.Allowed)
	assert.Empty(t, check.UpgradeRequired)
}

func TestCheckLimitUnknownTierFallsBackToFree(t *testing.T) {
	check := CheckLimit("LEGACY", LimitDailyGenerations, 5)

	assert.False(t, check.Allowed)
	assert.Equal(t, TierFree, check.Tier)
	assert.Equal(t, TierStarter, check.UpgradeRequired)
}

func TestCheckFeature(t *testing.T) {
	granted := CheckFeature(TierPro, FeatureBrandVoice)
	assert.True(t, granted.Allowed)

	denied := CheckFeature(TierFree, FeatureAdvancedAnalytics)
	assert.False(t, denied.Allowed)
	assert.Equal(t, TierStarter, denied.UpgradeRequired)

	never := CheckFeature(TierFree, FeatureWhiteLabel)
	assert.False(t, never.Allowed)
	assert.Equal(t, TierAgency, never.UpgradeRequired)
}
