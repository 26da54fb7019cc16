package limits

// Subscription tiers in ascending order. Upgrade suggestions walk this
// ladder upward, so the order here is load-bearing.
const (
	TierFree    = "FREE"
	TierStarter = "STARTER"
	TierPro     = "PRO"
	TierAgency  = "AGENCY"
)

var tierOrder = []string{TierFree, TierStarter, TierPro, TierAgency}

type LimitKind string

const (
	LimitDailyGenerations LimitKind = "dailyGenerations"
	LimitSocialAccounts   LimitKind = "socialAccounts"
	LimitTeamMembers      LimitKind = "teamMembers"
	LimitTemplates        LimitKind = "templates"
)

type Feature string

const (
	FeatureABTesting          Feature = "abTesting"
	FeatureBrandVoice         Feature = "brandVoice"
	FeatureAdvancedAnalytics  Feature = "advancedAnalytics"
	FeatureAPIAccess          Feature = "apiAccess"
	FeatureWhiteLabel         Feature = "whiteLabel"
	FeatureCustomIntegrations Feature = "customIntegrations"
)

// Unlimited is the sentinel limit value meaning no cap.
const Unlimited = -1

type planLimits struct {
	counts   map[LimitKind]int
	features map[Feature]bool
}

var plans = map[string]planLimits{
	TierFree: {
		counts: map[LimitKind]int{
			LimitDailyGenerations: 5,
			LimitSocialAccounts:   1,
			LimitTeamMembers:      1,
			LimitTemplates:        10,
		},
		features: map[Feature]bool{},
	},
	TierStarter: {
		counts: map[LimitKind]int{
			LimitDailyGenerations: 100,
			LimitSocialAccounts:   5,
			LimitTeamMembers:      1,
			LimitTemplates:        50,
		},
		features: map[Feature]bool{
			FeatureAdvancedAnalytics: true,
		},
	},
	TierPro: {
		counts: map[LimitKind]int{
			LimitDailyGenerations: Unlimited,
			LimitSocialAccounts:   Unlimited,
			LimitTeamMembers:      5,
			LimitTemplates:        Unlimited,
		},
		features: map[Feature]bool{
			FeatureABTesting:         true,
			FeatureBrandVoice:        true,
			FeatureAdvancedAnalytics: true,
			FeatureAPIAccess:         true,
		},
	},
	TierAgency: {
		counts: map[LimitKind]int{
			LimitDailyGenerations: Unlimited,
			LimitSocialAccounts:   Unlimited,
			LimitTeamMembers:      Unlimited,
			LimitTemplates:        Unlimited,
		},
		features: map[Feature]bool{
			FeatureABTesting:          true,
			FeatureBrandVoice:         true,
			FeatureAdvancedAnalytics:  true,
			FeatureAPIAccess:          true,
			FeatureWhiteLabel:         true,
			FeatureCustomIntegrations: true,
		},
	},
}

type UsageCheck struct {
	Allowed         bool   `json:"allowed"`
	Limit           int    `json:"limit"`
	Current         int    `json:"current"`
	Remaining       int    `json:"remaining"`
	Tier            string `json:"tier"`
	UpgradeRequired string `json:"upgrade_required,omitempty"`
}

type FeatureCheck struct {
	Allowed         bool   `json:"allowed"`
	Tier            string `json:"tier"`
	UpgradeRequired string `json:"upgrade_required,omitempty"`
}

// CheckLimit decides whether currentUsage leaves room under the tier's cap
// for limitKind. When it does not, UpgradeRequired names the first higher
// tier whose cap is unlimited or strictly larger; the top tier has none.
// Unknown tiers are treated as FREE.
func CheckLimit(tier string, limitKind LimitKind, currentUsage int) UsageCheck {
	plan, ok := plans[tier]
	if !ok {
		tier = TierFree
		plan = plans[TierFree]
	}
	limit := plan.counts[limitKind]

	if limit == Unlimited {
		return UsageCheck{
			Allowed:   true,
			Limit:     Unlimited,
			Current:   currentUsage,
			Remaining: Unlimited,
			Tier:      tier,
		}
	}

	allowed := currentUsage < limit
	remaining := limit - currentUsage
	if remaining < 0 {
		remaining = 0
	}

	check := UsageCheck{
		Allowed:   allowed,
		Limit:     limit,
		Current:   currentUsage,
		Remaining: remaining,
		Tier:      tier,
	}

	if !allowed {
		check.UpgradeRequired = upgradeFor(tier, limitKind, limit)
	}
	return check
}

func upgradeFor(tier string, limitKind LimitKind, limit int) string {
	idx := tierIndex(tier)
	for i := idx + 1; i < len(tierOrder); i++ {
		next := plans[tierOrder[i]].counts[limitKind]
		if next == Unlimited || next > limit {
			return tierOrder[i]
		}
	}
	return ""
}

// CheckFeature reports whether the tier has a boolean feature flag and, if
// not, the minimum tier that grants it.
func CheckFeature(tier string, feature Feature) FeatureCheck {
	plan, ok := plans[tier]
	if !ok {
		tier = TierFree
		plan = plans[TierFree]
	}
	if plan.features[feature] {
		return FeatureCheck{Allowed: true, Tier: tier}
	}

	for _, t := range tierOrder {
		if plans[t].features[feature] {
			return FeatureCheck{Allowed: false, Tier: tier, UpgradeRequired: t}
		}
	}
	return FeatureCheck{Allowed: false, Tier: tier}
}

func tierIndex(tier string) int {
	for i, t := range tierOrder {
		if t == tier {
			return i
		}
	}
	return 0
}

// DisplayName maps a tier to its marketing name.
func DisplayName(tier string) string {
	switch tier {
	case TierFree:
		return "Free"
	case TierStarter:
		return "Starter"
	case TierPro:
		return "Professional"
	case TierAgency:
		return "Enterprise"
	default:
		return tier
	}
}
