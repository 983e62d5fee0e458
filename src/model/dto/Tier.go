package dto

// Tier is a subscription level. Tiers are ordered: free < basic < pro < enterprise.
type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

var tierRank = map[Tier]int{
	TierFree:       0,
	TierBasic:      1,
	TierPro:        2,
	TierEnterprise: 3,
}

// ParseTier maps a wire value to a Tier. Unknown values are rejected.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	_, ok := tierRank[t]
	return t, ok
}

func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether t ranks at or above other. An unknown tier ranks
// below every known one.
func (t Tier) AtLeast(other Tier) bool {
	tr, ok := tierRank[t]
	if !ok {
		return false
	}
	or, ok := tierRank[other]
	if !ok {
		return true
	}
	return tr >= or
}
