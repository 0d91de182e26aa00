package enums

// BadgeRuleKey is the machine-readable predicate a badge is granted for.
type BadgeRuleKey string

const (
	BadgeRuleFirstPurchase  BadgeRuleKey = "first_purchase"
	BadgeRuleFeaturedUnits5 BadgeRuleKey = "featured_units_5"
	BadgeRuleFirstShare     BadgeRuleKey = "first_share"
	BadgeRuleBulkUnits10    BadgeRuleKey = "bulk_units_10"
	BadgeRuleStreak3Months  BadgeRuleKey = "streak_3_months"
	BadgeRuleAllCategories  BadgeRuleKey = "all_categories"
)

var validBadgeRuleKeys = []BadgeRuleKey{
	BadgeRuleFirstPurchase,
	BadgeRuleFeaturedUnits5,
	BadgeRuleFirstShare,
	BadgeRuleBulkUnits10,
	BadgeRuleStreak3Months,
	BadgeRuleAllCategories,
}

// String implements fmt.Stringer.
func (k BadgeRuleKey) String() string {
	return string(k)
}

// IsValid reports whether the value is a known BadgeRuleKey.
func (k BadgeRuleKey) IsValid() bool {
	for _, candidate := range validBadgeRuleKeys {
		if candidate == k {
			return true
		}
	}
	return false
}
