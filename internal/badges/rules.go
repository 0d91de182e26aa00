package badges

import (
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
)

const (
	featuredUnitsThreshold = 5
	bulkUnitsThreshold     = 10
	streakMonths           = 3
)

// Metrics are the per-user facts every rule is evaluated against. Purchase
// figures only count paid orders.
type Metrics struct {
	PaidOrders          int64
	FeaturedUnits       int64
	Shares              int64
	BulkUnits           int64
	PaidOrderTimes      []time.Time
	CategoriesPurchased int64
	CategoriesTotal     int64
}

type predicate func(Metrics) bool

var rules = map[enums.BadgeRuleKey]predicate{
	enums.BadgeRuleFirstPurchase: func(m Metrics) bool {
		return m.PaidOrders >= 1
	},
	enums.BadgeRuleFeaturedUnits5: func(m Metrics) bool {
		return m.FeaturedUnits >= featuredUnitsThreshold
	},
	enums.BadgeRuleFirstShare: func(m Metrics) bool {
		return m.Shares >= 1
	},
	enums.BadgeRuleBulkUnits10: func(m Metrics) bool {
		return m.BulkUnits >= bulkUnitsThreshold
	},
	enums.BadgeRuleStreak3Months: func(m Metrics) bool {
		return hasConsecutiveMonths(m.PaidOrderTimes, streakMonths)
	},
	enums.BadgeRuleAllCategories: func(m Metrics) bool {
		return m.CategoriesTotal > 0 && m.CategoriesPurchased >= m.CategoriesTotal
	},
}

// Qualifies evaluates the rule behind key. Unknown keys never qualify; the
// second return value reports whether the key is known.
func Qualifies(key enums.BadgeRuleKey, m Metrics) (bool, bool) {
	p, ok := rules[key]
	if !ok {
		return false, false
	}
	return p(m), true
}
