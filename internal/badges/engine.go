package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/config"
	"github.com/angelmondragon/tienda-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/tienda-backend/pkg/errors"
	"github.com/angelmondragon/tienda-backend/pkg/logger"
	"github.com/angelmondragon/tienda-backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Engine grants badges from the current ledger state. Reconcile is safe to run
// repeatedly and concurrently for the same user: the (user, badge) unique key
// absorbs racing inserts.
type Engine struct {
	repo    Repository
	tx      txRunner
	cfg     config.BadgesConfig
	metrics *metrics.OrderMetrics
	logg    *logger.Logger
	now     func() time.Time
}

func NewEngine(repo Repository, tx txRunner, cfg config.BadgesConfig, m *metrics.OrderMetrics, logg *logger.Logger) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("badges repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Engine{repo: repo, tx: tx, cfg: cfg, metrics: m, logg: logg, now: time.Now}, nil
}

// Reconcile awards every active badge the user qualifies for and does not hold
// yet, returning the ids of badges granted by this call.
func (e *Engine) Reconcile(ctx context.Context, userID uint64) ([]uint64, error) {
	if userID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	ctx = e.logg.WithUserID(ctx, userID)

	m, err := e.Metrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := e.repo.ActiveBadges(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load badges")
	}
	held, err := e.repo.HeldBadgeIDs(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load awards")
	}

	var candidates []models.Badge
	for _, badge := range active {
		if _, ok := held[badge.ID]; ok {
			continue
		}
		ok, known := Qualifies(badge.RuleKey, m)
		if !known {
			e.logg.Warn(e.logg.WithFields(ctx, map[string]any{"badge_id": badge.ID, "rule_key": badge.RuleKey}), "badges.rule.unknown")
			continue
		}
		if ok {
			candidates = append(candidates, badge)
		}
	}
	if len(candidates) == 0 {
		return []uint64{}, nil
	}

	awarded := make([]uint64, 0, len(candidates))
	var awardedRules []string
	now := e.now().UTC()
	err = e.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := e.repo.WithTx(tx)
		awarded, awardedRules = awarded[:0], awardedRules[:0]
		for _, badge := range candidates {
			inserted, err := repo.InsertAwardIfAbsent(ctx, &models.BadgeAward{
				UserID:    userID,
				BadgeID:   badge.ID,
				AwardedAt: now,
			})
			if err != nil {
				return err
			}
			if inserted {
				awarded = append(awarded, badge.ID)
				awardedRules = append(awardedRules, badge.RuleKey.String())
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert awards")
	}

	for _, rule := range awardedRules {
		e.metrics.AddBadgesAwarded(rule, 1)
	}
	if len(awarded) > 0 {
		e.logg.Info(e.logg.WithField(ctx, "badge_ids", awarded), "badges.awarded")
	}
	return awarded, nil
}

// Metrics derives the rule inputs for a user.
func (e *Engine) Metrics(ctx context.Context, userID uint64) (Metrics, error) {
	var (
		m   Metrics
		err error
	)
	wrap := func(err error, what string) error {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute "+what)
	}

	if m.PaidOrders, err = e.repo.CountPaidOrders(ctx, userID); err != nil {
		return m, wrap(err, "paid orders")
	}
	if m.FeaturedUnits, err = e.repo.SumUnitsInCategory(ctx, userID, e.cfg.FeaturedCategoryID); err != nil {
		return m, wrap(err, "featured units")
	}
	if m.Shares, err = e.repo.CountShares(ctx, userID); err != nil {
		return m, wrap(err, "shares")
	}
	if m.BulkUnits, err = e.repo.SumUnitsInCategory(ctx, userID, e.cfg.BulkCategoryID); err != nil {
		return m, wrap(err, "bulk units")
	}
	if m.PaidOrderTimes, err = e.repo.PaidOrderTimes(ctx, userID); err != nil {
		return m, wrap(err, "order months")
	}
	if m.CategoriesPurchased, err = e.repo.CountPurchasedCategories(ctx, userID); err != nil {
		return m, wrap(err, "purchased categories")
	}
	if m.CategoriesTotal, err = e.repo.CountCategories(ctx); err != nil {
		return m, wrap(err, "categories")
	}
	return m, nil
}

// AwardView is a held badge with its display metadata.
type AwardView struct {
	BadgeID     uint64    `json:"insignia_id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	IconURL     *string   `json:"icono_url,omitempty"`
	RuleKey     string    `json:"regla"`
	AwardedAt   time.Time `json:"fecha"`
}

// Awards lists the badges a user holds, oldest first.
func (e *Engine) Awards(ctx context.Context, userID uint64) ([]AwardView, error) {
	awards, err := e.repo.ListAwards(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list awards")
	}
	out := make([]AwardView, 0, len(awards))
	for _, a := range awards {
		view := AwardView{BadgeID: a.BadgeID, AwardedAt: a.AwardedAt}
		if a.Badge != nil {
			view.Name = a.Badge.Name
			view.Description = a.Badge.Description
			view.IconURL = a.Badge.IconURL
			view.RuleKey = a.Badge.RuleKey.String()
		}
		out = append(out, view)
	}
	return out, nil
}
