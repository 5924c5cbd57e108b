// Package plan decides whether an owner may publish another listing.
package plan

import (
	"errors"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"
)

// Unlimited marks a plan without a listing cap.
const Unlimited = -1

var ErrUnknownPlan = errors.New("unknown plan")

// Tier is one row of the plan table.
type Tier struct {
	Plan         domain.Plan `json:"plan"`
	ListingLimit int         `json:"listing_limit"`
	PriceCents   int32       `json:"price_cents"`
}

// Gate holds the canonical plan table. Every listing gate goes through it.
type Gate struct {
	tiers map[domain.Plan]Tier
}

func NewGate(cfg config.PlansConfig) *Gate {
	return &Gate{tiers: map[domain.Plan]Tier{
		domain.PlanFree:    {Plan: domain.PlanFree, ListingLimit: normalize(cfg.FreeListingLimit)},
		domain.PlanBasic:   {Plan: domain.PlanBasic, ListingLimit: normalize(cfg.BasicListingLimit), PriceCents: cfg.BasicPriceCents},
		domain.PlanPremium: {Plan: domain.PlanPremium, ListingLimit: normalize(cfg.PremiumListingLimit), PriceCents: cfg.PremiumPriceCents},
	}}
}

func normalize(limit int) int {
	if limit < 0 {
		return Unlimited
	}
	return limit
}

// Limit returns the listing cap of p, or Unlimited.
func (g *Gate) Limit(p domain.Plan) (int, error) {
	t, ok := g.tiers[p]
	if !ok {
		return 0, ErrUnknownPlan
	}
	return t.ListingLimit, nil
}

// CanCreateListing reports whether an owner on plan p with activeCount
// listings may add one more. At the cap the answer is no.
func (g *Gate) CanCreateListing(p domain.Plan, activeCount int) bool {
	limit, err := g.Limit(p)
	if err != nil {
		return false
	}
	if limit == Unlimited {
		return true
	}
	return activeCount < limit
}

// Upgrade returns the cheapest plan that would allow one more listing, or
// false when none would.
func (g *Gate) Upgrade(activeCount int) (domain.Plan, bool) {
	for _, t := range g.Tiers() {
		if g.CanCreateListing(t.Plan, activeCount) {
			return t.Plan, true
		}
	}
	return "", false
}

// Tiers lists the plan table from Free to Premium.
func (g *Gate) Tiers() []Tier {
	return []Tier{g.tiers[domain.PlanFree], g.tiers[domain.PlanBasic], g.tiers[domain.PlanPremium]}
}
