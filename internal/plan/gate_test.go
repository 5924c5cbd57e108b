package plan

import (
	"testing"

	"bora-alugar-backend/internal/config"
	"bora-alugar-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func defaultGate() *Gate {
	return NewGate(config.PlansConfig{
		FreeListingLimit:    1,
		BasicListingLimit:   10,
		PremiumListingLimit: -1,
		BasicPriceCents:     2990,
		PremiumPriceCents:   7990,
	})
}

func TestCanCreateListing(t *testing.T) {
	g := defaultGate()

	tests := []struct {
		name   string
		plan   domain.Plan
		active int
		want   bool
	}{
		{"Free with none", domain.PlanFree, 0, true},
		{"Free at cap", domain.PlanFree, 1, false},
		{"Basic one below cap", domain.PlanBasic, 9, true},
		{"Basic at cap", domain.PlanBasic, 10, false},
		{"Premium unlimited", domain.PlanPremium, 10000, true},
		{"Unknown plan", domain.Plan("GOLD"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.CanCreateListing(tt.plan, tt.active))
		})
	}
}

func TestUpgrade(t *testing.T) {
	g := defaultGate()

	p, ok := g.Upgrade(1)
	assert.True(t, ok)
	assert.Equal(t, domain.PlanBasic, p)

	p, ok = g.Upgrade(10)
	assert.True(t, ok)
	assert.Equal(t, domain.PlanPremium, p)
}

func TestLimit(t *testing.T) {
	g := defaultGate()

	limit, err := g.Limit(domain.PlanPremium)
	assert.NoError(t, err)
	assert.Equal(t, Unlimited, limit)

	_, err = g.Limit("GOLD")
	assert.ErrorIs(t, err, ErrUnknownPlan)

	tiers := g.Tiers()
	assert.Len(t, tiers, 3)
	assert.Equal(t, int32(2990), tiers[1].PriceCents)
}
