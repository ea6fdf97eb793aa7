package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

// testTiers is the family-support scale: the heaviest credit load gets the
// largest discount.
func testTiers() []models.DiscountTier {
	return []models.DiscountTier{
		{ID: "t0", Position: 0, Percentage: 0.5},
		{ID: "t1", Position: 1, Percentage: 0.3},
		{ID: "t2", Position: 2, Percentage: 0.1},
	}
}

func groupOf(credits ...int) *models.SiblingGroup {
	g := &models.SiblingGroup{}
	for i, c := range credits {
		g.Students = append(g.Students, &models.StudentRecord{
			Document:     string(rune('A' + i)),
			TotalCredits: c,
		})
	}
	return g
}

func TestAllocateRanksByCreditsDescending(t *testing.T) {
	group := groupOf(12, 20, 16)
	NewDiscountAllocator(zap.NewNop()).Allocate(group, testTiers())

	require.Len(t, group.Students, 3)
	assert.Equal(t, 20, group.Students[0].TotalCredits)
	assert.Equal(t, 16, group.Students[1].TotalCredits)
	assert.Equal(t, 12, group.Students[2].TotalCredits)

	assert.Equal(t, 0.5, group.Students[0].DiscountPct)
	assert.Equal(t, 0.3, group.Students[1].DiscountPct)
	assert.Equal(t, 0.1, group.Students[2].DiscountPct)

	for i, s := range group.Students {
		assert.Equal(t, i, s.Position)
	}
}

func TestAllocateDiscountsNonIncreasingWithTies(t *testing.T) {
	group := groupOf(20, 20, 15)
	first, second := group.Students[0], group.Students[1]

	NewDiscountAllocator(zap.NewNop()).Allocate(group, testTiers())

	// The tied pair keeps submission order; the scale applies by rank.
	assert.Same(t, first, group.Students[0])
	assert.Same(t, second, group.Students[1])
	assert.Equal(t, 0.5, group.Students[0].DiscountPct)
	assert.Equal(t, 0.3, group.Students[1].DiscountPct)
	assert.Equal(t, 0.1, group.Students[2].DiscountPct)

	for i := 0; i+1 < len(group.Students); i++ {
		assert.GreaterOrEqual(t, group.Students[i].DiscountPct, group.Students[i+1].DiscountPct)
	}
}

func TestAllocateStableOnTies(t *testing.T) {
	group := groupOf(15, 15, 15)
	first, second, third := group.Students[0], group.Students[1], group.Students[2]

	NewDiscountAllocator(zap.NewNop()).Allocate(group, testTiers())

	// Tied students keep submission order.
	assert.Same(t, first, group.Students[0])
	assert.Same(t, second, group.Students[1])
	assert.Same(t, third, group.Students[2])
}

func TestAllocateBeyondTiersGetsZero(t *testing.T) {
	group := groupOf(20, 18, 16, 14)
	NewDiscountAllocator(zap.NewNop()).Allocate(group, testTiers())

	assert.Equal(t, 0.0, group.Students[3].DiscountPct)
	assert.Equal(t, 3, group.Students[3].Position)
}

func TestAllocateUnsortedTierInput(t *testing.T) {
	tiers := []models.DiscountTier{
		{Position: 2, Percentage: 0.1},
		{Position: 0, Percentage: 0.5},
		{Position: 1, Percentage: 0.3},
	}
	group := groupOf(20, 18, 16)
	NewDiscountAllocator(zap.NewNop()).Allocate(group, tiers)

	assert.Equal(t, 0.5, group.Students[0].DiscountPct)
	assert.Equal(t, 0.3, group.Students[1].DiscountPct)
	assert.Equal(t, 0.1, group.Students[2].DiscountPct)
}

func TestSwapAdjacentTied(t *testing.T) {
	group := groupOf(20, 15, 15)
	a := NewDiscountAllocator(zap.NewNop())
	a.Allocate(group, testTiers())

	tiedFirst := group.Students[1]
	tiedSecond := group.Students[2]

	swapped := a.SwapAdjacent(group, 1, testTiers())
	require.True(t, swapped)

	assert.Same(t, tiedSecond, group.Students[1])
	assert.Same(t, tiedFirst, group.Students[2])
	assert.Equal(t, 0.3, group.Students[1].DiscountPct)
	assert.Equal(t, 0.1, group.Students[2].DiscountPct)
}

func TestSwapAdjacentRejectsUnequalCredits(t *testing.T) {
	group := groupOf(20, 15)
	a := NewDiscountAllocator(zap.NewNop())
	a.Allocate(group, testTiers())

	swapped := a.SwapAdjacent(group, 0, testTiers())
	assert.False(t, swapped)
	assert.Equal(t, 20, group.Students[0].TotalCredits)
}

func TestSwapAdjacentOutOfRange(t *testing.T) {
	group := groupOf(15, 15)
	a := NewDiscountAllocator(zap.NewNop())

	assert.False(t, a.SwapAdjacent(group, -1, testTiers()))
	assert.False(t, a.SwapAdjacent(group, 1, testTiers()))
}
