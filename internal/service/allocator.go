package service

import (
	"sort"

	"go.uber.org/zap"

	"github.com/diegocaceres21/saae-discount-api/internal/models"
)

// DiscountAllocator ranks a sibling group by credit load and assigns the
// family-support tiers by rank position.
type DiscountAllocator struct {
	logger *zap.Logger
}

// NewDiscountAllocator constructs an allocator.
func NewDiscountAllocator(logger *zap.Logger) *DiscountAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiscountAllocator{logger: logger}
}

// Allocate sorts the group by total credits descending (stable, so tied
// students keep their relative order) and assigns tier percentages by rank.
// Students ranked past the configured tiers get 0%; this is logged because it
// usually means the tier scale was configured shorter than the family.
func (a *DiscountAllocator) Allocate(group *models.SiblingGroup, tiers []models.DiscountTier) {
	ordered := make([]models.DiscountTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	sort.SliceStable(group.Students, func(i, j int) bool {
		return group.Students[i].TotalCredits > group.Students[j].TotalCredits
	})

	for i, student := range group.Students {
		student.Position = i
		if i < len(ordered) {
			student.DiscountPct = ordered[i].Percentage
			continue
		}
		student.DiscountPct = 0
		a.logger.Warn("no discount tier for rank, student gets 0%",
			zap.Int("rank", i),
			zap.String("document", student.Document))
	}
}

// SwapAdjacent exchanges the students at rank i and i+1 and re-allocates.
// Only tied students may be swapped; a swap request between students with
// different credit loads leaves the group untouched and returns false.
func (a *DiscountAllocator) SwapAdjacent(group *models.SiblingGroup, i int, tiers []models.DiscountTier) bool {
	if i < 0 || i+1 >= len(group.Students) {
		return false
	}
	if group.Students[i].TotalCredits != group.Students[i+1].TotalCredits {
		return false
	}
	group.Students[i], group.Students[i+1] = group.Students[i+1], group.Students[i]
	a.Allocate(group, tiers)
	return true
}
