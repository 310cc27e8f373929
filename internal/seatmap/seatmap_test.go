package seatmap

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/match-ticketing/internal/model"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(VIP)
	b := Generate(VIP)
	require.Len(t, a, TotalSlots)
	assert.Equal(t, a, b)
}

func TestGenerateOrdering(t *testing.T) {
	slots := Generate(Standard)
	require.Len(t, slots, TotalSlots)

	// Sides in fixed order, layers 1..4 inside a side, indices 0..9 inside
	// a layer.
	assert.Equal(t, "top-1-0", slots[0].SlotID)
	assert.Equal(t, "top-1-9", slots[9].SlotID)
	assert.Equal(t, "top-2-0", slots[10].SlotID)
	assert.Equal(t, "top-4-9", slots[39].SlotID)
	assert.Equal(t, "bottom-1-0", slots[40].SlotID)
	assert.Equal(t, "left-1-0", slots[80].SlotID)
	assert.Equal(t, "right-4-9", slots[159].SlotID)
}

func TestGenerateNamesAdvancePerPosition(t *testing.T) {
	slots := Generate(VIP)
	// The counter runs over every position, not only eligible ones, so the
	// name always encodes the position's ordinal.
	for i, s := range slots {
		assert.Equal(t, fmt.Sprintf("VIP-%d", i), s.Name)
	}
}

func TestEligibleCounts(t *testing.T) {
	assert.Equal(t, 80, EligibleCount(Standard))
	assert.Equal(t, 40, EligibleCount(VIP))
	assert.Equal(t, 40, EligibleCount(Premium))
}

func TestEligibleRegions(t *testing.T) {
	// Standard owns the side stands on every layer.
	assert.True(t, Eligible(Standard, "left", 1))
	assert.True(t, Eligible(Standard, "right", 4))
	assert.False(t, Eligible(Standard, "top", 1))

	// VIP sits nearest the pitch.
	assert.True(t, Eligible(VIP, "top", 3))
	assert.True(t, Eligible(VIP, "bottom", 2))
	assert.False(t, Eligible(VIP, "top", 1))
	assert.False(t, Eligible(VIP, "left", 1))

	// Premium takes the remaining top/bottom rows.
	assert.True(t, Eligible(Premium, "top", 1))
	assert.True(t, Eligible(Premium, "bottom", 4))
	assert.False(t, Eligible(Premium, "bottom", 1))
}

func TestOverlayAssignsInOrder(t *testing.T) {
	base := Generate(VIP)
	seats := []model.Seat{
		{ID: 11, Name: "VIP-A", Status: model.SeatAvailable},
		{ID: 12, Name: "VIP-B", Status: model.SeatReserved},
	}
	out := Overlay(base, seats)

	var assigned []Slot
	for _, s := range out {
		if s.SeatID != 0 {
			assigned = append(assigned, s)
		}
	}
	require.Len(t, assigned, 2)

	// First eligible VIP position is top layer 3.
	assert.Equal(t, "top-3-0", assigned[0].SlotID)
	assert.Equal(t, uint64(11), assigned[0].SeatID)
	assert.Equal(t, "VIP-A", assigned[0].Name)
	assert.Equal(t, StatusAvailable, assigned[0].Status)

	assert.Equal(t, "top-3-1", assigned[1].SlotID)
	assert.Equal(t, StatusReserved, assigned[1].Status)
}

func TestOverlayExcessEligibleStaysDisabled(t *testing.T) {
	base := Generate(Premium)
	seats := []model.Seat{{ID: 1, Name: "P-1", Status: model.SeatAvailable}}
	out := Overlay(base, seats)

	disabledEligible := 0
	for _, s := range out {
		if s.Eligible && s.SeatID == 0 {
			assert.Equal(t, StatusDisabled, s.Status)
			disabledEligible++
		}
	}
	assert.Equal(t, EligibleCount(Premium)-1, disabledEligible)
}

func TestOverlayNeverTouchesIneligible(t *testing.T) {
	base := Generate(Standard)
	seats := make([]model.Seat, 200) // more seats than eligible positions
	for i := range seats {
		seats[i] = model.Seat{ID: uint64(i + 1), Name: "S", Status: model.SeatAvailable}
	}
	out := Overlay(base, seats)
	for _, s := range out {
		if !s.Eligible {
			assert.Zero(t, s.SeatID)
			assert.Equal(t, StatusDisabled, s.Status)
		}
	}
}

func TestOverlayDoesNotModifyInput(t *testing.T) {
	base := Generate(VIP)
	before := make([]Slot, len(base))
	copy(before, base)
	Overlay(base, []model.Seat{{ID: 5, Name: "x", Status: model.SeatAvailable}})
	assert.Equal(t, before, base)
}

func TestParseCategory(t *testing.T) {
	for _, in := range []string{"vip", "VIP", "Vip"} {
		cat, ok := ParseCategory(in)
		require.True(t, ok, in)
		assert.Equal(t, VIP, cat)
	}
	_, ok := ParseCategory("courtside")
	assert.False(t, ok)
}
