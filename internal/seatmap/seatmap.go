// Package seatmap generates the stadium seat map for a ticket category and
// overlays catalog seat records onto it.  Everything in this package is a
// pure function over its inputs: no state, no I/O, deterministic output for
// the same arguments.
package seatmap

import (
	"fmt"
	"strings"

	"github.com/iliyamo/match-ticketing/internal/model"
)

// Category is a ticket category.  The category decides which of the 160
// stadium positions are reservable inventory (see Eligible).
type Category string

const (
	Standard Category = "Standard"
	Premium  Category = "Premium"
	VIP      Category = "VIP"
)

// Categories lists all valid ticket categories in display order.
var Categories = []Category{VIP, Premium, Standard}

// ParseCategory matches a client-supplied string against the known
// categories, ignoring case.  The second return value reports whether the
// input was recognised.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Status is the state of one seat map slot as sent to clients.
type Status string

const (
	// StatusDisabled marks a position that is not reservable: either the
	// position is ineligible for the category, or the catalog ran out of
	// seats before reaching it.
	StatusDisabled  Status = "disabled"
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusReserved  Status = "reserved"
)

// Stadium geometry.  Four sides, four layers per side, ten positions per
// layer: 160 positions total, always generated in the same order.
const (
	Layers      = 4
	SeatsPerRow = 10
	TotalSlots  = 160
)

var sides = []string{"top", "bottom", "left", "right"}

// Slot is one position of the generated seat map.  SlotID encodes the
// geometry (side-layer-index) and never changes; SeatID and Status carry
// the catalog identity overlaid onto eligible positions.
type Slot struct {
	SlotID   string `json:"slot_id"`
	Side     string `json:"side"`
	Layer    int    `json:"layer"`
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Eligible bool   `json:"eligible"`
	SeatID   uint64 `json:"seat_id,omitempty"`
	Status   Status `json:"status"`
}

// Eligible reports whether a (side, layer) position is reservable
// inventory for the category:
//
//	Standard – the curved left and right stands, all layers.
//	VIP      – rows nearest the pitch: top layers 3-4, bottom layers 1-2.
//	Premium  – the outer rows: top layers 1-2, bottom layers 3-4.
func Eligible(cat Category, side string, layer int) bool {
	switch cat {
	case Standard:
		return side == "left" || side == "right"
	case VIP:
		return (side == "top" && (layer == 3 || layer == 4)) ||
			(side == "bottom" && (layer == 1 || layer == 2))
	case Premium:
		return (side == "top" && (layer == 1 || layer == 2)) ||
			(side == "bottom" && (layer == 3 || layer == 4))
	}
	return false
}

// Generate produces the ordered 160-slot seat map for a category.  Slots
// are emitted side by side (top, bottom, left, right), layer 1..4 within a
// side, index 0..9 within a layer.  Display names are assigned from a
// category-local counter that advances with every generated position, so
// the names are stable regardless of the catalog contents.  All slots start
// disabled; Overlay attaches catalog identity and status.
func Generate(cat Category) []Slot {
	slots := make([]Slot, 0, TotalSlots)
	counter := 0
	for _, side := range sides {
		for layer := 1; layer <= Layers; layer++ {
			for i := 0; i < SeatsPerRow; i++ {
				slots = append(slots, Slot{
					SlotID:   fmt.Sprintf("%s-%d-%d", side, layer, i),
					Side:     side,
					Layer:    layer,
					Index:    i,
					Name:     fmt.Sprintf("%s-%d", cat, counter),
					Eligible: Eligible(cat, side, layer),
					Status:   StatusDisabled,
				})
				counter++
			}
		}
	}
	return slots
}

// Overlay walks the generated slots in order and assigns each eligible slot
// the next unconsumed catalog seat: identity, display name and status.  It
// stops consuming when the catalog runs out; remaining eligible slots keep
// their disabled placeholder.  The input slice is not modified.
func Overlay(slots []Slot, seats []model.Seat) []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	ptr := 0
	for i := range out {
		if !out[i].Eligible || ptr >= len(seats) {
			continue
		}
		seat := seats[ptr]
		ptr++
		out[i].SeatID = seat.ID
		out[i].Name = seat.Name
		out[i].Status = Status(seat.Status)
	}
	return out
}

// EligibleCount returns how many of the 160 positions are reservable for
// the category: 80 for Standard, 40 each for VIP and Premium.
func EligibleCount(cat Category) int {
	n := 0
	for _, side := range sides {
		for layer := 1; layer <= Layers; layer++ {
			if Eligible(cat, side, layer) {
				n += SeatsPerRow
			}
		}
	}
	return n
}
