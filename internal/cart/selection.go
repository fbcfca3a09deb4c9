package cart

import (
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Selection is the set of line items the buyer intends to check out.
// It only ever holds ids of items present in its cart.
type Selection struct {
	cart *Cart
	ids  ItemSet
}

// IsSelected reports whether id is selected.
func (s *Selection) IsSelected(id uuid.UUID) bool {
	return s.ids.Has(id)
}

// Len is the number of selected items.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool {
	return len(s.ids) == 0
}

// ToggleItem flips membership of id. Ids not in the cart are ignored.
func (s *Selection) ToggleItem(id uuid.UUID) {
	s.Prune()
	if !s.cart.Contains(id) {
		return
	}
	if s.ids.Has(id) {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// Select adds every present id.
func (s *Selection) Select(ids ...uuid.UUID) {
	for _, id := range ids {
		if s.cart.Contains(id) {
			s.ids[id] = struct{}{}
		}
	}
}

// Deselect removes ids.
func (s *Selection) Deselect(ids ...uuid.UUID) {
	for _, id := range ids {
		delete(s.ids, id)
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(ItemSet)
}

// ToggleGroup deselects the seller's items when all are selected, otherwise selects all of them.
func (s *Selection) ToggleGroup(sellerID uuid.UUID) {
	s.Prune()
	ids := s.groupIDs(sellerID)
	if len(ids) == 0 {
		return
	}
	if s.countSelected(ids) == len(ids) {
		s.Deselect(ids...)
		return
	}
	s.Select(ids...)
}

// ToggleAll clears when everything is selected, otherwise selects every item.
func (s *Selection) ToggleAll() {
	s.Prune()
	ids := s.allIDs()
	if len(ids) > 0 && len(s.ids) == len(ids) {
		s.Clear()
		return
	}
	s.Select(ids...)
}

// GroupState summarizes the selection within one seller group.
func (s *Selection) GroupState(sellerID uuid.UUID) enums.SelectionState {
	ids := s.groupIDs(sellerID)
	return enums.SelectionStateOf(s.countSelected(ids), len(ids))
}

// OverallState summarizes the selection across the whole cart.
func (s *Selection) OverallState() enums.SelectionState {
	ids := s.allIDs()
	return enums.SelectionStateOf(s.countSelected(ids), len(ids))
}

// Prune drops ids that are no longer in the cart.
func (s *Selection) Prune() {
	for id := range s.ids {
		if !s.cart.Contains(id) {
			delete(s.ids, id)
		}
	}
}

// IDs returns the selected ids in cart order.
func (s *Selection) IDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for _, item := range s.cart.items {
		if s.ids.Has(item.ID) {
			out = append(out, item.ID)
		}
	}
	return out
}

// Set returns a copy of the selected ids.
func (s *Selection) Set() ItemSet {
	out := make(ItemSet, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out
}

func (s *Selection) groupIDs(sellerID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for _, item := range s.cart.items {
		if item.Seller.ID == sellerID {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func (s *Selection) allIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.cart.items))
	for _, item := range s.cart.items {
		ids = append(ids, item.ID)
	}
	return ids
}

func (s *Selection) countSelected(ids []uuid.UUID) int {
	n := 0
	for _, id := range ids {
		if s.ids.Has(id) {
			n++
		}
	}
	return n
}
