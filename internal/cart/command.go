package cart

import (
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// Command is an optimistic cart edit: applied locally first, reverted if the server refuses it.
type Command interface {
	ItemID() uuid.UUID
	Apply(c *Cart) error
	Revert(c *Cart)
}

// ChangeQuantity adjusts one line by Delta within the stock guard.
type ChangeQuantity struct {
	ID    uuid.UUID
	Delta int

	previous int
	applied  bool
}

func (cmd *ChangeQuantity) ItemID() uuid.UUID { return cmd.ID }

func (cmd *ChangeQuantity) Apply(c *Cart) error {
	item, ok := c.Item(cmd.ID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if _, err := c.ChangeQuantity(cmd.ID, cmd.Delta); err != nil {
		return err
	}
	cmd.previous = item.Quantity
	cmd.applied = true
	return nil
}

func (cmd *ChangeQuantity) Revert(c *Cart) {
	if !cmd.applied {
		return
	}
	c.SetQuantity(cmd.ID, cmd.previous)
	cmd.applied = false
}

// Target is the quantity the line holds after Apply.
func (cmd *ChangeQuantity) Target() int {
	return cmd.previous + cmd.Delta
}

// RemoveItem deletes one line and remembers its neighbours, so a revert lands
// next to them even if other removals were reverted first.
type RemoveItem struct {
	ID uuid.UUID

	removed     LineItem
	index       int
	prevID      uuid.UUID
	nextID      uuid.UUID
	wasSelected bool
	applied     bool
}

func (cmd *RemoveItem) ItemID() uuid.UUID { return cmd.ID }

func (cmd *RemoveItem) Apply(c *Cart) error {
	index := c.indexOf(cmd.ID)
	if index < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	cmd.removed = c.items[index]
	cmd.index = index
	cmd.prevID, cmd.nextID = uuid.Nil, uuid.Nil
	if index > 0 {
		cmd.prevID = c.items[index-1].ID
	}
	if index+1 < len(c.items) {
		cmd.nextID = c.items[index+1].ID
	}
	cmd.wasSelected = c.selection.IsSelected(cmd.ID)
	c.Remove(cmd.ID)
	cmd.applied = true
	return nil
}

func (cmd *RemoveItem) Revert(c *Cart) {
	if !cmd.applied {
		return
	}
	c.Insert(cmd.restoreIndex(c), cmd.removed)
	if cmd.wasSelected {
		c.selection.Select(cmd.ID)
	}
	cmd.applied = false
}

func (cmd *RemoveItem) restoreIndex(c *Cart) int {
	if cmd.nextID != uuid.Nil {
		if i := c.indexOf(cmd.nextID); i >= 0 {
			return i
		}
	}
	if cmd.prevID != uuid.Nil {
		if i := c.indexOf(cmd.prevID); i >= 0 {
			return i + 1
		}
	}
	return cmd.index
}
