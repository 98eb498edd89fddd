package cart

import (
	"github.com/google/uuid"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

// Transform is a pure change to a cart's item list. Commands and their
// rollbacks are both Transforms, so the undo path can be tested without
// going through the synchronizer.
type Transform func(items []domain.CartItem) []domain.CartItem

// Command pairs a name (for logs and notifications) with the optimistic
// change it makes to the local view.
type Command struct {
	Name  string
	Apply Transform
}

// Rollback produces the transform that restores a snapshot verbatim,
// discarding whatever optimistic state is currently held.
func Rollback(snapshot []domain.CartItem) Transform {
	restored := domain.CloneItems(snapshot)
	return func([]domain.CartItem) []domain.CartItem {
		return domain.CloneItems(restored)
	}
}

// addItemCommand increments an existing line for the same product and
// size, or appends a provisional line. The provisional ID is replaced by
// the server's once the post-mutation refetch lands.
func addItemCommand(productID int64, quantity int, size string) Command {
	return Command{
		Name: "add_item",
		Apply: func(items []domain.CartItem) []domain.CartItem {
			for i := range items {
				if items[i].ProductID == productID && items[i].Size == size {
					items[i].Quantity += quantity
					return items
				}
			}
			return append(items, domain.CartItem{
				ID:        "pending-" + uuid.NewString(),
				ProductID: productID,
				Quantity:  quantity,
				Size:      size,
				InStock:   true,
			})
		},
	}
}

func updateQuantityCommand(itemID string, quantity int) Command {
	return Command{
		Name: "update_quantity",
		Apply: func(items []domain.CartItem) []domain.CartItem {
			for i := range items {
				if items[i].ID == itemID {
					items[i].Quantity = quantity
					break
				}
			}
			return items
		},
	}
}

func removeItemCommand(itemID string) Command {
	return Command{
		Name: "remove_item",
		Apply: func(items []domain.CartItem) []domain.CartItem {
			out := items[:0]
			for _, it := range items {
				if it.ID != itemID {
					out = append(out, it)
				}
			}
			return out
		},
	}
}

func clearCommand() Command {
	return Command{
		Name: "clear_cart",
		Apply: func([]domain.CartItem) []domain.CartItem {
			return nil
		},
	}
}
