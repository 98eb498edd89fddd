package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtleveltech1/BetterBeingWEB-final-X-sub004/internal/domain"
)

func TestAddItemCommand_NewLine(t *testing.T) {
	cmd := addItemCommand(7, 2, "500g")
	items := cmd.Apply(nil)

	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "500g", items[0].Size)
	assert.NotEmpty(t, items[0].ID)
}

func TestAddItemCommand_IncrementsExistingLine(t *testing.T) {
	items := []domain.CartItem{{ID: "a", ProductID: 7, Quantity: 1, Size: "500g"}}
	items = addItemCommand(7, 2, "500g").Apply(items)

	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestAddItemCommand_DifferentSizeIsNewLine(t *testing.T) {
	items := []domain.CartItem{{ID: "a", ProductID: 7, Quantity: 1, Size: "500g"}}
	items = addItemCommand(7, 1, "1kg").Apply(items)

	require.Len(t, items, 2)
}

func TestRemoveItemCommand(t *testing.T) {
	items := []domain.CartItem{{ID: "a"}, {ID: "b"}}
	items = removeItemCommand("a").Apply(items)

	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}

func TestClearCommand(t *testing.T) {
	items := []domain.CartItem{{ID: "a"}, {ID: "b"}}
	assert.Empty(t, clearCommand().Apply(items))
}

func TestRollback_RestoresSnapshotVerbatim(t *testing.T) {
	snapshot := []domain.CartItem{{ID: "a", Quantity: 2}, {ID: "b", Quantity: 1}}
	rollback := Rollback(snapshot)

	mutated := updateQuantityCommand("a", 9).Apply(domain.CloneItems(snapshot))
	mutated = removeItemCommand("b").Apply(mutated)

	assert.Equal(t, snapshot, rollback(mutated))
}

func TestRollback_UnaffectedByLaterSnapshotMutation(t *testing.T) {
	snapshot := []domain.CartItem{{ID: "a", Quantity: 2}}
	rollback := Rollback(snapshot)

	snapshot[0].Quantity = 42

	restored := rollback(nil)
	assert.Equal(t, 2, restored[0].Quantity)
}
