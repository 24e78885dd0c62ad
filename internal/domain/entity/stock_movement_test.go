package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func TestSignedQuantity(t *testing.T) {
	cases := []struct {
		typ  entity.MovementType
		in   int
		want int
	}{
		{entity.MovementTypeIn, -4, 4},
		{entity.MovementTypeReleased, 2, 2},
		{entity.MovementTypeOut, 3, -3},
		{entity.MovementTypeReserved, -1, -1},
		{entity.MovementTypeTransfer, -7, -7},
		{entity.MovementTypeAdjustment, 5, 5},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.typ.SignedQuantity(c.in), string(c.typ))
	}
}

func TestInventoryItem_ApplyDejaSaldo(t *testing.T) {
	item := &entity.InventoryItem{QuantityOnHand: 10, ReorderLevel: 8}
	mov := &entity.StockMovement{Quantity: -3}

	item.Apply(mov)

	assert.Equal(t, 7, item.QuantityOnHand)
	assert.Equal(t, 7, mov.BalanceAfter)
	assert.True(t, item.BelowReorderLevel())
	assert.Equal(t, 4, item.Available(3))
}
