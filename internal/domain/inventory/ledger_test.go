package inventory_test

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gelp-api/internal/domain"
	"github.com/jhoicas/gelp-api/internal/domain/inventory"
)

func TestApplyDelta(t *testing.T) {
	next, err := inventory.ApplyDelta("a", 10, -4)
	require.NoError(t, err)
	assert.Equal(t, 6, next)

	next, err = inventory.ApplyDelta("a", 3, -5)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 3, next, "no debe recortar a cero")

	next, err = inventory.ApplyDelta("a", 0, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, next)
}

func TestApplyDelta_Bounds(t *testing.T) {
	next, err := inventory.ApplyDelta("a", 1, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 1, next)

	_, err = inventory.ApplyDelta("a", inventory.MaxQuantity, 1)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "delta", verr.Field)

	_, err = inventory.ApplyDelta("a", 1, math.MinInt)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	next, err = inventory.ApplyDelta("a", inventory.MaxQuantity-1, 1)
	require.NoError(t, err)
	assert.Equal(t, inventory.MaxQuantity, next)
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(0))
	assert.NoError(t, inventory.ValidateQuantity(inventory.MaxQuantity))
	assert.ErrorIs(t, inventory.ValidateQuantity(-1), domain.ErrInvalidQuantity)
	assert.ErrorIs(t, inventory.ValidateQuantity(inventory.MaxQuantity+1), domain.ErrInvalidInput)
}

func TestValidateDelta(t *testing.T) {
	assert.NoError(t, inventory.ValidateDelta(-inventory.MaxQuantity))
	assert.NoError(t, inventory.ValidateDelta(inventory.MaxQuantity))
	assert.ErrorIs(t, inventory.ValidateDelta(math.MaxInt), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateDelta(-inventory.MaxQuantity-1), domain.ErrInvalidInput)
}

func TestMergeDeltas_SumsAndSorts(t *testing.T) {
	merged := inventory.MergeDeltas([]inventory.Delta{
		{ProductID: "c", Amount: -1},
		{ProductID: "a", Amount: -2},
		{ProductID: "c", Amount: -3},
		{ProductID: "b", Amount: 5},
		{ProductID: "b", Amount: -5},
	})
	assert.Equal(t, []inventory.Delta{
		{ProductID: "a", Amount: -2},
		{ProductID: "b", Amount: 0},
		{ProductID: "c", Amount: -4},
	}, merged)
}

func TestPlan_AllOrNothing(t *testing.T) {
	current := map[string]int{"a": 10, "b": 0}
	merged := inventory.MergeDeltas([]inventory.Delta{
		{ProductID: "a", Amount: -2},
		{ProductID: "b", Amount: -3},
	})
	next, err := inventory.Plan(current, merged)
	assert.Nil(t, next)

	var short *domain.InsufficientStockError
	require.True(t, errors.As(err, &short))
	require.Len(t, short.Shortages, 1)
	assert.Equal(t, domain.StockShortage{ProductID: "b", Requested: 3, Available: 0}, short.Shortages[0])
}

func TestPlan_RejectsOverflow(t *testing.T) {
	next, err := inventory.Plan(map[string]int{"a": 10}, []inventory.Delta{{ProductID: "a", Amount: inventory.MaxQuantity}})
	assert.Nil(t, next)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestPlan_MissingRowIsZero(t *testing.T) {
	next, err := inventory.Plan(map[string]int{}, []inventory.Delta{{ProductID: "x", Amount: 4}})
	require.NoError(t, err)
	assert.Equal(t, 4, next["x"])
}

func TestCostCalculator(t *testing.T) {
	// 10 u a 2.00 + 10 u a 4.00 = 3.00
	got := inventory.CostCalculator(10, decimal.NewFromInt(2), 10, decimal.NewFromInt(4))
	assert.True(t, got.Equal(decimal.NewFromInt(3)), got.String())

	assert.True(t, inventory.CostCalculator(0, decimal.Zero, 0, decimal.NewFromInt(9)).IsZero())
}
