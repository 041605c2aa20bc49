// Package inventory contiene las reglas puras del libro de stock: no negatividad y
// agrupación determinística de deltas. No depende de almacenamiento.
package inventory

import (
	"math"
	"sort"

	"github.com/jhoicas/gelp-api/internal/domain"
)

// MaxQuantity tope de una cantidad o de un delta; coincide con la columna INTEGER de stock.
const MaxQuantity = math.MaxInt32

// Delta cambio relativo de stock para un producto (negativo para ventas).
type Delta struct {
	ProductID string
	Amount    int
}

// ApplyDelta devuelve current+delta o ErrInsufficientStock si el resultado sería negativo.
// Nunca recorta a cero.
// Un delta o un resultado por encima de MaxQuantity es un ValidationError.
func ApplyDelta(productID string, current, delta int) (int, error) {
	if err := ValidateDelta(delta); err != nil {
		return current, err
	}
	next := int64(current) + int64(delta)
	if next > MaxQuantity {
		return current, errResultTooLarge
	}
	if next < 0 {
		return current, &domain.InsufficientStockError{Shortages: []domain.StockShortage{
			{ProductID: productID, Requested: -delta, Available: current},
		}}
	}
	return int(next), nil
}

var errResultTooLarge = domain.Invalid("delta", "la cantidad resultante excede el máximo")

// ValidateQuantity rechaza cantidades absolutas negativas o mayores que MaxQuantity.
func ValidateQuantity(q int) error {
	if q < 0 {
		return domain.ErrInvalidQuantity
	}
	if q > MaxQuantity {
		return domain.Invalid("quantity", "excede el máximo")
	}
	return nil
}

// ValidateDelta rechaza deltas cuyo valor absoluto supera MaxQuantity.
func ValidateDelta(d int) error {
	if d > MaxQuantity || d < -MaxQuantity {
		return domain.Invalid("delta", "fuera de rango")
	}
	return nil
}

// MergeDeltas suma los deltas del mismo producto y los ordena por ProductID.
// El orden fijo es el orden de adquisición de locks: dos grupos concurrentes nunca se cruzan.
// Los productos cuyo delta neto es cero se conservan para validar su existencia.
func MergeDeltas(deltas []Delta) []Delta {
	byID := make(map[string]int, len(deltas))
	for _, d := range deltas {
		byID[d.ProductID] += d.Amount
	}
	out := make([]Delta, 0, len(byID))
	for id, amount := range byID {
		out = append(out, Delta{ProductID: id, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// Plan calcula las cantidades finales de un grupo de deltas ya agrupados (MergeDeltas)
// contra las cantidades actuales. Si algún producto quedaría negativo devuelve un
// InsufficientStockError con todos los faltantes y ninguna cantidad.
func Plan(current map[string]int, merged []Delta) (map[string]int, error) {
	next := make(map[string]int, len(merged))
	var shortages []domain.StockShortage
	for _, d := range merged {
		if err := ValidateDelta(d.Amount); err != nil {
			return nil, err
		}
		have := current[d.ProductID]
		sum := int64(have) + int64(d.Amount)
		if sum > MaxQuantity {
			return nil, errResultTooLarge
		}
		if sum < 0 {
			shortages = append(shortages, domain.StockShortage{
				ProductID: d.ProductID, Requested: -d.Amount, Available: have,
			})
			continue
		}
		next[d.ProductID] = int(sum)
	}
	if len(shortages) > 0 {
		return nil, &domain.InsufficientStockError{Shortages: shortages}
	}
	return next, nil
}
