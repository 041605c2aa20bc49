package inventory

import "github.com/shopspring/decimal"

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual int, costoActual decimal.Decimal, cantEntrada int, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual + cantEntrada
	if sum <= 0 {
		return decimal.Zero
	}
	actual := decimal.NewFromInt(int64(stockActual))
	entrada := decimal.NewFromInt(int64(cantEntrada))
	num := actual.Mul(costoActual).Add(entrada.Mul(costoEntrada))
	return num.Div(decimal.NewFromInt(int64(sum))).Round(4)
}
