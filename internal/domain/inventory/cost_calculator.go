package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Con stock actual negativo o nulo el costo de la entrada reemplaza al anterior.
func WeightedAverageCost(onHand int, currentCost decimal.Decimal, inQty int, inCost decimal.Decimal) decimal.Decimal {
	if inQty <= 0 {
		return currentCost
	}
	if onHand <= 0 {
		return inCost
	}
	stock := decimal.NewFromInt(int64(onHand))
	qty := decimal.NewFromInt(int64(inQty))
	num := stock.Mul(currentCost).Add(qty.Mul(inCost))
	return num.Div(stock.Add(qty)).Round(4)
}
