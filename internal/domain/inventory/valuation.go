package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dynsoft/pharma-ledger/internal/domain/entity"
)

// Valuation resultado de valorizar el stock de un producto.
type Valuation struct {
	Quantity   int64
	UnitCost   decimal.Decimal
	TotalValue decimal.Decimal
}

// costLayer capa de costo: una entrada del diario con su costo unitario.
type costLayer struct {
	qty  int64
	cost decimal.Decimal
}

// Valuate despacha al método indicado. Un método desconocido se trata como promedio ponderado,
// que es el valor por defecto de las agencias.
func Valuate(method string, movements []*entity.StockMovement) Valuation {
	switch method {
	case entity.ValuationFIFO:
		return FIFO(movements)
	case entity.ValuationLIFO:
		return LIFO(movements)
	default:
		return WeightedAverage(movements)
	}
}

// WeightedAverage costo promedio = Σ(cant × costo de entradas) / Σ cant de entradas;
// cantidad actual = entradas − salidas; valor = cantidad × costo promedio.
func WeightedAverage(movements []*entity.StockMovement) Valuation {
	layers, outbound := splitFlows(movements)
	var inQty int64
	inCost := decimal.Zero
	for _, l := range layers {
		inQty += l.qty
		inCost = inCost.Add(l.cost.Mul(decimal.NewFromInt(l.qty)))
	}
	qty := inQty - outbound
	if inQty == 0 {
		return Valuation{Quantity: qty, UnitCost: decimal.Zero, TotalValue: decimal.Zero}
	}
	avg := inCost.Div(decimal.NewFromInt(inQty))
	return Valuation{
		Quantity:   qty,
		UnitCost:   avg,
		TotalValue: avg.Mul(decimal.NewFromInt(qty)),
	}
}

// FIFO consume las salidas contra las entradas más antiguas primero.
func FIFO(movements []*entity.StockMovement) Valuation {
	layers, outbound := splitFlows(movements)
	return consume(layers, outbound)
}

// LIFO mismo algoritmo que FIFO pero consumiendo las entradas más recientes primero.
func LIFO(movements []*entity.StockMovement) Valuation {
	layers, outbound := splitFlows(movements)
	reversed := make([]costLayer, len(layers))
	for i, l := range layers {
		reversed[len(layers)-1-i] = l
	}
	return consume(reversed, outbound)
}

// consume descuenta outbound de las capas en el orden recibido y valoriza el remanente
// de cada capa a su propio costo.
func consume(layers []costLayer, outbound int64) Valuation {
	remainingOut := outbound
	var qty int64
	value := decimal.Zero
	for _, l := range layers {
		if remainingOut >= l.qty {
			remainingOut -= l.qty
			continue
		}
		available := l.qty - remainingOut
		remainingOut = 0
		qty += available
		value = value.Add(l.cost.Mul(decimal.NewFromInt(available)))
	}
	if qty == 0 {
		return Valuation{Quantity: 0, UnitCost: decimal.Zero, TotalValue: decimal.Zero}
	}
	return Valuation{
		Quantity:   qty,
		UnitCost:   value.Div(decimal.NewFromInt(qty)),
		TotalValue: value,
	}
}

// splitFlows ordena el diario cronológicamente y separa capas de costo (entradas) del total
// de salidas. Devoluciones y reposiciones por baja de venta revierten salidas en lugar de
// abrir una capa nueva.
func splitFlows(movements []*entity.StockMovement) ([]costLayer, int64) {
	sorted := make([]*entity.StockMovement, 0, len(movements))
	for _, m := range movements {
		if m != nil {
			sorted = append(sorted, m)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var layers []costLayer
	var outbound, returned int64
	for _, m := range sorted {
		switch {
		case m.ReversesOutbound():
			returned += m.Quantity
		case m.Quantity > 0:
			cost := decimal.Zero
			if m.UnitCost != nil {
				cost = *m.UnitCost
			}
			layers = append(layers, costLayer{qty: m.Quantity, cost: cost})
		case m.Quantity < 0:
			outbound += -m.Quantity
		}
	}
	outbound -= returned
	if outbound < 0 {
		outbound = 0
	}
	return layers, outbound
}
