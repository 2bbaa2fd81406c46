package dto

import "github.com/shopspring/decimal"

// ProductValuationDTO valorización de un producto.
type ProductValuationDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Stock       int64           `json:"stock"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalValue  decimal.Decimal `json:"total_value"`
}

// ValuationResponse valorización del inventario de la agencia.
type ValuationResponse struct {
	Method        string                `json:"method"`
	Currency      string                `json:"currency"`
	TotalValue    decimal.Decimal       `json:"total_value"`
	ProductsCount int                   `json:"products_count"`
	PerProduct    []ProductValuationDTO `json:"per_product"`
}
