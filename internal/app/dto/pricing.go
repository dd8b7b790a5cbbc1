package dto

import (
	domainpricing "quietsummit/internal/domain/pricing"
)

type QuoteView struct {
	BasePrice   MoneyDTO `json:"base_price"`
	AddOnsTotal MoneyDTO `json:"add_ons_total"`
	Subtotal    MoneyDTO `json:"subtotal"`
	Taxes       MoneyDTO `json:"taxes"`
	Total       MoneyDTO `json:"total"`
	Travelers   int      `json:"travelers"`
	Nights      int      `json:"nights,omitempty"`
}

func MapQuote(q domainpricing.Quote) QuoteView {
	return QuoteView{
		BasePrice:   MapMoney(q.BasePrice),
		AddOnsTotal: MapMoney(q.AddOnsTotal),
		Subtotal:    MapMoney(q.Subtotal),
		Taxes:       MapMoney(q.Taxes),
		Total:       MapMoney(q.Total),
		Travelers:   q.Travelers,
		Nights:      q.Nights,
	}
}

type CouponPreview struct {
	Code     string   `json:"code"`
	Discount MoneyDTO `json:"discount"`
	Payable  MoneyDTO `json:"payable"`
}
