package dto

import (
	"time"

	domainbooking "quietsummit/internal/domain/booking"
	"quietsummit/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{Amount: value.Amount, Currency: value.Currency}
}

type CouponDTO struct {
	CouponID string   `json:"coupon_id"`
	Code     string   `json:"code"`
	Discount MoneyDTO `json:"discount"`
}

type PaymentDTO struct {
	Status           string     `json:"status"`
	GatewayOrderID   string     `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
}

type BookingView struct {
	ID         string     `json:"id"`
	ListingID  string     `json:"listing_id"`
	Kind       string     `json:"kind"`
	TravelerID string     `json:"traveler_id"`
	HostID     string     `json:"host_id,omitempty"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   time.Time  `json:"check_out"`
	Travelers  int        `json:"travelers"`
	AddOns     []string   `json:"add_ons,omitempty"`
	Subtotal   MoneyDTO   `json:"subtotal"`
	Discount   MoneyDTO   `json:"discount"`
	Total      MoneyDTO   `json:"total"`
	Coupon     *CouponDTO `json:"coupon,omitempty"`
	Status     string     `json:"status"`
	Payment    PaymentDTO `json:"payment"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type BookingCollection struct {
	Items []BookingView `json:"items"`
}

func MapBooking(b *domainbooking.Booking) BookingView {
	view := BookingView{
		ID:         string(b.ID),
		ListingID:  string(b.ListingID),
		Kind:       string(b.Kind),
		TravelerID: b.TravelerID,
		HostID:     string(b.HostID),
		CheckIn:    b.Range.CheckIn,
		CheckOut:   b.Range.CheckOut,
		Travelers:  b.Travelers,
		AddOns:     append([]string(nil), b.AddOns...),
		Subtotal:   MapMoney(b.Charges.Subtotal),
		Discount:   MapMoney(b.Charges.Discount),
		Total:      MapMoney(b.Charges.Total),
		Status:     string(b.State),
		Notes:      b.Notes,
		CreatedAt:  b.CreatedAt,
		Payment: PaymentDTO{
			Status:           string(b.Payment.Status),
			GatewayOrderID:   b.Payment.GatewayOrderID,
			GatewayPaymentID: b.Payment.GatewayPaymentID,
		},
	}
	if !b.Payment.PaidAt.IsZero() {
		paidAt := b.Payment.PaidAt
		view.Payment.PaidAt = &paidAt
	}
	if b.Coupon != nil {
		view.Coupon = &CouponDTO{
			CouponID: b.Coupon.CouponID,
			Code:     b.Coupon.Code,
			Discount: MapMoney(b.Coupon.Discount),
		}
	}
	return view
}

func MapBookings(items []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]BookingView, 0, len(items))}
	for _, b := range items {
		out.Items = append(out.Items, MapBooking(b))
	}
	return out
}
