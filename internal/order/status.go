package order

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus is case-insensitive and ignores surrounding space.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown order status %q", v)
	}
	return s, nil
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cod"
	PaymentCard           PaymentMethod = "card"
	PaymentUPI            PaymentMethod = "upi"
	PaymentNetBanking     PaymentMethod = "netbanking"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentCashOnDelivery, PaymentCard, PaymentUPI, PaymentNetBanking:
		return true
	}
	return false
}

// Label is the human readable name shown at checkout.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCashOnDelivery:
		return "Cash on Delivery"
	case PaymentCard:
		return "Card"
	case PaymentUPI:
		return "UPI"
	case PaymentNetBanking:
		return "Net Banking"
	}
	return string(p)
}

func ParsePaymentMethod(v string) (PaymentMethod, error) {
	p := PaymentMethod(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown payment method %q", v)
	}
	return p, nil
}
