package domain

// CashOnDelivery is the only option whose order status is managed here.
const CashOnDelivery = "cod"

type PaymentOption struct {
	Code     string
	Name     string
	IsActive bool
}
