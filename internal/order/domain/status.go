package domain

import "github.com/dwikikusuma/storefront/pkg/apperr"

type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

var ErrUnknownStatus = apperr.Validation("unknown status")

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// transitions lists the statuses reachable from each status. Fulfilment only
// moves forward (shipped may be skipped), any live order can be cancelled,
// and cancelled is terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusShipped, StatusDelivered, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {StatusCancelled},
	StatusCancelled: nil,
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentStatusFor encodes that cash on delivery is paid only on delivery.
func PaymentStatusFor(s Status) PaymentStatus {
	if s == StatusDelivered {
		return PaymentPaid
	}
	return PaymentUnpaid
}

// Transition validates a move and returns the resulting payment status.
func Transition(from, to Status) (PaymentStatus, error) {
	if !CanTransition(from, to) {
		return "", apperr.InvalidTransition(string(from), string(to))
	}
	return PaymentStatusFor(to), nil
}
