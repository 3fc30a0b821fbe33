package domain

// bookingTransitions whitelists every legal booking status change. Terminal
// states (COMPLETED, CANCELLED, EXPIRED) have no outgoing edges.
var bookingTransitions = map[string][]string{
	BookingUnpaid:      {BookingDepositPaid, BookingConfirmed, BookingCancelled, BookingExpired},
	BookingDepositPaid: {BookingConfirmed, BookingCancelled},
	BookingConfirmed:   {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn:   {BookingCompleted},
	BookingCompleted:   {},
	BookingCancelled:   {},
	BookingExpired:     {},
}

// ValidTransition reports whether a booking may move from current to next.
// Every handler that mutates booking status must consult this before writing.
func ValidTransition(current, next string) bool {
	for _, s := range bookingTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// IsTerminalBookingStatus reports whether a booking can no longer change.
func IsTerminalBookingStatus(status string) bool {
	return len(bookingTransitions[status]) == 0 && knownBookingStatus(status)
}

func knownBookingStatus(status string) bool {
	_, ok := bookingTransitions[status]
	return ok
}

// IsTerminalPaymentStatus reports whether a payment has settled one way or
// another; only PENDING payments may still change.
func IsTerminalPaymentStatus(status string) bool {
	return status != PaymentPending
}
