package domain

const (
	RoleSuperadmin   = "SUPERADMIN"
	RoleAdminKos     = "ADMINKOS"
	RoleReceptionist = "RECEPTIONIST"
	RoleCustomer     = "CUSTOMER"
)

const (
	LeaseDaily     = "DAILY"
	LeaseWeekly    = "WEEKLY"
	LeaseMonthly   = "MONTHLY"
	LeaseQuarterly = "QUARTERLY"
	LeaseYearly    = "YEARLY"
)

// LeaseDurationDays uses a simplified calendar: a month is always 30 days,
// a year always 365, regardless of actual month lengths.
var LeaseDurationDays = map[string]int{
	LeaseDaily:     1,
	LeaseWeekly:    7,
	LeaseMonthly:   30,
	LeaseQuarterly: 90,
	LeaseYearly:    365,
}

const (
	BookingUnpaid      = "UNPAID"
	BookingDepositPaid = "DEPOSIT_PAID"
	BookingConfirmed   = "CONFIRMED"
	BookingCheckedIn   = "CHECKED_IN"
	BookingCompleted   = "COMPLETED"
	BookingCancelled   = "CANCELLED"
	BookingExpired     = "EXPIRED"
)

const (
	PaymentPending  = "PENDING"
	PaymentSuccess  = "SUCCESS"
	PaymentFailed   = "FAILED"
	PaymentExpired  = "EXPIRED"
	PaymentRefunded = "REFUNDED"
)

const (
	PaymentTypeDeposit = "DEPOSIT"
	PaymentTypeFull    = "FULL"
)

const (
	DepositNone       = "NONE"
	DepositFixed      = "FIXED"
	DepositPercentage = "PERCENTAGE"
)

// BlockingStatuses are booking statuses that reserve a room against other
// bookings. UNPAID, CANCELLED and EXPIRED never block.
var BlockingStatuses = []string{
	BookingDepositPaid,
	BookingConfirmed,
	BookingCheckedIn,
	BookingCompleted,
}

func IsBlockingStatus(status string) bool {
	for _, s := range BlockingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func IsStaffRole(role string) bool {
	return role == RoleSuperadmin || role == RoleAdminKos || role == RoleReceptionist
}

func IsValidLeaseType(lease string) bool {
	_, ok := LeaseDurationDays[lease]
	return ok
}
