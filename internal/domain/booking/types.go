package booking

// Status is the authoritative booking lifecycle. Transitions are validated by
// CanTransition; anything else is rejected at the usecase layer.
type Status string

const (
	StatusHeld                 Status = "held"
	StatusAwaitingVerification Status = "awaiting_verification"
	StatusPaidDeposit          Status = "paid_deposit"
	StatusConsumed             Status = "consumed"
	StatusExpired              Status = "expired"
	StatusCancelledByUser      Status = "cancelled_by_user"
	StatusCancelledBySchool    Status = "cancelled_by_school"
	StatusRefundedDeposit      Status = "refunded_deposit"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusHeld, StatusAwaitingVerification, StatusPaidDeposit, StatusConsumed,
		StatusExpired, StatusCancelledByUser, StatusCancelledBySchool, StatusRefundedDeposit:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusConsumed, StatusExpired, StatusCancelledByUser,
		StatusCancelledBySchool, StatusRefundedDeposit:
		return true
	default:
		return false
	}
}

// HoldsSeats reports whether a booking in s still occupies seats on its slot.
func (s Status) HoldsSeats() bool {
	switch s {
	case StatusHeld, StatusAwaitingVerification, StatusPaidDeposit, StatusConsumed:
		return true
	default:
		return false
	}
}

var transitions = map[Status][]Status{
	StatusHeld: {
		StatusAwaitingVerification,
		StatusPaidDeposit,
		StatusExpired,
		StatusCancelledByUser,
		StatusCancelledBySchool,
	},
	StatusAwaitingVerification: {
		StatusPaidDeposit,
		StatusExpired,
		StatusCancelledByUser,
		StatusCancelledBySchool,
	},
	StatusPaidDeposit: {
		StatusConsumed,
		StatusRefundedDeposit,
	},
}

func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TransitionReleasesSeats reports whether moving from -> to must give the
// claimed seats back to the slot. The asymmetry is the core correctness
// property of the engine: every exit from held/awaiting_verification into a
// non-paid terminal state releases exactly once, entering paid_deposit or
// consumed never releases.
func TransitionReleasesSeats(from, to Status) bool {
	if !CanTransition(from, to) {
		return false
	}
	switch to {
	case StatusExpired, StatusCancelledByUser, StatusCancelledBySchool, StatusRefundedDeposit:
		return true
	default:
		return false
	}
}
