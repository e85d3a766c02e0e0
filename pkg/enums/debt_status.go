package enums

import "fmt"

// DebtStatus tracks the lifecycle of a debt.
//
// The reconciliation engine only ever moves a debt from PENDING to PAID.
// OVERDUE and CANCELLED are administrative overlays stamped by collaborators
// (the overdue sweep, back-office tooling) and never replace PAID.
type DebtStatus string

const (
	DebtStatusPending   DebtStatus = "PENDING"
	DebtStatusPaid      DebtStatus = "PAID"
	DebtStatusOverdue   DebtStatus = "OVERDUE"
	DebtStatusCancelled DebtStatus = "CANCELLED"
)

var validDebtStatuses = []DebtStatus{
	DebtStatusPending,
	DebtStatusPaid,
	DebtStatusOverdue,
	DebtStatusCancelled,
}

// String implements fmt.Stringer.
func (d DebtStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DebtStatus.
func (d DebtStatus) IsValid() bool {
	for _, candidate := range validDebtStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the reconciliation engine accepts further
// payments against a debt in this status.
func (d DebtStatus) IsTerminal() bool {
	return d == DebtStatusPaid
}

// ParseDebtStatus converts raw input into a DebtStatus.
func ParseDebtStatus(value string) (DebtStatus, error) {
	for _, candidate := range validDebtStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid debt status %q", value)
}
