package models

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentFailed   PaymentStatus = "failed"
)

type GateState string

const (
	GateIdle           GateState = "idle"
	GateCheckoutOpened GateState = "checkout_opened"
	GatePolling        GateState = "polling"
	GateApproved       GateState = "approved"
	GateFailed         GateState = "failed"
	GateExpired        GateState = "expired"
)

// Terminal reports whether the gate has stopped polling for good.
func (s GateState) Terminal() bool {
	switch s {
	case GateApproved, GateFailed, GateExpired:
		return true
	}
	return false
}
