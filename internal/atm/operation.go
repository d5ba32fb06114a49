// Package atm is the transaction orchestrator: terminals compose the
// security and bank services into the four client-facing operations and
// fan every attempt out to the notification hub.
package atm

// Operation enumerates the terminal operations. The zero value is an
// explicit uninitialized sentinel so a forgotten field is visible in
// notifications instead of silently reading as a deposit.
type Operation int

const (
	OpUninitialized Operation = iota
	OpDeposit
	OpBalance
	OpWithdraw
	OpTransfer
)

func (o Operation) String() string {
	switch o {
	case OpDeposit:
		return "DEPOSIT"
	case OpBalance:
		return "BALANCE"
	case OpWithdraw:
		return "WITHDRAW"
	case OpTransfer:
		return "TRANSFER"
	default:
		return "UNINITIALIZED"
	}
}
