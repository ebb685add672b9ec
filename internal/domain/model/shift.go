// Package model defines the iiko data the bot reads and the server and
// credential settings it talks to iiko with.
package model

import "github.com/shopspring/decimal"

// ShiftStatus is the lifecycle stage of a cash shift as reported by iiko.
type ShiftStatus string

const (
	// ShiftStatusOpen is a shift still taking orders
	ShiftStatusOpen ShiftStatus = "OPEN"
	// ShiftStatusClosed is a shift closed at the register
	ShiftStatusClosed ShiftStatus = "CLOSED"
	// ShiftStatusAccepted is a closed shift confirmed in the back office
	ShiftStatusAccepted ShiftStatus = "ACCEPTED"
	// ShiftStatusUnaccepted is a closed shift awaiting confirmation
	ShiftStatusUnaccepted ShiftStatus = "UNACCEPTED"
	// ShiftStatusHasWarnings is a closed shift with discrepancies
	ShiftStatusHasWarnings ShiftStatus = "HASWARNINGS"
)

// Label is the operator-facing status: only an open shift is reported as open.
func (s ShiftStatus) Label() string {
	if s == ShiftStatusOpen {
		return "Открыта"
	}
	return "Закрыта"
}

// Shift is one cash register session as returned by /v2/cashshifts/list.
type Shift struct {
	// ID is the shift identifier
	ID string `json:"id"`
	// SessionNumber is the operator-facing shift number
	SessionNumber int64 `json:"sessionNumber"`
	// FiscalNumber is the fiscal register shift number
	FiscalNumber int64 `json:"fiscalNumber"`
	// CashRegNumber identifies the register
	CashRegNumber int64 `json:"cashRegNumber"`
	// CashRegSerial is the register serial number
	CashRegSerial string `json:"cashRegSerial"`
	// OpenDate is when the shift opened, server local time
	OpenDate string `json:"openDate"`
	// CloseDate is nil while the shift is open
	CloseDate *string `json:"closeDate,omitempty"`
	// AcceptDate is nil until the shift is accepted
	AcceptDate *string `json:"acceptDate,omitempty"`
	// ManagerID is the employee who opened the shift
	ManagerID string `json:"managerId"`
	// ResponsibleUserID is the employee in charge, if any
	ResponsibleUserID *string `json:"responsibleUserId,omitempty"`
	// SessionStartCash is the cash in the drawer at opening
	SessionStartCash decimal.Decimal `json:"sessionStartCash"`
	// PayOrders is the total of paid orders
	PayOrders decimal.Decimal `json:"payOrders"`
	// SumWriteoffOrders is the total of written-off orders
	SumWriteoffOrders decimal.Decimal `json:"sumWriteoffOrders"`
	// SalesCash is revenue paid in cash
	SalesCash decimal.Decimal `json:"salesCash"`
	// SalesCredit is revenue on credit
	SalesCredit decimal.Decimal `json:"salesCredit"`
	// SalesCard is revenue paid by card
	SalesCard decimal.Decimal `json:"salesCard"`
	// PayIn is cash deposited into the drawer
	PayIn decimal.Decimal `json:"payIn"`
	// PayOut is cash taken from the drawer
	PayOut decimal.Decimal `json:"payOut"`
	// PayIncome is other income
	PayIncome decimal.Decimal `json:"payIncome"`
	// CashRemain is the closing cash balance; invalid when not reported
	CashRemain decimal.NullDecimal `json:"cashRemain"`
	// CashDiff is the difference between counted and expected cash
	CashDiff decimal.Decimal `json:"cashDiff"`
	// SessionStatus is the lifecycle stage
	SessionStatus ShiftStatus `json:"sessionStatus"`
	// ConceptionID is the restaurant concept, if any
	ConceptionID *string `json:"conceptionId,omitempty"`
}
