package models

import (
	"math"
	"time"

	"github.com/finlog-app/finlog/internal/errs"
)

type RecordKind string

const (
	KindIncome           RecordKind = "income"
	KindExpense          RecordKind = "expense"
	KindTransfer         RecordKind = "transfer"
	KindInvestment       RecordKind = "investment"
	KindInvestmentProfit RecordKind = "investment_profit"
	KindLoan             RecordKind = "loan"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
	PaymentOther  PaymentMethod = "other"
)

const (
	// DefaultAccount is the baseline account assumed when a record carries none.
	DefaultAccount = "cash"

	// MaxAmount caps a single record's magnitude.
	MaxAmount = 1e12

	// DateLayout is the calendar-date wire format (no time component).
	DateLayout = "2006-01-02"
)

// Record is one financial transaction owned by exactly one identity.
// Identity is immutable once assigned; content fields are mutable.
type Record struct {
	ID            string        `json:"id"`
	OwnerID       string        `json:"-"` // derived from the bearer token, never from the wire
	Kind          RecordKind    `json:"kind"`
	Amount        float64       `json:"amount"`
	Date          string        `json:"date"` // YYYY-MM-DD
	Category      string        `json:"category"`
	Account       string        `json:"account,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Recurrence    string        `json:"recurrence,omitempty"`
	FromAccount   string        `json:"fromAccount,omitempty"`
	ToAccount     string        `json:"toAccount,omitempty"`
	LoanPayment   bool          `json:"loanPayment,omitempty"`
	LoanID        string        `json:"loanId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt,omitempty"`
	UpdatedAt     time.Time     `json:"updatedAt,omitempty"`
}

var validKinds = map[RecordKind]bool{
	KindIncome:           true,
	KindExpense:          true,
	KindTransfer:         true,
	KindInvestment:       true,
	KindInvestmentProfit: true,
	KindLoan:             true,
}

var validPaymentMethods = map[PaymentMethod]bool{
	"":            true,
	PaymentCash:   true,
	PaymentDebit:  true,
	PaymentCredit: true,
	PaymentOther:  true,
}

// Validate rejects malformed records before any mutation is attempted.
func (r *Record) Validate() error {
	if !validKinds[r.Kind] {
		return errs.NewValidationError("unknown record kind: " + string(r.Kind))
	}
	if !validPaymentMethods[r.PaymentMethod] {
		return errs.NewValidationError("unknown payment method: " + string(r.PaymentMethod))
	}
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) {
		return errs.NewValidationError("amount must be finite")
	}
	if r.Amount <= 0 {
		return errs.NewValidationError("amount must be positive")
	}
	if r.Amount > MaxAmount {
		return errs.NewValidationError("amount exceeds maximum magnitude")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return errs.NewValidationError("date must be YYYY-MM-DD")
	}
	if r.Kind == KindTransfer {
		if r.FromAccount == "" || r.ToAccount == "" {
			return errs.NewValidationError("transfer requires both fromAccount and toAccount")
		}
		if r.FromAccount == r.ToAccount {
			return errs.NewValidationError("transfer endpoints must differ")
		}
	}
	if r.LoanPayment && r.LoanID == "" {
		return errs.NewValidationError("loan payment requires loanId")
	}
	return nil
}

// EffectiveAccount returns the account a non-transfer record belongs to,
// falling back to the baseline account when unset.
func (r *Record) EffectiveAccount() string {
	if r.Account == "" {
		return DefaultAccount
	}
	return r.Account
}

// MatchesAccount reports whether the record participates in the given account.
// A transfer matches if either endpoint equals it.
func (r *Record) MatchesAccount(account string) bool {
	if r.Kind == KindTransfer {
		return r.FromAccount == account || r.ToAccount == account
	}
	return r.EffectiveAccount() == account
}
