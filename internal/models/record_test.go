package models

import (
	"math"
	"testing"
)

func validRecord() Record {
	return Record{
		ID:       "r1",
		Kind:     KindExpense,
		Amount:   12.5,
		Date:     "2025-03-01",
		Category: "food",
	}
}

func TestValidate(t *testing.T) {
	rec := validRecord()
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := map[string]func(*Record){
		"unknown kind":           func(r *Record) { r.Kind = "bribe" },
		"empty kind":             func(r *Record) { r.Kind = "" },
		"unknown payment method": func(r *Record) { r.PaymentMethod = "barter" },
		"zero amount":            func(r *Record) { r.Amount = 0 },
		"negative amount":        func(r *Record) { r.Amount = -3 },
		"NaN amount":             func(r *Record) { r.Amount = math.NaN() },
		"infinite amount":        func(r *Record) { r.Amount = math.Inf(1) },
		"amount over cap":        func(r *Record) { r.Amount = MaxAmount * 2 },
		"bad date format":        func(r *Record) { r.Date = "01/03/2025" },
		"empty date":             func(r *Record) { r.Date = "" },
		"impossible date":        func(r *Record) { r.Date = "2025-02-30" },
		"loan payment no loanId": func(r *Record) { r.LoanPayment = true; r.LoanID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			rec := validRecord()
			mutate(&rec)
			if err := rec.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateTransfer(t *testing.T) {
	rec := Record{ID: "t1", Kind: KindTransfer, Amount: 50, Date: "2025-03-01", FromAccount: "cash", ToAccount: "savings"}
	if err := rec.Validate(); err != nil {
		t.Fatalf("valid transfer rejected: %v", err)
	}

	rec.ToAccount = ""
	if err := rec.Validate(); err == nil {
		t.Fatal("expected error for missing toAccount")
	}

	rec.ToAccount = "cash"
	if err := rec.Validate(); err == nil {
		t.Fatal("expected error for identical endpoints")
	}
}

func TestEffectiveAccount(t *testing.T) {
	rec := validRecord()
	if got := rec.EffectiveAccount(); got != DefaultAccount {
		t.Fatalf("expected baseline account, got %q", got)
	}

	rec.Account = "savings"
	if got := rec.EffectiveAccount(); got != "savings" {
		t.Fatalf("expected savings, got %q", got)
	}
}

func TestMatchesAccount(t *testing.T) {
	rec := validRecord()
	if !rec.MatchesAccount(DefaultAccount) {
		t.Fatal("unset account should match the baseline")
	}
	if rec.MatchesAccount("savings") {
		t.Fatal("unset account should not match savings")
	}

	transfer := Record{Kind: KindTransfer, FromAccount: "cash", ToAccount: "savings"}
	if !transfer.MatchesAccount("cash") || !transfer.MatchesAccount("savings") {
		t.Fatal("transfer should match both endpoints")
	}
	if transfer.MatchesAccount("brokerage") {
		t.Fatal("transfer should not match an uninvolved account")
	}
}
