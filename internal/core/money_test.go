package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1/3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"0", 0},
		{"-0.5", -50},
		{"-1.005", -101},
		{"123.45", 12345},
		{"1.5e2", 15000},
		{"1E-2", 1},
		{"99999999999.99", 9999999999999},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if err != nil || got.Cents != tc.out {
			t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
		}
	}
	if _, err := ParseAmount("1e30"); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestParseBudgetAmount(t *testing.T) {
	if m, err := ParseBudgetAmount("0"); err != nil || m.Cents != 0 {
		t.Fatalf("zero budget should be valid, got %v %v", m, err)
	}
	_, err := ParseBudgetAmount("-10")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = ParseBudgetAmount("ten")
	if !errors.Is(err, ErrValidation) || !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected validation error wrapping ErrInvalidAmount, got %v", err)
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		5:      "0.05",
		12345:  "123.45",
		-1205:  "-12.05",
		100000: "1000.00",
	}
	for cents, want := range cases {
		if got := Cents(cents).String(); got != want {
			t.Fatalf("Cents(%d).String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var v struct {
		Amount Money `json:"amount"`
	}
	// 0.1 + 0.2 style values must not drift
	if err := json.Unmarshal([]byte(`{"amount": 123.45}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.Amount.Cents != 12345 {
		t.Fatalf("expected 12345 cents, got %d", v.Amount.Cents)
	}
	if err := json.Unmarshal([]byte(`{"amount": "7,5"}`), &v); err != nil || v.Amount.Cents != 750 {
		t.Fatalf("quoted amount: %d %v", v.Amount.Cents, err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"amount":7.50}` {
		t.Fatalf("unexpected json %s", out)
	}
	if err := json.Unmarshal([]byte(`{"amount": true}`), &v); err == nil {
		t.Fatalf("expected error for boolean amount")
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: 0}).ValidateNonNegative(); err != nil {
		t.Fatalf("zero should be non-negative, got %v", err)
	}
}

func TestSum(t *testing.T) {
	got := Sum(Cents(10), Cents(20), Cents(1))
	if got.Cents != 31 {
		t.Fatalf("expected 31, got %d", got.Cents)
	}
}
