package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-09")
	if err != nil || d != NewDate(2025, 6, 9) {
		t.Fatalf("unexpected %v %v", d, err)
	}
	d, err = ParseDate("2025-06-09T23:10:00+02:00")
	if err != nil || d != NewDate(2025, 6, 9) {
		t.Fatalf("timestamp should keep its calendar date, got %v %v", d, err)
	}
	if _, err := ParseDate("09/06/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestIsoWeekday(t *testing.T) {
	cases := map[Date]int{
		NewDate(2025, 6, 9):  1, // Monday
		NewDate(2025, 6, 13): 5,
		NewDate(2025, 6, 8):  7, // Sunday
	}
	for d, want := range cases {
		if got := d.IsoWeekday(); got != want {
			t.Fatalf("%s: got %d want %d", d, got, want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	e := Expense{ID: 1, Description: "Coffee", Amount: Cents(350), Date: NewDate(2025, 3, 2)}
	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"date":"2025-03-02"`) {
		t.Fatalf("date not encoded at day precision: %s", out)
	}
	var back Expense
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Date != e.Date || back.Amount != e.Amount {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestYearMonth(t *testing.T) {
	m, err := ParseYearMonth("2025-06")
	if err != nil || m != NewYearMonth(2025, time.June) {
		t.Fatalf("unexpected %v %v", m, err)
	}
	m, err = ParseYearMonth("2025-06-15")
	if err != nil || m.String() != "2025-06" {
		t.Fatalf("day should be dropped, got %v %v", m, err)
	}
	if _, err := ParseYearMonth("June"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	dec := NewYearMonth(2024, time.December)
	if dec.Next() != NewYearMonth(2025, time.January) {
		t.Fatalf("next of december: %v", dec.Next())
	}
	if NewYearMonth(2025, time.January).Prev() != dec {
		t.Fatalf("prev of january wrong")
	}
	if dec.End() != NewDate(2024, 12, 31) {
		t.Fatalf("end of december: %v", dec.End())
	}
	if !dec.Contains(NewDate(2024, 12, 1)) || dec.Contains(NewDate(2025, 1, 1)) {
		t.Fatalf("contains wrong")
	}
	if (YearMonth{Year: 2025, Month: 13}).Validate() == nil {
		t.Fatalf("month 13 should be invalid")
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Description: "a", Amount: Money{Cents: 1}}, // zero date
		{Date: NewDate(2025, 1, 1), Description: "", Amount: Money{Cents: 1}},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 0}},
		{Date: NewDate(2025, 1, 1), Description: strings.Repeat("x", 201), Amount: Money{Cents: 1}},
	}
	for i, e := range bads {
		if err := e.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}
