package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type (
	// Date is a calendar date at day precision. The embedded time is always
	// midnight UTC so two Dates for the same day compare equal with ==.
	Date struct {
		time.Time
	}

	// YearMonth identifies a calendar month.
	YearMonth struct {
		Year  int
		Month time.Month
	}

	Category struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}

	Expense struct {
		ID          int64     `json:"id"`
		Description string    `json:"description"`
		Amount      Money     `json:"amount"`
		Date        Date      `json:"date"`
		Category    *Category `json:"category,omitempty"`
	}

	// DatedAmount is one expense's contribution on one day.
	DatedAmount struct {
		Date   Date  `json:"date"`
		Amount Money `json:"amount"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidID        = errors.New("invalid id")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the clock part of t, keeping the calendar date in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate accepts YYYY-MM-DD. RFC 3339 timestamps are accepted too and
// truncated to their date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// IsoWeekday returns the weekday number with Monday = 1 and Sunday = 7.
func (d Date) IsoWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalJSON overrides the promoted time.Time encoding, which would carry
// a clock and zone.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	return d.UnmarshalText([]byte(s))
}

func NewYearMonth(year int, month time.Month) YearMonth {
	return YearMonth{Year: year, Month: month}
}

// MonthOf returns the calendar month containing d.
func MonthOf(d Date) YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

// CurrentMonth returns the local calendar month.
func CurrentMonth() YearMonth {
	return MonthOf(Today())
}

// ParseYearMonth accepts YYYY-MM; a full YYYY-MM-DD date has its day dropped.
func ParseYearMonth(s string) (YearMonth, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return YearMonth{Year: t.Year(), Month: t.Month()}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return YearMonth{Year: t.Year(), Month: t.Month()}, nil
	}
	return YearMonth{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

func (m YearMonth) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m YearMonth) Validate() error {
	if m.Year < 1 || m.Year > 9999 || m.Month < time.January || m.Month > time.December {
		return ErrInvalidMonth
	}
	return nil
}

// Start returns the first day of the month.
func (m YearMonth) Start() Date {
	return NewDate(m.Year, int(m.Month), 1)
}

// End returns the last day of the month.
func (m YearMonth) End() Date {
	return m.Next().Start().AddDays(-1)
}

func (m YearMonth) Next() YearMonth {
	return MonthOf(Date{Time: m.Start().AddDate(0, 1, 0)})
}

func (m YearMonth) Prev() YearMonth {
	return MonthOf(Date{Time: m.Start().AddDate(0, -1, 0)})
}

func (m YearMonth) Before(o YearMonth) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Contains reports whether d falls inside the month.
func (m YearMonth) Contains(d Date) bool {
	return MonthOf(d) == m
}

func (m YearMonth) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m YearMonth) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *YearMonth) UnmarshalText(b []byte) error {
	parsed, err := ParseYearMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (c Category) Validate() error {
	if c.ID <= 0 {
		return ErrInvalidID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// SameCategory compares two optional categories by id.
func SameCategory(a, b *Category) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.ID == b.ID
}

// DatedAmount projects the expense onto the aggregator's input.
func (e Expense) DatedAmount() DatedAmount {
	return DatedAmount{Date: e.Date, Amount: e.Amount}
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return NewValidationError("date", err)
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return NewValidationError("description", ErrEmptyDescription)
	}
	if len(e.Description) > 200 {
		return NewValidationError("description", errors.New("description too long (max 200 characters)"))
	}
	if err := e.Amount.Validate(); err != nil {
		return NewValidationError("amount", err)
	}
	return nil
}

// DatedAmounts projects a list of expenses onto the aggregator's input.
func DatedAmounts(expenses []Expense) []DatedAmount {
	out := make([]DatedAmount, len(expenses))
	for i, e := range expenses {
		out[i] = e.DatedAmount()
	}
	return out
}
