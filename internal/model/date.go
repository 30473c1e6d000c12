package model

import (
    "database/sql/driver"
    "encoding/json"
    "fmt"
    "strings"
    "time"
)

// DateLayout is the on-disk and on-wire format of every calendar date
// in the hotel schema (DOB, bookedDate, arrivalDate, departureDay).
const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day.  It is stored as
// YYYY-MM-DD text so that lexical and chronological order agree on
// every engine.  Drivers that hand back time.Time for DATE columns
// (go-sqlite3 by declared type, mysql with parseTime) are accepted by
// Scan as well.
type Date struct {
    time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
    y, m, d := t.UTC().Date()
    return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
    t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
    if err != nil {
        return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
    }
    return Date{t}, nil
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date { return Date{d.Time.AddDate(0, 0, n)} }

// DaysUntil returns the number of whole days from d to o.
func (d Date) DaysUntil(o Date) int { return int(o.Time.Sub(d.Time).Hours() / 24) }

// String formats the date as YYYY-MM-DD.
func (d Date) String() string { return d.Time.Format(DateLayout) }

// Value implements driver.Valuer so dates are always bound as text.
func (d Date) Value() (driver.Value, error) { return d.String(), nil }

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
    switch v := src.(type) {
    case nil:
        *d = Date{}
        return nil
    case time.Time:
        *d = NewDate(v)
        return nil
    case string:
        return d.scanText(v)
    case []byte:
        return d.scanText(string(v))
    }
    return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) scanText(s string) error {
    if len(s) > len(DateLayout) {
        s = s[:len(DateLayout)]
    }
    parsed, err := ParseDate(s)
    if err != nil {
        return err
    }
    *d = parsed
    return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
    if d.IsZero() {
        return []byte("null"), nil
    }
    return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
    var s string
    if err := json.Unmarshal(b, &s); err != nil {
        return err
    }
    if s == "" {
        *d = Date{}
        return nil
    }
    parsed, err := ParseDate(s)
    if err != nil {
        return err
    }
    *d = parsed
    return nil
}
