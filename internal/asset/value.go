package asset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind is the dynamic type held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindText
	KindNumber
	KindTime
)

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	kind Kind
	text string
	num  float64
	tm   time.Time
}

// Missing returns the missing value.
func Missing() Value { return Value{} }

// Text returns a text value; the empty string is missing.
func Text(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{kind: KindText, text: s}
}

// Number returns a numeric value; NaN and infinities are missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{kind: KindNumber, num: f}
}

// Time returns a date value; the zero time is missing.
func Time(t time.Time) Value {
	if t.IsZero() {
		return Value{}
	}
	return Value{kind: KindTime, tm: t}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric content and whether the value is a number.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Int returns the numeric content truncated to an integer.
func (v Value) Int() (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return int(v.num), true
}

// TimeValue returns the date content and whether the value is a date.
func (v Value) TimeValue() (time.Time, bool) {
	if v.kind != KindTime {
		return time.Time{}, false
	}
	return v.tm, true
}

// String is the comparison form used by filters: numbers without trailing
// zeros, dates as YYYY-MM-DD, missing as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		if v.tm.Hour() == 0 && v.tm.Minute() == 0 && v.tm.Second() == 0 {
			return v.tm.Format("2006-01-02")
		}
		return v.tm.Format("2006-01-02 15:04:05")
	}
	return ""
}

// Interface returns the Go value for writers: string, float64, time.Time or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindTime:
		return v.tm
	}
	return nil
}

// Equal compares kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.tm.Equal(o.tm)
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return json.Marshal(v.num)
	case KindText, KindTime:
		return json.Marshal(v.String())
	}
	return []byte("null"), nil
}

// UnmarshalJSON reads numbers as numbers, strings as text and null as
// missing. Dates come back as text.
func (v *Value) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Number(x)
	case string:
		*v = Text(x)
	case bool:
		*v = Text(strconv.FormatBool(x))
	default:
		return fmt.Errorf("unsupported cell value: %s", b)
	}
	return nil
}
