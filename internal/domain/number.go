package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// numericPrefixPattern matches the longest decimal literal at the start of a string
var numericPrefixPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// strictDecimalPattern matches a string that is a decimal literal and nothing else
var strictDecimalPattern = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// FlexNumber is a numeric field that the upstream backend may send either as a
// JSON number or as a numeric string (decimal columns are serialized as text).
// Decoding never fails: unparseable input becomes NaN, absent or null input
// leaves the number unset. Values decoded from text keep the text, so they can
// also be read with strict whole-string rules and are re-encoded verbatim.
type FlexNumber struct {
	value    float64
	set      bool
	text     string
	fromText bool
}

// Number returns a set FlexNumber holding f
func Number(f float64) FlexNumber {
	return FlexNumber{value: f, set: true}
}

// NumericString returns a set FlexNumber parsed from s using numeric-prefix rules
func NumericString(s string) FlexNumber {
	return FlexNumber{value: ParseNumericPrefix(s), set: true, text: s, fromText: true}
}

// Value returns the raw value and whether it was present at all.
// A present but unparseable value is reported as NaN.
func (n FlexNumber) Value() (float64, bool) {
	return n.value, n.set
}

// Strict returns the value with text read by whole-string rules (see
// ParseStrictNumber) instead of numeric-prefix rules. Numbers are returned as is.
func (n FlexNumber) Strict() (float64, bool) {
	if !n.set {
		return 0, false
	}
	if n.fromText {
		return ParseStrictNumber(n.text), true
	}
	return n.value, true
}

// IsSet reports whether a value was present
func (n FlexNumber) IsSet() bool {
	return n.set
}

// OrZero returns the value, or 0 when it is unset or NaN
func (n FlexNumber) OrZero() float64 {
	if !n.set || math.IsNaN(n.value) {
		return 0
	}
	return n.value
}

// UnmarshalJSON accepts numbers, numeric strings and null
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}

	switch c := trimmed[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			*n = FlexNumber{value: math.NaN(), set: true}
			return nil
		}
		*n = NumericString(s)
	case c == '-' || (c >= '0' && c <= '9'):
		f, err := strconv.ParseFloat(string(trimmed), 64)
		if err != nil && !isRangeError(err) {
			f = math.NaN()
		}
		*n = Number(f)
	default:
		// bools, objects and arrays are present but not numeric
		*n = FlexNumber{value: math.NaN(), set: true}
	}

	return nil
}

// MarshalJSON writes text values back as the original string and unset or NaN
// values as null. Infinities are written as the strings "Infinity" and
// "-Infinity" so they survive a round trip.
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	switch {
	case n.set && n.fromText:
		return json.Marshal(n.text)
	case !n.set || math.IsNaN(n.value):
		return []byte("null"), nil
	case math.IsInf(n.value, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(n.value, -1):
		return []byte(`"-Infinity"`), nil
	}
	return json.Marshal(n.value)
}

// ParseNumericPrefix parses the leading decimal literal of s, ignoring leading
// whitespace and any trailing garbage ("2500000 IDR" is 2500000). Strings with
// no numeric prefix yield NaN.
func ParseNumericPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	if m := numericPrefixPattern.FindString(s); m != "" {
		f, err := strconv.ParseFloat(m, 64)
		if err == nil || isRangeError(err) {
			return f
		}
	}

	switch {
	case strings.HasPrefix(s, "Infinity"), strings.HasPrefix(s, "+Infinity"):
		return math.Inf(1)
	case strings.HasPrefix(s, "-Infinity"):
		return math.Inf(-1)
	}

	return math.NaN()
}

// ParseStrictNumber converts s the way a whole-string numeric conversion does:
// surrounding whitespace is ignored, an empty string is 0, "Infinity" and
// 0x/0o/0b integer literals are accepted, and any trailing text makes the
// result NaN ("100abc" is NaN, "0x10" is 16).
func ParseStrictNumber(s string) float64 {
	s = strings.TrimSpace(s)

	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok || n.Sign() < 0 || s[2] == '+' || s[2] == '-' {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}

	if !strictDecimalPattern.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !isRangeError(err) {
		return math.NaN()
	}
	return f
}

// isRangeError reports an overflow from strconv, whose result is still usable (±Inf or 0)
func isRangeError(err error) bool {
	var numErr *strconv.NumError
	return errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange)
}
