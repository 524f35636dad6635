package state

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Flag is a backend boolean. The backend sends true/false, 0/1, numeric
// strings or null interchangeably.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*f = false
		return nil
	case bytes.Equal(b, []byte("true")):
		*f = true
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = Flag(s != "" && !strings.EqualFold(s, "false"))
			return nil
		}
		*f = n != 0
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = n != 0
	return nil
}

// Reading is the textual value of a datapoint. Null readings are skipped by
// the panels.
type Reading struct {
	Text  string
	Valid bool
}

func Text(s string) Reading {
	return Reading{Text: s, Valid: true}
}

func (r *Reading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = Reading{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = Text(s)
		return nil
	}
	// numbers keep their literal text
	*r = Text(string(b))
	return nil
}

func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.Text)
}

// Float parses the leading number of the reading, so "21.5 kPa" is 21.5.
// Text without a leading number yields NaN.
func (r Reading) Float() float64 {
	if !r.Valid {
		return math.NaN()
	}
	s := strings.TrimLeft(r.Text, " \t\n\r")
	v, err := strconv.ParseFloat(s[:numberPrefix(s)], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// numberPrefix returns the length of the decimal number at the start of s:
// an optional sign, digits with at most one point, then an optional exponent.
func numberPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
