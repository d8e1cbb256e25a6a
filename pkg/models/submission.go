package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexInt is an integer that decodes from either a JSON number or a numeric
// string. The browser widget sends dob_day/dob_year as strings from <select>
// elements; API clients usually send numbers.
type FlexInt struct {
	Value int
	Set   bool
}

// NewFlexInt returns a FlexInt holding v.
func NewFlexInt(v int) FlexInt { return FlexInt{Value: v, Set: true} }

// UnmarshalJSON implements json.Unmarshaler.
// null and "" leave the value unset; anything else must be integer-coercible.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexInt{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = FlexInt{}
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not an integer: %q", s)
		}
		*f = NewFlexInt(n)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	i, err := n.Int64()
	if err != nil {
		return fmt.Errorf("not an integer: %s", n)
	}
	*f = NewFlexInt(int(i))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// String returns the decimal value, or "" when unset.
func (f FlexInt) String() string {
	if !f.Set {
		return ""
	}
	return strconv.Itoa(f.Value)
}

// SubmissionRequest is the inbound form posted by the widget.
type SubmissionRequest struct {
	Name        string  `json:"name"`
	ChineseName string  `json:"chinese_name,omitempty"`
	Gender      string  `json:"gender"`  // locale token: "男", "女", "Male", "Female"
	Country     string  `json:"country"`
	Phone       string  `json:"phone,omitempty"`
	Email       string  `json:"email,omitempty"`
	Referrer    string  `json:"referrer,omitempty"`
	DOBDay      FlexInt `json:"dob_day"`
	DOBMonth    string  `json:"dob_month"` // numeral, English or Chinese month name
	DOBYear     FlexInt `json:"dob_year"`

	// Locale optionally selects a template set (e.g. "en", "zh-child").
	Locale string `json:"locale,omitempty"`
}

// MissingBirthdateFields returns the names of absent birthdate components.
func (r SubmissionRequest) MissingBirthdateFields() []string {
	var missing []string
	if !r.DOBDay.Set {
		missing = append(missing, "dob_day")
	}
	if strings.TrimSpace(r.DOBMonth) == "" {
		missing = append(missing, "dob_month")
	}
	if !r.DOBYear.Set {
		missing = append(missing, "dob_year")
	}
	return missing
}

// Identity holds the submitted identity fields echoed in the emailed report.
type Identity struct {
	Name        string
	ChineseName string
	Gender      string
	Country     string
	Birthdate   string
	Phone       string
	Email       string
	Referrer    string
}

// Identity extracts the identity block from the request.
func (r SubmissionRequest) Identity() Identity {
	return Identity{
		Name:        r.Name,
		ChineseName: r.ChineseName,
		Gender:      r.Gender,
		Country:     r.Country,
		Birthdate:   fmt.Sprintf("%s-%s-%s", r.DOBYear, strings.TrimSpace(r.DOBMonth), r.DOBDay),
		Phone:       r.Phone,
		Email:       r.Email,
		Referrer:    r.Referrer,
	}
}
