package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── FlexInt ──

func TestFlexIntUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    FlexInt
		wantErr bool
	}{
		{"number", `15`, NewFlexInt(15), false},
		{"string", `"2015"`, NewFlexInt(2015), false},
		{"padded string", `" 7 "`, NewFlexInt(7), false},
		{"empty string", `""`, FlexInt{}, false},
		{"null", `null`, FlexInt{}, false},
		{"word", `"fifteen"`, FlexInt{}, true},
		{"float", `15.5`, FlexInt{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexInt
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexIntMarshal(t *testing.T) {
	data, err := json.Marshal(struct {
		A FlexInt `json:"a"`
		B FlexInt `json:"b"`
	}{A: NewFlexInt(3)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":3,"b":null}`, string(data))
}

// ── SubmissionRequest ──

func TestSubmissionRequestDecode(t *testing.T) {
	body := `{"name":"Test","gender":"男","country":"新加坡","dob_day":15,"dob_month":"六月","dob_year":"2015"}`
	var req SubmissionRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	assert.Equal(t, 15, req.DOBDay.Value)
	assert.Equal(t, 2015, req.DOBYear.Value)
	assert.Equal(t, "六月", req.DOBMonth)
	assert.Empty(t, req.MissingBirthdateFields())
}

func TestMissingBirthdateFields(t *testing.T) {
	req := SubmissionRequest{DOBMonth: "  "}
	assert.Equal(t, []string{"dob_day", "dob_month", "dob_year"}, req.MissingBirthdateFields())

	req = SubmissionRequest{DOBDay: NewFlexInt(1), DOBMonth: "May"}
	assert.Equal(t, []string{"dob_year"}, req.MissingBirthdateFields())
}

func TestIdentity(t *testing.T) {
	req := SubmissionRequest{
		Name: "Test", Phone: "+65 8123 4567", Email: "t@example.com",
		DOBDay: NewFlexInt(15), DOBMonth: "六月", DOBYear: NewFlexInt(2015),
	}
	id := req.Identity()
	assert.Equal(t, "Test", id.Name)
	assert.Equal(t, "2015-六月-15", id.Birthdate)
	assert.Equal(t, "+65 8123 4567", id.Phone)
}
