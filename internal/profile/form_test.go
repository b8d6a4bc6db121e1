package profile

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      Form
		wantField string
	}{
		{name: "complete", form: Form{Field: "Computer Science", Skills: "Python"}},
		{name: "missing field", form: Form{Skills: "Python"}, wantField: "Field"},
		{name: "missing skills", form: Form{Field: "Design"}, wantField: "Skills"},
		{name: "blank skills", form: Form{Field: "Design", Skills: "   "}, wantField: "Skills"},
		{name: "optional fields ignored", form: Form{Field: "Business", Skills: "Excel", Goals: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.form)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
			assert.Contains(t, verr.Message, "is required")
		})
	}
}

func TestPartialFormFillsMissingFields(t *testing.T) {
	var p Partial
	require.NoError(t, json.Unmarshal([]byte(`{"field":"Engineering","skills":"CAD"}`), &p))

	got := p.Form()
	assert.Equal(t, Form{Field: "Engineering", Skills: "CAD"}, got)
	assert.False(t, got.IsZero())
	assert.True(t, Partial{}.Form().IsZero())
}
