package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
		ok   bool
	}{
		{"Name", FieldName, true},
		{" phone number ", FieldPhone, true},
		{"Job Title", FieldDesignation, true},
		{"CTC", FieldSalary, true},
		{"email", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseField(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestPartialRecord_MissingAndRecord(t *testing.T) {
	p := PartialRecord{Name: StringPtr("Jane Doe"), Salary: FloatPtr(1200)}

	assert.Equal(t, []Field{FieldPhone, FieldDesignation}, p.Missing(AllFields))
	_, ok := p.Record(time.Now())
	assert.False(t, ok)

	p.Phone = StringPtr("5551234567")
	rec, ok := p.Record(time.Unix(0, 0))
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", rec.Name)
	assert.Equal(t, "", rec.Designation)
	assert.Equal(t, "1200", rec.Value(FieldSalary))
}

func TestPartialRecord_CloneIsDeep(t *testing.T) {
	p := PartialRecord{Name: StringPtr("a")}
	c := p.Clone()
	*c.Name = "b"
	assert.Equal(t, "a", *p.Name)
	assert.True(t, PartialRecord{}.Empty())
	assert.False(t, c.Empty())
}

func TestUniquenessKey_Of(t *testing.T) {
	r := EmployeeRecord{Name: "Jane Doe", Phone: "5551234567"}
	assert.Equal(t, "5551234567", KeyPhone.Of(r))
	assert.Equal(t, "jane doe", KeyName.Of(r))
	assert.Equal(t, "5551234567|jane doe", KeyPhoneAndName.Of(r))
	assert.False(t, UniquenessKey("email").Valid())
}

func TestFormatSalaryPlain(t *testing.T) {
	assert.Equal(t, "50000", FormatSalaryPlain(50000))
	assert.Equal(t, "1234.5", FormatSalaryPlain(1234.5))
	assert.Equal(t, "0.01", FormatSalaryPlain(0.01))
	assert.Equal(t, "1234.567", FormatSalaryPlain(1234.567))
	assert.Equal(t, "0", FormatSalaryPlain(0))
}
