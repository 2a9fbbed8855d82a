package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/onboardflow/types"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[types.Field]string
	}{
		{
			name:    "plain object",
			content: `{"name":"Jane Doe","phone":"+1 555 010 9999","designation":"Engineer","salary":"$85,000"}`,
			want: map[types.Field]string{
				types.FieldName: "Jane Doe", types.FieldPhone: "+1 555 010 9999",
				types.FieldDesignation: "Engineer", types.FieldSalary: "$85,000",
			},
		},
		{
			name:    "code fence and numeric salary",
			content: "```json\n{\"Name\": \"Raj\", \"Salary\": 50000.5}\n```",
			want:    map[types.Field]string{types.FieldName: "Raj", types.FieldSalary: "50000.5"},
		},
		{
			name:    "surrounding prose",
			content: `Sure! Here it is: {"name": "Ana", "phone": null} Hope that helps.`,
			want:    map[types.Field]string{types.FieldName: "Ana"},
		},
		{
			name:    "array wrapper",
			content: `[{"full_name":"Li Wei","job_title":"Analyst"},{"name":"Other"}]`,
			want:    map[types.Field]string{types.FieldName: "Li Wei", types.FieldDesignation: "Analyst"},
		},
		{
			name:    "nested employee object",
			content: `{"employee":{"name":"Sam","mobile":"9876543210"}}`,
			want:    map[types.Field]string{types.FieldName: "Sam", types.FieldPhone: "9876543210"},
		},
		{
			name:    "canonical key wins over alias",
			content: `{"title":"Intern","designation":"Manager"}`,
			want:    map[types.Field]string{types.FieldDesignation: "Manager"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.content)
			require.NoError(t, err)
			for _, f := range types.AllFields {
				v, ok := got.Get(f)
				want, expected := tt.want[f]
				assert.Equal(t, expected, ok, "field %s presence", f)
				assert.Equal(t, want, v, "field %s", f)
			}
		})
	}
}

func TestParseResponse_Unparsable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no json", "I could not find anything."},
		{"broken json", `{"name": "Jane"`},
		{"unknown keys only", `{"age": 30, "city": "Pune"}`},
		{"all null", `{"name": null, "phone": "  "}`},
		{"array of scalars", `[1, 2, 3]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.content)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnparsableResponse)
		})
	}
}
