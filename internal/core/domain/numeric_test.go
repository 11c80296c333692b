// internal/core/domain/numeric_test.go
package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain_integer", input: "1234", want: "1234"},
		{name: "machine_decimal", input: "1234.56", want: "1234.56"},
		{name: "ptbr_grouped_decimal", input: "1.234,56", want: "1234.56"},
		{name: "ptbr_decimal_only", input: "12,5", want: "12.5"},
		{name: "en_grouped_decimal", input: "1,234.56", want: "1234.56"},
		{name: "padded_whitespace", input: "  42 ", want: "42"},
		{name: "negative_book_quantity", input: "-3,25", want: "-3.25"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace_only", input: "   ", wantErr: true},
		{name: "double_comma", input: "1,2,3", wantErr: true},
		{name: "not_a_number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseQuantity(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			want := decimal.RequireFromString(tt.want)
			assert.True(t, want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}
