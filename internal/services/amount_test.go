package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"12.345", 1235, true},
		{"10", 1000, true},
		{"0.005", 1, true},
		{"19.99", 1999, true},
		{"1.005", 101, true},
		{"999999.99", 99_999_999, true},
		{"999999.994", 99_999_999, true},
		{"0.004", 0, false},
		{"0", 0, false},
		{"-5", 0, false},
		{"999999.995", 0, false},
		{"1000000", 0, false},
		{"92233720368547758.08", 0, false},
		{"184467440737095516.17", 0, false},
		{"1e20", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ToMinorUnits(decimal.RequireFromString(tt.in))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
