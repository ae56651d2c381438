package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToCents(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		cents int64
	}{
		{"whole dollars", "90.00", 9000},
		{"exact cents", "33.34", 3334},
		{"half rounds up", "10.005", 1001},
		{"below half rounds down", "10.004", 1000},
		{"zero", "0", 0},
		{"large amount", "123456.78", 12345678},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.in)
			if err != nil {
				t.Fatalf("bad test input %q: %v", tt.in, err)
			}
			if got := ToCents(d); got != tt.cents {
				t.Errorf("ToCents(%s) = %d, want %d", tt.in, got, tt.cents)
			}
		})
	}
}

func TestFromCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{9000, "90.00"},
		{1, "0.01"},
		{0, "0.00"},
		{3334, "33.34"},
	}

	for _, tt := range tests {
		if got := FromCents(tt.cents).StringFixed(2); got != tt.want {
			t.Errorf("FromCents(%d) = %s, want %s", tt.cents, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, cents := range []int64{0, 1, 99, 100, 12345678} {
		if got := ToCents(FromCents(cents)); got != cents {
			t.Errorf("round trip of %d cents = %d", cents, got)
		}
	}
}
