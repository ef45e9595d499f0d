package discount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAmount_Percentage(t *testing.T) {
	tests := []struct {
		name  string
		value string
		base  string
		want  string
	}{
		{"ten percent", "10", "100", "10"},
		{"rounds to cents", "15", "9.99", "1.5"},
		{"clamps above 100", "150", "80", "80"},
		{"clamps below 0", "-5", "80", "0"},
		{"zero base", "50", "0", "0"},
		{"negative base", "50", "-10", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(Percentage, d(tt.value), d(tt.base))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestAmount_Fixed(t *testing.T) {
	tests := []struct {
		name  string
		value string
		base  string
		want  string
	}{
		{"plain", "5", "20", "5"},
		{"clamped to base", "30", "20", "20"},
		{"negative clamped to zero", "-3", "20", "0"},
		{"rounds to cents", "4.999", "20", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Amount(Fixed, d(tt.value), d(tt.base))
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestAmount_UnknownKind(t *testing.T) {
	assert.True(t, Amount(Kind("bogus"), d("10"), d("100")).IsZero())
}

// Percentage discounts are monotonic non-decreasing in the value and never
// exceed the base; fixed discounts never exceed the base.
func TestAmount_Bounds(t *testing.T) {
	base := d("57.13")
	prev := decimal.Zero
	for v := 0; v <= 120; v += 3 {
		got := Amount(Percentage, decimal.NewFromInt(int64(v)), base)
		assert.True(t, got.GreaterThanOrEqual(prev), "not monotonic at v=%d", v)
		assert.True(t, got.LessThanOrEqual(base), "exceeds base at v=%d", v)
		prev = got
	}
	for v := 0; v <= 120; v += 7 {
		got := Amount(Fixed, decimal.NewFromInt(int64(v)), base)
		assert.True(t, got.LessThanOrEqual(base), "fixed exceeds base at v=%d", v)
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid percentage", func(t *testing.T) {
		assert.Nil(t, Validate(Percentage, d("25"), d("100")))
	})

	t.Run("valid fixed", func(t *testing.T) {
		assert.Nil(t, Validate(Fixed, d("5"), d("10")))
	})

	t.Run("non-positive value rejected", func(t *testing.T) {
		err := Validate(Percentage, d("0"), d("100"))
		require.NotNil(t, err)
		assert.True(t, err.Suggested.IsZero())
	})

	t.Run("percentage above 100 suggests 100", func(t *testing.T) {
		err := Validate(Percentage, d("120"), d("100"))
		require.NotNil(t, err)
		assert.True(t, err.Suggested.Equal(d("100")))
	})

	t.Run("fixed above base suggests base", func(t *testing.T) {
		err := Validate(Fixed, d("25"), d("19.99"))
		require.NotNil(t, err)
		assert.True(t, err.Suggested.Equal(d("19.99")))
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		err := Validate(Kind("bogo"), d("10"), d("100"))
		require.NotNil(t, err)
	})
}
