package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		input string
		want  PaymentMethod
	}{
		{"cash", PaymentMethodCash},
		{"CASH", PaymentMethodCash},
		{" Card ", PaymentMethodCard},
		{"card", PaymentMethodCard},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePaymentMethod(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePaymentMethod_Unknown(t *testing.T) {
	for _, in := range []string{"", "bitcoin", "paypal"} {
		_, err := ParsePaymentMethod(in)
		assert.True(t, errors.Is(err, ErrUnknownPaymentMethod), in)
	}
}

func TestNewOrderLine_Subtotal(t *testing.T) {
	p := Product{ID: 1, Name: "Mug", Price: decimal.RequireFromString("10.10")}
	line := NewOrderLine("l1", "o1", p, 3)

	assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("30.30")))
	assert.Equal(t, "Mug", line.ProductName)

	other := NewOrderLine("l2", "o1", Product{ID: 2, Price: decimal.RequireFromString("0.20")}, 1)
	total := LinesTotal([]OrderLine{line, other})
	assert.Equal(t, "30.5", total.String())
}

func TestNewOrderLine_RoundsOffScalePrices(t *testing.T) {
	half := Product{ID: 3, Name: "Sticker", Price: decimal.RequireFromString("0.005")}
	lines := []OrderLine{
		NewOrderLine("l1", "o1", half, 1),
		NewOrderLine("l2", "o1", half, 1),
		NewOrderLine("l3", "o1", half, 1),
		NewOrderLine("l4", "o1", Product{ID: 4, Price: decimal.RequireFromString("1.994")}, 7),
	}

	sum := decimal.Zero
	for _, l := range lines {
		assert.True(t, l.UnitPrice.Equal(l.UnitPrice.Round(CurrencyScale)), l.UnitPrice.String())
		// what a NUMERIC(12,2) column keeps
		stored := l.Subtotal.Round(CurrencyScale)
		assert.True(t, stored.Equal(l.Subtotal), l.Subtotal.String())
		sum = sum.Add(stored)
	}
	total := LinesTotal(lines)
	assert.True(t, total.Equal(total.Round(CurrencyScale)))
	assert.True(t, sum.Equal(total), "sum %s total %s", sum, total)
	assert.Equal(t, "0.01", lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "13.93", lines[3].Subtotal.StringFixed(2))
}
