package values_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurex/procurement-backend/internal/domain/values"
)

func TestNewMoney(t *testing.T) {
	t.Run("valid currency", func(t *testing.T) {
		m, err := values.NewMoneyFromString("123.45", values.USD)
		require.NoError(t, err)
		assert.Equal(t, "123.45 USD", m.String())
	})

	t.Run("empty currency", func(t *testing.T) {
		_, err := values.NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("unsupported currency", func(t *testing.T) {
		_, err := values.NewMoney(decimal.NewFromInt(1), "XXX")
		assert.Error(t, err)
	})

	t.Run("malformed amount string", func(t *testing.T) {
		_, err := values.NewMoneyFromString("not-a-number", values.USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := values.MustNewMoneyFromFloat(10.50, values.USD)
	b := values.MustNewMoneyFromFloat(4.50, values.USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "15.00 USD", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	assert.Equal(t, "6.00 USD", diff.String())

	eur := values.MustNewMoneyFromFloat(1, values.EUR)
	_, err = a.Add(eur)
	assert.Error(t, err, "mixed currencies refuse arithmetic")
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, values.Zero(values.USD).IsZero())
	assert.True(t, values.MustNewMoneyFromFloat(1, values.USD).IsPositive())
	assert.True(t, values.MustNewMoneyFromFloat(-1, values.USD).IsNegative())

	a := values.MustNewMoneyFromFloat(5, values.USD)
	b := values.MustNewMoneyFromFloat(5, values.USD)
	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
	assert.Equal(t, 1, a.Compare(values.MustNewMoneyFromFloat(4, values.USD)))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := values.MustNewMoneyFromFloat(99.99, values.EUR)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var got values.Money
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, m.Equal(got))
}
