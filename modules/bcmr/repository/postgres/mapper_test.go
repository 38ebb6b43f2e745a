package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimalFromNumeric(t *testing.T) {
	t.Run("normal", func(t *testing.T) {
		numeric := pgtype.Numeric{}
		require.NoError(t, numeric.ScanInt64(pgtype.Int8{
			Int64: 1000,
			Valid: true,
		}))

		result, err := decimalFromNumeric(numeric)
		assert.NoError(t, err)
		if assert.NotNil(t, result) {
			assert.True(t, decimal.NewFromInt(1000).Equal(*result))
		}
	})
	t.Run("nil", func(t *testing.T) {
		result, err := decimalFromNumeric(pgtype.Numeric{})
		assert.NoError(t, err)
		assert.Nil(t, result)
	})
	t.Run("nan", func(t *testing.T) {
		_, err := decimalFromNumeric(pgtype.Numeric{NaN: true, Valid: true})
		assert.Error(t, err)
	})
}

func TestNumericFromDecimal(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		amounts := []string{"0", "1", "9223372036854775807", "123.456"}
		for _, amount := range amounts {
			d := decimal.RequireFromString(amount)
			numeric := numericFromDecimal(&d)
			assert.True(t, numeric.Valid)

			result, err := decimalFromNumeric(numeric)
			require.NoError(t, err)
			assert.True(t, d.Equal(*result), amount)
		}
	})
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, pgtype.Numeric{}, numericFromDecimal(nil))
	})
}
