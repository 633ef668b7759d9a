package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func dia(s string) time.Time {
	t, err := time.Parse(FormatoData, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAssinatura_IsActive(t *testing.T) {
	a := Assinatura{DataInicio: dia("2024-01-01"), DataFim: dia("2024-12-31")}

	t.Run("dentro do período", func(t *testing.T) {
		assert.True(t, a.IsActive(dia("2024-06-15")))
	})

	t.Run("limites são inclusivos", func(t *testing.T) {
		assert.True(t, a.IsActive(dia("2024-01-01")))
		assert.True(t, a.IsActive(dia("2024-12-31").Add(23*time.Hour)))
	})

	t.Run("fora do período", func(t *testing.T) {
		assert.False(t, a.IsActive(dia("2025-01-01")))
		assert.False(t, a.IsActive(dia("2023-12-31")))
	})
}

func TestAssinatura_PaidThisMonth(t *testing.T) {
	a := Assinatura{DataInicio: dia("2024-03-10"), DataFim: dia("2025-03-10")}

	assert.True(t, a.PaidThisMonth(dia("2024-03-31")))
	assert.False(t, a.PaidThisMonth(dia("2024-04-01")))
	// Mesmo mês, ano seguinte: o ano também é comparado.
	assert.False(t, a.PaidThisMonth(dia("2025-03-10")))
}

func TestPlano_Preco(t *testing.T) {
	assert.Equal(t, "9.99", Plano{PrecoCentavos: 999}.Preco())
	assert.Equal(t, "0.00", Plano{}.Preco())
	assert.Equal(t, "120.50", Plano{PrecoCentavos: 12050}.Preco())
}
