package rates_test

import (
	"context"
	"testing"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/rates"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigProviderBuiltInDefaults(t *testing.T) {
	p, err := rates.NewConfigProvider()
	require.NoError(t, err)

	table, err := p.Rates(context.Background())
	require.NoError(t, err)
	require.Len(t, table, 5)

	overtime := table[model.ConceptOvertime]
	assert.Equal(t, model.KindQuantity, overtime.Kind)
	assert.True(t, overtime.Rate.Equal(decimal.RequireFromString("12.50")))

	incentive := table[model.ConceptDriverIncentive]
	assert.Equal(t, model.KindFlag, incentive.Kind)
	assert.True(t, incentive.Rate.Equal(decimal.RequireFromString("30.00")))
}
