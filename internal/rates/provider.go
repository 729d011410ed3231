// Package rates loads the payroll concept rate table. The table is
// external configuration owned by administration; the engine only reads it.
package rates

import (
	"context"
	"errors"
	"fmt"

	"github.com/Landa5/SEL-CONTROL-HORARIO-sub000/internal/core/model"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Provider exposes the concept rate table to the payroll engine.
type Provider interface {
	Rates(ctx context.Context) (map[string]model.ConceptRate, error)
}

// ConfigProvider reads the rate table from a rates.yaml next to the
// binary (or /etc/control-horario), falling back to the built-in defaults
// when no file exists. Amounts are parsed into decimals once at load time.
type ConfigProvider struct {
	table map[string]model.ConceptRate
}

type rateEntry struct {
	Label string `mapstructure:"label"`
	Rate  string `mapstructure:"rate"`
	Kind  string `mapstructure:"kind"`
}

// NewConfigProvider loads and validates the rate table.
func NewConfigProvider() (*ConfigProvider, error) {
	v := viper.New()
	v.SetConfigName("rates")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/control-horario")

	v.SetDefault("concepts", map[string]rateEntry{
		model.ConceptOvertime:        {Label: "Horas extra", Rate: "12.50", Kind: string(model.KindQuantity)},
		model.ConceptDistance:        {Label: "Plus distancia", Rate: "0.09", Kind: string(model.KindQuantity)},
		model.ConceptTrips:           {Label: "Plus productividad viajes", Rate: "3.00", Kind: string(model.KindQuantity)},
		model.ConceptUnloads:         {Label: "Plus descargas", Rate: "1.50", Kind: string(model.KindQuantity)},
		model.ConceptDriverIncentive: {Label: "Incentivo conductor", Rate: "30.00", Kind: string(model.KindFlag)},
	})

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading rates config: %w", err)
		}
	}

	var entries map[string]rateEntry
	if err := v.UnmarshalKey("concepts", &entries); err != nil {
		return nil, fmt.Errorf("parsing rates config: %w", err)
	}

	table := make(map[string]model.ConceptRate, len(entries))
	for code, e := range entries {
		rate, err := decimal.NewFromString(e.Rate)
		if err != nil {
			return nil, fmt.Errorf("concept %s has invalid rate %q: %w", code, e.Rate, err)
		}
		table[code] = model.ConceptRate{
			Code:  code,
			Label: e.Label,
			Rate:  rate,
			Kind:  model.ConceptKind(e.Kind),
		}
	}

	return &ConfigProvider{table: table}, nil
}

func (p *ConfigProvider) Rates(_ context.Context) (map[string]model.ConceptRate, error) {
	return p.table, nil
}

// StaticProvider serves a fixed table, used in tests.
type StaticProvider struct {
	Table map[string]model.ConceptRate
}

func (p *StaticProvider) Rates(_ context.Context) (map[string]model.ConceptRate, error) {
	return p.Table, nil
}
