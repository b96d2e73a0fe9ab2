// Package ratetable resolves the annual interest rate offered for each loan type.
package ratetable

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
	"github.com/carson-networks/ledger-server/internal/storage/setting"
)

var FallbackRate = decimal.NewFromInt(10)

// Table looks rates up in admin settings first (key "<type>_interest_rate"), then in the
// configured per-type rates, then uses the configured default.
type Table struct {
	settings setting.IReader
	rates    map[loan.Type]decimal.Decimal
	fallback decimal.Decimal
}

// New builds a Table. A non-positive defaultRate means FallbackRate.
func New(settings setting.IReader, rates map[string]float64, defaultRate float64) *Table {
	t := &Table{
		settings: settings,
		rates:    make(map[loan.Type]decimal.Decimal, len(rates)),
		fallback: FallbackRate,
	}
	if defaultRate > 0 {
		t.fallback = decimal.NewFromFloat(defaultRate)
	}
	for k, v := range rates {
		lt, err := loan.ParseType(k)
		if err != nil {
			logrus.WithField("loanType", k).Warn("RateTable.New: ignoring rate for unknown loan type")
			continue
		}
		t.rates[lt] = decimal.NewFromFloat(v)
	}
	return t
}

func SettingKey(t loan.Type) string {
	return string(t) + "_interest_rate"
}

func (t *Table) Rate(ctx context.Context, lt loan.Type) (decimal.Decimal, error) {
	if t.settings != nil {
		raw, ok, err := t.settings.Get(ctx, SettingKey(lt))
		if err != nil {
			return decimal.Zero, storage.StoreError("read interest rate", err)
		}
		if ok {
			rate, err := decimal.NewFromString(raw)
			if err == nil && !rate.IsNegative() {
				return rate, nil
			}
			logrus.WithFields(logrus.Fields{
				"key":   SettingKey(lt),
				"value": raw,
			}).Warn("RateTable.Rate: unusable interest rate setting")
		}
	}

	if rate, ok := t.rates[lt]; ok {
		return rate, nil
	}
	return t.fallback, nil
}
