package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/investing"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

type CreateInvestment struct {
	Order investing.Order
	Now   time.Time

	Result *investment.Investment
	IAction
}

func (c *CreateInvestment) Perform(ctx context.Context, writer *storage.Writer) error {
	inv, err := investing.Create(ctx, writer, c.Order, c.Now)
	if err != nil {
		return err
	}
	c.Result = inv
	return nil
}

type CancelInvestment struct {
	InvestmentID uuid.UUID
	CallerID     uuid.UUID
	Penalty      decimal.Decimal

	Result *investment.Investment
	IAction
}

func (c *CancelInvestment) Perform(ctx context.Context, writer *storage.Writer) error {
	inv, err := investing.Cancel(ctx, writer, c.InvestmentID, c.CallerID, c.Penalty)
	if err != nil {
		return err
	}
	c.Result = inv
	return nil
}

type MatureInvestment struct {
	InvestmentID uuid.UUID
	Now          time.Time

	Result *investment.Investment
	IAction
}

func (m *MatureInvestment) Perform(ctx context.Context, writer *storage.Writer) error {
	inv, err := investing.Mature(ctx, writer, m.InvestmentID, m.Now)
	if err != nil {
		return err
	}
	m.Result = inv
	return nil
}
