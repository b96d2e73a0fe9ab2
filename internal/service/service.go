package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/investing"
	"github.com/carson-networks/ledger-server/internal/lending"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/ratetable"
	"github.com/carson-networks/ledger-server/internal/risk"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// processor runs an action as one atomic unit. Implemented by operator.OperatorDelegator.
type processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

type Options struct {
	SafetyMultiplier decimal.Decimal
	CancelPenalty    decimal.Decimal
	RiskRules        risk.Rules
	Now              func() time.Time
}

func DefaultOptions() Options {
	return Options{
		SafetyMultiplier: lending.DefaultSafetyMultiplier,
		CancelPenalty:    decimal.NewFromInt(investing.DefaultCancelPenalty),
		RiskRules:        risk.DefaultRules(),
		Now:              time.Now,
	}
}

func OptionsFromConfig(env *config.Config) Options {
	opts := DefaultOptions()
	if env.Lending.SafetyMultiplier > 0 {
		opts.SafetyMultiplier = decimal.NewFromFloat(env.Lending.SafetyMultiplier)
	}
	opts.CancelPenalty = decimal.NewFromFloat(env.Investing.CancelPenalty)
	if env.Risk.Window > 0 {
		opts.RiskRules.Window = env.Risk.Window
	}
	if env.Risk.LargeAmount > 0 {
		opts.RiskRules.LargeAmount = decimal.NewFromFloat(env.Risk.LargeAmount)
	}
	if env.Risk.MaxCount > 0 {
		opts.RiskRules.MaxCount = env.Risk.MaxCount
	}
	return opts
}

// Service holds all business logic services.
type Service struct {
	Account    *AccountService
	Transfer   *TransferService
	Loan       *LoanService
	Investment *InvestmentService
	Risk       *RiskService
	Stats      *StatsService
}

// NewService wires the services over one store. Reads go to the store directly, every write
// goes through op.
func NewService(store *storage.Storage, op processor, rates *ratetable.Table, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		Account:    NewAccountService(store, op),
		Transfer:   NewTransferService(store, op),
		Loan:       NewLoanService(store, op, rates, opts),
		Investment: NewInvestmentService(store, op, opts),
		Risk:       NewRiskService(store, opts),
		Stats:      NewStatsService(store, opts),
	}
}
