package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/apperr"
	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/risk"
	"github.com/carson-networks/ledger-server/internal/storage"
)

type RiskService struct {
	storage *storage.Storage
	opts    Options
}

func NewRiskService(store *storage.Storage, opts Options) *RiskService {
	return &RiskService{storage: store, opts: opts}
}

func (s *RiskService) Detect(ctx context.Context, caller auth.Identity, accountID uuid.UUID) (risk.Report, error) {
	if !caller.CanAccess(accountID) {
		return risk.Report{}, apperr.Newf(apperr.Unauthorized, "role %s cannot read activity of account %s", caller.Role, accountID)
	}
	return risk.Detect(ctx, s.storage.Reader, accountID, s.opts.Now(), s.opts.RiskRules)
}
