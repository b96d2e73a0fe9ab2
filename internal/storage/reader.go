package storage

import (
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
	"github.com/carson-networks/ledger-server/internal/storage/setting"
)

type Reader struct {
	Accounts    account.IReader
	Entries     entry.IReader
	Loans       loan.IReader
	Investments investment.IReader
	Settings    setting.IReader
}
