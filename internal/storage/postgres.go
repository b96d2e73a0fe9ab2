package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
	"github.com/carson-networks/ledger-server/internal/storage/setting"
)

// Postgres is the bob-backed Backend. Balances are protected by row locks taken inside each unit.
type Postgres struct {
	sqlDB       *sql.DB
	db          bob.DB
	lockTimeout time.Duration
	reader      *Reader
}

func NewPostgres(db *sql.DB, lockTimeout time.Duration) *Postgres {
	bobDB := bob.NewDB(db)
	return &Postgres{
		sqlDB:       db,
		db:          bobDB,
		lockTimeout: lockTimeout,
		reader: &Reader{
			Accounts:    account.NewReader(bobDB),
			Entries:     entry.NewReader(bobDB),
			Loans:       loan.NewReader(bobDB),
			Investments: investment.NewReader(bobDB),
			Settings:    setting.NewReader(bobDB),
		},
	}
}

// NewStorage connects to the configured Postgres database.
func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("pgx", env.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if env.Store.Migrate {
		if err := Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return New(NewPostgres(db, env.Store.LockTimeout), env.Store.Timeout), nil
}

func (p *Postgres) Reader() *Reader {
	return p.reader
}

func (p *Postgres) Begin(ctx context.Context) (*Writer, error) {
	tx, err := p.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, StoreError("begin", err)
	}

	if p.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, StoreError("set lock timeout", err)
		}
	}

	return NewWriter(tx, Tables{
		Account:    account.NewWriter(tx),
		Entry:      entry.NewWriter(tx),
		Loan:       loan.NewWriter(tx),
		Investment: investment.NewWriter(tx),
	}), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.sqlDB.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.sqlDB.Close()
}
