package investment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Investment, error) {
	return r.findByID(ctx, id, false)
}

func (r *Reader) findByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*Investment, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(table),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if forUpdate {
		mods = append(mods, sm.ForUpdate())
	}

	row, err := bob.One(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Investment]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Reader) List(ctx context.Context, filter *InvestmentFilter) (*InvestmentListResult, error) {
	limit, offset := Bounds(filter)

	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(table),
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
		sm.Limit(limit + 1),
		sm.Offset(offset),
	}
	if filter != nil {
		if filter.OwnerID != nil {
			mods = append(mods, sm.Where(psql.Quote("owner_id").EQ(psql.Arg(*filter.OwnerID))))
		}
		if filter.MaturesBefore != nil {
			mods = append(mods, sm.Where(psql.Quote("maturity_date").LTE(psql.Arg(*filter.MaturesBefore))))
		}
		if len(filter.Statuses) > 0 {
			statuses := make([]bob.Expression, len(filter.Statuses))
			for i, s := range filter.Statuses {
				statuses[i] = psql.Arg(string(s))
			}
			mods = append(mods, sm.Where(psql.Quote("status").In(statuses...)))
		}
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Investment]())
	if err != nil {
		return nil, err
	}

	result := make([]*Investment, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return Page(result, filter), nil
}

type statusSummary struct {
	Status Status          `db:"status"`
	Count  int             `db:"count"`
	Total  decimal.Decimal `db:"total"`
}

func (r *Reader) SummarizeByStatus(ctx context.Context) (map[Status]Summary, error) {
	query := psql.Select(
		sm.Columns("status", "COUNT(*) AS count", "SUM(amount) AS total"),
		sm.From(table),
		sm.GroupBy(psql.Quote("status")),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[statusSummary]())
	if err != nil {
		return nil, err
	}

	summaries := make(map[Status]Summary, len(rows))
	for _, row := range rows {
		summaries[row.Status] = Summary{Count: row.Count, Total: row.Total}
	}
	return summaries, nil
}
