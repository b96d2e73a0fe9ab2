package entry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
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

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From(table),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[Entry]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Reader) List(ctx context.Context, filter *EntryFilter) ([]*Entry, error) {
	if filter == nil {
		filter = &EntryFilter{}
	}

	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(table),
	}
	mods = append(mods, whereMods(filter)...)

	if filter.Order == OrderOldestFirst {
		mods = append(mods,
			sm.OrderBy(psql.Quote("created_at")).Asc(),
			sm.OrderBy(psql.Quote("id")).Asc(),
		)
	} else {
		mods = append(mods,
			sm.OrderBy(psql.Quote("created_at")).Desc(),
			sm.OrderBy(psql.Quote("id")).Desc(),
		)
	}

	if filter.Limit > 0 {
		mods = append(mods, sm.Limit(filter.Limit))
	}
	if filter.Offset > 0 {
		mods = append(mods, sm.Offset(filter.Offset))
	}

	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Entry]())
	if err != nil {
		return nil, err
	}

	result := make([]*Entry, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

func (r *Reader) Horizon(ctx context.Context) (time.Time, error) {
	query := psql.Select(sm.Columns(psql.Raw("clock_timestamp() + interval '1 microsecond'")))
	return bob.One(ctx, r.exec, query, scan.SingleColumnMapper[time.Time])
}

// Summarize counts and totals the entries matching filter. Order, limit and offset are ignored.
func (r *Reader) Summarize(ctx context.Context, filter *EntryFilter) (Summary, error) {
	if filter == nil {
		filter = &EntryFilter{}
	}

	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns("COUNT(*) AS count", "COALESCE(SUM(amount), 0) AS total"),
		sm.From(table),
	}
	mods = append(mods, whereMods(filter)...)
	return bob.One(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Summary]())
}

func whereMods(filter *EntryFilter) []bob.Mod[*dialect.SelectQuery] {
	var mods []bob.Mod[*dialect.SelectQuery]

	if filter.AccountID != nil {
		mods = append(mods, sm.Where(
			psql.Quote("sender_id").EQ(psql.Arg(*filter.AccountID)).
				Or(psql.Quote("receiver_id").EQ(psql.Arg(*filter.AccountID))),
		))
	}
	if filter.SenderID != nil {
		mods = append(mods, sm.Where(psql.Quote("sender_id").EQ(psql.Arg(*filter.SenderID))))
	}
	if len(filter.Kinds) > 0 {
		kinds := make([]bob.Expression, len(filter.Kinds))
		for i, k := range filter.Kinds {
			kinds[i] = psql.Arg(string(k))
		}
		mods = append(mods, sm.Where(psql.Quote("kind").In(kinds...)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]bob.Expression, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = psql.Arg(string(s))
		}
		mods = append(mods, sm.Where(psql.Quote("status").In(statuses...)))
	}
	if filter.Since != nil {
		mods = append(mods, sm.Where(psql.Quote("created_at").GTE(psql.Arg(*filter.Since))))
	}
	if filter.Until != nil {
		mods = append(mods, sm.Where(psql.Quote("created_at").LT(psql.Arg(*filter.Until))))
	}
	return mods
}
