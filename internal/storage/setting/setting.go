// Package setting reads the admin_settings key/value table. Settings are managed elsewhere.
package setting

import (
	"context"
	"database/sql"
	"errors"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

type IReader interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) Get(ctx context.Context, key string) (string, bool, error) {
	query := psql.Select(
		sm.Columns("value"),
		sm.From("admin_settings"),
		sm.Where(psql.Quote("key").EQ(psql.Arg(key))),
	)
	value, err := bob.One(ctx, r.exec, query, scan.SingleColumnMapper[string])
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}
