package entry

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"
)

type Writer struct {
	tx bob.Executor
	Reader
}

func NewWriter(tx bob.Executor) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) Insert(ctx context.Context, create *EntryCreate) (*Entry, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	query := psql.Insert(
		im.Into(table, "id", "sender_id", "receiver_id", "amount", "reason", "kind", "status"),
		im.Values(
			psql.Arg(id),
			psql.Arg(create.SenderID),
			psql.Arg(create.ReceiverID),
			psql.Arg(create.Amount),
			psql.Arg(create.Reason),
			psql.Arg(string(create.Kind)),
			psql.Arg(string(create.Status)),
		),
		im.Returning(columns...),
	)
	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[Entry]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}
