package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
	"github.com/carson-networks/ledger-server/internal/transfer"
)

type Transfer struct {
	Request transfer.Request

	Result *entry.Entry
	IAction
}

func (t *Transfer) Perform(ctx context.Context, writer *storage.Writer) error {
	e, err := transfer.Execute(ctx, writer, t.Request)
	if err != nil {
		return err
	}
	t.Result = e
	return nil
}

// RecordFailedTransfer appends the audit entry for a transfer that was rejected in an
// earlier unit.
type RecordFailedTransfer struct {
	Request transfer.Request

	Result *entry.Entry
	IAction
}

func (r *RecordFailedTransfer) Perform(ctx context.Context, writer *storage.Writer) error {
	e, err := transfer.RecordFailure(ctx, writer, r.Request)
	if err != nil {
		return err
	}
	r.Result = e
	return nil
}
