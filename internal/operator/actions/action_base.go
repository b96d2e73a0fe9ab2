// Package actions holds the units of work the operator runs. Each Perform executes inside a
// single storage Writer and leaves its outcome in Result.
package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/storage"
)

type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}
