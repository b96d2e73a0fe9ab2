package investment

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
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

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Investment, error) {
	return w.findByID(ctx, id, true)
}

func (w *Writer) Insert(ctx context.Context, create *InvestmentCreate) (*Investment, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	query := psql.Insert(
		im.Into(table, "id", "owner_id", "type", "amount", "frequency", "duration_months",
			"expected_return", "maturity_amount", "maturity_date", "status"),
		im.Values(
			psql.Arg(id),
			psql.Arg(create.OwnerID),
			psql.Arg(string(create.Type)),
			psql.Arg(create.Amount),
			psql.Arg(string(create.Frequency)),
			psql.Arg(create.DurationMonths),
			psql.Arg(create.ExpectedReturn),
			psql.Arg(create.MaturityAmount),
			psql.Arg(create.MaturityDate),
			psql.Arg(string(StatusActive)),
		),
		im.Returning(columns...),
	)
	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[Investment]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *InvestmentUpdate) error {
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(table),
		um.SetCol("updated_at").To(psql.Raw("now()")),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if v, ok := update.Status.Get(); ok {
		mods = append(mods, um.SetCol("status").ToArg(string(v)))
	}

	_, err := bob.Exec(ctx, w.tx, psql.Update(mods...))
	return err
}
