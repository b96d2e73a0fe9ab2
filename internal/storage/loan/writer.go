package loan

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
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

func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return w.findByID(ctx, id, true)
}

func (w *Writer) Insert(ctx context.Context, create *LoanCreate) (*Loan, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	query := psql.Insert(
		im.Into(table, "id", "borrower_id", "type", "principal", "interest_rate", "term_months",
			"status", "monthly_payment", "total_repayment", "amount_paid"),
		im.Values(
			psql.Arg(id),
			psql.Arg(create.BorrowerID),
			psql.Arg(string(create.Type)),
			psql.Arg(create.Principal),
			psql.Arg(create.InterestRate),
			psql.Arg(create.TermMonths),
			psql.Arg(string(StatusPending)),
			psql.Arg(create.MonthlyPayment),
			psql.Arg(create.TotalRepayment),
			psql.Arg(decimal.Zero),
		),
		im.Returning(columns...),
	)
	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[Loan]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *LoanUpdate) error {
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(table),
		um.SetCol("updated_at").To(psql.Raw("now()")),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if v, ok := update.Status.Get(); ok {
		mods = append(mods, um.SetCol("status").ToArg(string(v)))
	}
	if v, ok := update.ApproverID.Get(); ok {
		mods = append(mods, um.SetCol("approver_id").ToArg(v))
	}
	if v, ok := update.AmountPaid.Get(); ok {
		mods = append(mods, um.SetCol("amount_paid").ToArg(v))
	}

	_, err := bob.Exec(ctx, w.tx, psql.Update(mods...))
	return err
}
