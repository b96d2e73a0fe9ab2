package loan

import (
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/storage/loan"
)

// Loan is the API response model for a loan.
type Loan struct {
	ID             string `json:"id" doc:"Loan UUID"`
	BorrowerID     string `json:"borrowerId" doc:"Borrower account UUID"`
	Type           string `json:"type" doc:"personal, business, sip or swp"`
	Principal      string `json:"principal" doc:"Decimal principal"`
	InterestRate   string `json:"interestRate" doc:"Annual rate in percent fixed at request time"`
	TermMonths     int    `json:"termMonths" doc:"Term in months"`
	MonthlyPayment string `json:"monthlyPayment" doc:"Monthly installment rounded to cents"`
	TotalRepayment string `json:"totalRepayment" doc:"Total owed rounded to cents"`
	AmountPaid     string `json:"amountPaid" doc:"Sum of repayments so far"`
	Remaining      string `json:"remaining" doc:"Amount still owed, never negative"`
	Status         string `json:"status" doc:"pending, approved, rejected or paid"`
	ApproverID     string `json:"approverId,omitempty" doc:"Account UUID of the approver or rejecter"`
	CreatedAt      string `json:"createdAt" doc:"RFC3339 request time"`
	UpdatedAt      string `json:"updatedAt" doc:"RFC3339 last transition time"`
}

func fromStorage(l *loan.Loan) Loan {
	out := Loan{
		ID:             l.ID.String(),
		BorrowerID:     l.BorrowerID.String(),
		Type:           string(l.Type),
		Principal:      l.Principal.String(),
		InterestRate:   l.InterestRate.String(),
		TermMonths:     l.TermMonths,
		MonthlyPayment: l.MonthlyPayment.StringFixed(2),
		TotalRepayment: l.TotalRepayment.StringFixed(2),
		AmountPaid:     l.AmountPaid.String(),
		Remaining:      l.Remaining().StringFixed(2),
		Status:         string(l.Status),
		CreatedAt:      respond.FormatTime(l.CreatedAt),
		UpdatedAt:      respond.FormatTime(l.UpdatedAt),
	}
	if l.ApproverID.Valid {
		out.ApproverID = l.ApproverID.UUID.String()
	}
	return out
}
