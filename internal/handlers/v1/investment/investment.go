package investment

import (
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/storage/investment"
)

// Investment is the API response model for an investment.
type Investment struct {
	ID             string `json:"id" doc:"Investment UUID"`
	OwnerID        string `json:"ownerId" doc:"Owner account UUID"`
	Type           string `json:"type" doc:"sip, swp or lumpsum"`
	Amount         string `json:"amount" doc:"Decimal amount invested"`
	Frequency      string `json:"frequency" doc:"daily, weekly or monthly"`
	DurationMonths int    `json:"durationMonths" doc:"Duration in months"`
	ExpectedReturn string `json:"expectedReturn" doc:"Annual return in percent"`
	MaturityAmount string `json:"maturityAmount" doc:"Amount credited at maturity"`
	MaturityDate   string `json:"maturityDate" doc:"RFC3339 maturity time"`
	Status         string `json:"status" doc:"active, matured or cancelled"`
	CreatedAt      string `json:"createdAt" doc:"RFC3339 creation time"`
	UpdatedAt      string `json:"updatedAt" doc:"RFC3339 last transition time"`
}

func fromStorage(inv *investment.Investment) Investment {
	return Investment{
		ID:             inv.ID.String(),
		OwnerID:        inv.OwnerID.String(),
		Type:           string(inv.Type),
		Amount:         inv.Amount.String(),
		Frequency:      string(inv.Frequency),
		DurationMonths: inv.DurationMonths,
		ExpectedReturn: inv.ExpectedReturn.String(),
		MaturityAmount: inv.MaturityAmount.StringFixed(2),
		MaturityDate:   respond.FormatTime(inv.MaturityDate),
		Status:         string(inv.Status),
		CreatedAt:      respond.FormatTime(inv.CreatedAt),
		UpdatedAt:      respond.FormatTime(inv.UpdatedAt),
	}
}

func fromStorageList(invs []*investment.Investment) []Investment {
	out := make([]Investment, len(invs))
	for i, inv := range invs {
		out[i] = fromStorage(inv)
	}
	return out
}
