package transfer

import (
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/storage/entry"
)

// Entry is the API response model for a ledger entry.
type Entry struct {
	ID         string `json:"id" doc:"Entry UUID"`
	SenderID   string `json:"senderId" doc:"Debited account UUID"`
	ReceiverID string `json:"receiverId" doc:"Credited account UUID"`
	Amount     string `json:"amount" doc:"Decimal amount"`
	Reason     string `json:"reason" doc:"Free text reason"`
	Kind       string `json:"kind" doc:"transfer, loan_disbursement, loan_repayment, investment or withdrawal"`
	Status     string `json:"status" doc:"pending, completed or failed"`
	CreatedAt  string `json:"createdAt" doc:"RFC3339 time the entry was posted"`
}

func fromStorage(e *entry.Entry) Entry {
	return Entry{
		ID:         e.ID.String(),
		SenderID:   e.SenderID.String(),
		ReceiverID: e.ReceiverID.String(),
		Amount:     e.Amount.String(),
		Reason:     e.Reason,
		Kind:       string(e.Kind),
		Status:     string(e.Status),
		CreatedAt:  respond.FormatTime(e.CreatedAt),
	}
}
