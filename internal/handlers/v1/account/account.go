package account

import (
	"github.com/carson-networks/ledger-server/internal/handlers/v1/respond"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// Account is the API response model for an account.
type Account struct {
	ID        string `json:"id" doc:"Account UUID"`
	Name      string `json:"name" doc:"Account name"`
	Role      string `json:"role" doc:"Account role: user, admin, master or master_assistant"`
	Balance   string `json:"balance" doc:"Decimal balance"`
	CreatedAt string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromStorage(acc *account.Account) Account {
	return Account{
		ID:        acc.ID.String(),
		Name:      acc.Name,
		Role:      string(acc.Role),
		Balance:   acc.Balance.String(),
		CreatedAt: respond.FormatTime(acc.CreatedAt),
	}
}
