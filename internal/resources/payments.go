package resources

import (
	"github.com/learnhub/learnadmin/internal/api"
	"github.com/learnhub/learnadmin/internal/collection"
	"github.com/learnhub/learnadmin/internal/models"
)

// Transactions is the read-only payments ledger.
func Transactions() Binding[models.Transaction] {
	return Binding[models.Transaction]{
		Name:    "transactions",
		Aliases: []string{"payments"},
		Short:   "Inspect payment transactions",
		Endpoints: api.Endpoints{
			List:       "/admin/payments/transactions",
			ListUnwrap: "data",
			Get:        "/admin/payments/transactions/:id",
			ItemUnwrap: "data",
		},
		Schema: collection.Schema[models.Transaction]{
			Resource: "transactions",
			Singular: "Transaction",
			ID:       func(t models.Transaction) string { return t.ID.String() },
			Fields: map[string]func(models.Transaction) any{
				"id":            func(t models.Transaction) any { return t.ID },
				"orderId":       func(t models.Transaction) any { return t.OrderID },
				"amount":        func(t models.Transaction) any { return t.Amount },
				"currency":      func(t models.Transaction) any { return t.Currency },
				"gateway":       func(t models.Transaction) any { return t.Gateway },
				"status":        func(t models.Transaction) any { return t.Status },
				"customerEmail": func(t models.Transaction) any { return t.CustomerEmail },
				"createdAt":     func(t models.Transaction) any { return t.CreatedAt },
			},
			TextFields: []string{"orderId", "customerEmail"},
			Columns:    []string{"id", "orderId", "amount", "currency", "gateway", "status", "createdAt"},
		},
	}
}
