package workspace

import (
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/property"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
)

// Dashboard summarizes an owner's cash flow
type Dashboard struct {
	// UnverifiedPayments are pending invoices that carry a payment proof
	UnverifiedPayments []*billing.Invoice
	TotalIncome        valueobject.Money
	TotalOutstanding   valueobject.Money
	TotalExpenses      valueobject.Money
	TotalSavings       valueobject.Money
}

// ComputeDashboard aggregates invoices and expenses.
// Paid invoices count their total due as income; every other invoice counts its
// remaining balance as outstanding.
func ComputeDashboard(invoices []*billing.Invoice, expenses []*property.Expense) *Dashboard {
	d := &Dashboard{
		UnverifiedPayments: []*billing.Invoice{},
		TotalIncome:        valueobject.Zero(),
		TotalOutstanding:   valueobject.Zero(),
		TotalExpenses:      valueobject.Zero(),
	}
	for _, inv := range invoices {
		if inv.AwaitingVerification() {
			d.UnverifiedPayments = append(d.UnverifiedPayments, inv)
		}
		if inv.Status == billing.InvoiceStatusPaid {
			d.TotalIncome = d.TotalIncome.Add(inv.TotalDue)
		} else {
			d.TotalOutstanding = d.TotalOutstanding.Add(inv.RemainingBalance())
		}
	}
	for _, e := range expenses {
		d.TotalExpenses = d.TotalExpenses.Add(e.Amount)
	}
	d.TotalSavings = d.TotalIncome.Subtract(d.TotalExpenses)
	return d
}
