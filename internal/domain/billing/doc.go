// Package billing provides the rent invoice bounded context.
//
// It covers:
//   - Invoice: one billing record for one tenancy in one calendar month
//   - Period: the YYYY-MM billing month, unique together with the tenancy
//   - PlanInvoices: generation of a period's invoices without duplicates
//   - ApplyPayment: allocation of one tenant payment across several invoices
//   - ReceiptJudge: the advisory AI check of a submitted receipt
//
// Submission never settles an invoice. Only the owner moves an invoice to
// paid or partial, or rejects the submission back to pending.
package billing
