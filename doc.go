// Package ledger records incomes, expenses and transfers over accounts held in several
// currencies, and keeps every account balance equal to its initial balance plus the effect
// of its transactions.
//
// The core pieces are:
//   - Engine: the single write path. Each operation validates its input, computes the balance
//     effects and writes rows and balances in one atomic unit of a Store.
//   - Store: the persistence contract, implemented by the sqlite and memstore packages.
//   - Rates: currency conversion through the base currency, with user settings that can
//     replace the built-in rates.
//   - Resolve: turns a proposal that names accounts and categories, typically produced from
//     free text, into a transaction ready to record.
//   - Summary and Audit: read-only reports over a budget month and over the whole log.
//
// This package serves as the foundational logic for the `lgr` command-line tool.
package ledger
