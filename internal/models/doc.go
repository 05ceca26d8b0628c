// Package models defines the core domain models for the store's ledger.
//
// # Live state
//
// These rows are mutated by the transaction engine:
//   - Account: a named holder of a cash balance (may go negative)
//   - Item: a countable unit of inventory with a price and a tax fraction
//   - SellerAssignment: the profit fraction one seller earns on an item
//
// # History
//
// Every economic event appends rows that are never updated or deleted:
//   - Purchase, Stocking, ExpiryEvent: one row per seller of the item
//   - Transfer, BalanceChange, Donation: one row per event
//   - StatisticsRecord: periodic snapshot of system-wide figures
//
// History rows copy every price, split and date they depend on, so they stay
// meaningful after the item and its seller assignments are gone. Rows written
// by the same engine call share an EventID.
//
// # Design Principles
//
//  1. Money is always money.Money (whole cents), fractions money.Fraction
//  2. Names are the keys: accounts and items are referenced by name strings
//  3. Dates are UTC time.Time values
package models
