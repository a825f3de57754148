// Package models defines the persisted domain models for Splitledger.
//
// # Models
//
//   - User: registered account that owns groups
//   - Group: named, single-currency collection of members and expenses
//   - Expense: one payment made by a member on behalf of a set of members
//
// Members are identified by display name strings, unique within a group.
// They have no lifecycle of their own; they exist as names referenced by a
// group's member list and by its expenses.
//
// # Settlements
//
// Suggested settlements are never stored. When a debt is cancelled it is
// recorded as an Expense in the reserved debt cancellation category, so the
// regular balance computation reflects it (see package calculator).
//
// # Design Principles
//
// 1. **Values, not graphs**: relationships use ID strings instead of pointers
// 2. **Recompute, don't cache**: balances are derived on every query
// 3. **Storage agnostic**: no SQL or wire details leak into these types
package models
