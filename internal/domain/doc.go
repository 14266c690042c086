// Package domain implements the per-account ledger: balances, the dispute
// lifecycle and retroactive acceptance of withdrawals that were refused
// while a dispute held funds.
//
// Operations never fail. A precondition that does not hold (locked account,
// insufficient funds, unknown or undisputed transaction) turns the call into
// a no-op, reported through the returned Outcome.
package domain
