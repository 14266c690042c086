package domain

import (
	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/shopspring/decimal"
)

// EntryKind distinguishes the two kinds of recorded transactions.
type EntryKind uint8

const (
	KindDeposit EntryKind = iota + 1
	KindWithdraw
)

// Entry is a transaction that has taken effect on an account.
// Only deposit entries can be disputed.
type Entry struct {
	Kind   EntryKind
	Amount decimal.Decimal
}

// RejectedWithdrawal is a withdrawal refused while funds were held by
// disputes. DisputesAtTime is a copy of the open disputes at rejection.
type RejectedWithdrawal struct {
	Amount         decimal.Decimal
	DisputesAtTime map[models.TxID]struct{}
}

// Outcome reports what an operation did. It is not an error: every
// operation either applies or is a no-op.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeIgnored Outcome = "ignored"
	OutcomePending Outcome = "pending"
	OutcomeLocked  Outcome = "locked"
)

func copyDisputes(src map[models.TxID]struct{}) map[models.TxID]struct{} {
	dst := make(map[models.TxID]struct{}, len(src))
	for id := range src {
		dst[id] = struct{}{}
	}
	return dst
}
