package domain

import (
	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/shopspring/decimal"
)

// Account holds the balances and dispute state of a single client.
// It is not safe for concurrent use; a replay owns its accounts exclusively.
type Account struct {
	id        models.ClientID
	available decimal.Decimal
	held      decimal.Decimal
	total     decimal.Decimal
	locked    bool

	ledger   map[models.TxID]Entry
	disputes map[models.TxID]struct{}
	pending  []RejectedWithdrawal
}

// NewAccount returns an unlocked account with zero balances.
func NewAccount(id models.ClientID) *Account {
	return &Account{
		id:        id,
		available: decimal.Zero,
		held:      decimal.Zero,
		total:     decimal.Zero,
		ledger:    make(map[models.TxID]Entry),
		disputes:  make(map[models.TxID]struct{}),
	}
}

func (a *Account) Available() decimal.Decimal { return a.available }

func (a *Account) Held() decimal.Decimal { return a.held }

func (a *Account) Total() decimal.Decimal { return a.total }

func (a *Account) Locked() bool { return a.locked }

// OpenDisputes returns the number of transactions currently under dispute.
func (a *Account) OpenDisputes() int { return len(a.disputes) }

// PendingRejections returns the number of withdrawals still awaiting a resolve.
func (a *Account) PendingRejections() int { return len(a.pending) }

// Snapshot returns a value copy of the account's externally visible state.
func (a *Account) Snapshot() models.AccountSnapshot {
	return models.AccountSnapshot{
		Client:    a.id,
		Available: a.available,
		Held:      a.held,
		Total:     a.total,
		Locked:    a.locked,
	}
}

// Deposit credits amount and records the transaction.
func (a *Account) Deposit(tx models.TxID, amount decimal.Decimal) Outcome {
	if a.locked {
		return OutcomeLocked
	}

	a.total = a.total.Add(amount)
	a.available = a.available.Add(amount)
	a.ledger[tx] = Entry{Kind: KindDeposit, Amount: amount}
	return OutcomeApplied
}

// Withdraw debits amount if it is available.
//
// A withdrawal blocked only because funds are held by open disputes is kept
// as a RejectedWithdrawal and may be accepted later by Resolve. Withdrawals
// exceeding the total, or refused with no dispute open, are dropped.
func (a *Account) Withdraw(tx models.TxID, amount decimal.Decimal) Outcome {
	if a.locked {
		return OutcomeLocked
	}
	if a.total.LessThan(amount) {
		return OutcomeIgnored
	}

	if a.available.LessThan(amount) {
		if len(a.disputes) == 0 {
			return OutcomeIgnored
		}
		a.pending = append(a.pending, RejectedWithdrawal{
			Amount:         amount,
			DisputesAtTime: copyDisputes(a.disputes),
		})
		return OutcomePending
	}

	a.total = a.total.Sub(amount)
	a.available = a.available.Sub(amount)
	a.ledger[tx] = Entry{Kind: KindWithdraw, Amount: amount}
	return OutcomeApplied
}

// Dispute moves the funds of a recorded deposit from available to held.
func (a *Account) Dispute(tx models.TxID) Outcome {
	if a.locked {
		return OutcomeLocked
	}
	if _, open := a.disputes[tx]; open {
		return OutcomeIgnored
	}

	entry, ok := a.ledger[tx]
	if !ok || entry.Kind != KindDeposit {
		return OutcomeIgnored
	}

	a.available = a.available.Sub(entry.Amount)
	a.held = a.held.Add(entry.Amount)
	a.disputes[tx] = struct{}{}
	return OutcomeApplied
}

// Resolve releases the held funds of a disputed deposit and re-evaluates
// withdrawals that were rejected while this dispute was open.
func (a *Account) Resolve(tx models.TxID) Outcome {
	if a.locked {
		return OutcomeLocked
	}
	if _, open := a.disputes[tx]; !open {
		return OutcomeIgnored
	}

	outcome := OutcomeIgnored
	if entry, ok := a.ledger[tx]; ok && entry.Kind == KindDeposit {
		a.available = a.available.Add(entry.Amount)
		a.held = a.held.Sub(entry.Amount)
		a.reviveRejected(tx)
		outcome = OutcomeApplied
	}

	delete(a.disputes, tx)
	return outcome
}

// Chargeback removes the held funds of a disputed deposit and locks the
// account permanently.
func (a *Account) Chargeback(tx models.TxID) Outcome {
	if a.locked {
		return OutcomeLocked
	}
	if _, open := a.disputes[tx]; !open {
		return OutcomeIgnored
	}

	entry, ok := a.ledger[tx]
	if !ok || entry.Kind != KindDeposit {
		return OutcomeIgnored
	}

	a.held = a.held.Sub(entry.Amount)
	a.total = a.total.Sub(entry.Amount)
	a.locked = true
	return OutcomeApplied
}

// reviveRejected scans pending rejections in rejection order and applies
// those contingent on resolved that now fit in available. Each acceptance
// reduces available before the next entry is checked.
func (a *Account) reviveRejected(resolved models.TxID) {
	accepted := make([]bool, len(a.pending))
	revived := false
	for i, rej := range a.pending {
		if _, contingent := rej.DisputesAtTime[resolved]; !contingent {
			continue
		}
		if rej.Amount.GreaterThan(a.available) {
			continue
		}
		a.available = a.available.Sub(rej.Amount)
		a.total = a.total.Sub(rej.Amount)
		accepted[i] = true
		revived = true
	}
	if !revived {
		return
	}

	kept := a.pending[:0]
	for i, rej := range a.pending {
		if !accepted[i] {
			kept = append(kept, rej)
		}
	}
	for i := len(kept); i < len(a.pending); i++ {
		a.pending[i] = RejectedWithdrawal{}
	}
	a.pending = kept
}
