package service

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/punchamoorthee/txreplay/internal/domain"
	"github.com/punchamoorthee/txreplay/internal/models"
	"go.uber.org/zap"
)

const outcomeDropped = "dropped"

var recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "txreplay_records_total",
	Help: "Transaction records replayed, labeled by type and outcome",
}, []string{"type", "outcome"})

// Replayer routes records to per-client accounts in arrival order.
// A Replayer is owned by a single goroutine for the duration of a replay.
type Replayer struct {
	accounts map[models.ClientID]*domain.Account
	log      *zap.Logger
}

func NewReplayer(log *zap.Logger) *Replayer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Replayer{
		accounts: make(map[models.ClientID]*domain.Account),
		log:      log,
	}
}

// Apply routes a single record. Accounts are created on the first deposit
// or withdrawal for a client; other record types addressed to an unknown
// client are dropped.
func (r *Replayer) Apply(rec models.Record) {
	acc, ok := r.accounts[rec.Client]
	if !ok {
		if !rec.Type.CarriesAmount() {
			r.observe(rec, outcomeDropped)
			return
		}
		acc = domain.NewAccount(rec.Client)
		r.accounts[rec.Client] = acc
	}

	var outcome domain.Outcome
	switch rec.Type {
	case models.TxDeposit:
		outcome = acc.Deposit(rec.Tx, rec.Amount)
	case models.TxWithdrawal:
		outcome = acc.Withdraw(rec.Tx, rec.Amount)
	case models.TxDispute:
		outcome = acc.Dispute(rec.Tx)
	case models.TxResolve:
		outcome = acc.Resolve(rec.Tx)
	case models.TxChargeback:
		outcome = acc.Chargeback(rec.Tx)
	default:
		r.observe(rec, outcomeDropped)
		return
	}
	r.observe(rec, string(outcome))
}

// ApplyAll applies records in order.
func (r *Replayer) ApplyAll(records []models.Record) {
	for _, rec := range records {
		r.Apply(rec)
	}
}

// Account returns the account for a client, if one was created.
func (r *Replayer) Account(id models.ClientID) (*domain.Account, bool) {
	acc, ok := r.accounts[id]
	return acc, ok
}

// Snapshots returns the state of every account ever created, ordered by
// client id.
func (r *Replayer) Snapshots() []models.AccountSnapshot {
	out := make([]models.AccountSnapshot, 0, len(r.accounts))
	for _, acc := range r.accounts {
		out = append(out, acc.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}

func (r *Replayer) observe(rec models.Record, outcome string) {
	recordsTotal.WithLabelValues(string(rec.Type), outcome).Inc()
	if outcome == string(domain.OutcomeApplied) {
		return
	}
	r.log.Debug("record not applied",
		zap.String("type", string(rec.Type)),
		zap.Uint16("client", uint16(rec.Client)),
		zap.Uint32("tx", uint32(rec.Tx)),
		zap.String("outcome", outcome),
	)
}

// Replay applies records to a fresh Replayer and returns the final snapshots.
func Replay(records []models.Record, log *zap.Logger) []models.AccountSnapshot {
	r := NewReplayer(log)
	r.ApplyAll(records)
	return r.Snapshots()
}
