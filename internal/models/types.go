package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ClientID identifies an account in the input stream.
type ClientID uint16

// TxID identifies a transaction. Unique per account by input contract.
type TxID uint32

// TxType is the kind of a transaction record.
type TxType string

const (
	TxDeposit    TxType = "deposit"
	TxWithdrawal TxType = "withdrawal"
	TxDispute    TxType = "dispute"
	TxResolve    TxType = "resolve"
	TxChargeback TxType = "chargeback"
)

// ParseTxType maps a raw type column to a TxType, ignoring case.
func ParseTxType(raw string) (TxType, bool) {
	switch t := TxType(strings.ToLower(strings.TrimSpace(raw))); t {
	case TxDeposit, TxWithdrawal, TxDispute, TxResolve, TxChargeback:
		return t, true
	}
	return "", false
}

// CarriesAmount reports whether records of this type move funds.
func (t TxType) CarriesAmount() bool {
	return t == TxDeposit || t == TxWithdrawal
}

// Record is one decoded input row.
// Amount is only meaningful for deposits and withdrawals.
type Record struct {
	Type   TxType          `json:"type"`
	Client ClientID        `json:"client"`
	Tx     TxID            `json:"tx"`
	Amount decimal.Decimal `json:"amount"`
}

// AccountSnapshot is the final state of one account.
type AccountSnapshot struct {
	Client    ClientID        `json:"client"`
	Available decimal.Decimal `json:"available"`
	Held      decimal.Decimal `json:"held"`
	Total     decimal.Decimal `json:"total"`
	Locked    bool            `json:"locked"`
}

// ReplayResponse is the canonical response of a replay request.
type ReplayResponse struct {
	RunID    string            `json:"run_id"`
	Records  int               `json:"records"`
	Accounts []AccountSnapshot `json:"accounts"`
}
