package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/punchamoorthee/txreplay/internal/models"
)

var (
	snapshotHeader = []string{"client", "available", "held", "total", "locked"}
	recordHeader   = []string{"type", "client", "tx", "amount"}
)

// WriteRecords encodes records in the format ReadRecords accepts. The amount
// column is left empty for types that do not carry one.
func WriteRecords(w io.Writer, records []models.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(recordHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(recordHeader))
	for _, rec := range records {
		row[0] = string(rec.Type)
		row[1] = strconv.FormatUint(uint64(rec.Client), 10)
		row[2] = strconv.FormatUint(uint64(rec.Tx), 10)
		row[3] = ""
		if rec.Type.CarriesAmount() {
			row[3] = rec.Amount.StringFixed(AmountPlaces)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write tx %d: %w", rec.Tx, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}

// WriteSnapshots encodes one row per account with amounts at AmountPlaces.
func WriteSnapshots(w io.Writer, snaps []models.AccountSnapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(snapshotHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(snapshotHeader))
	for _, s := range snaps {
		row[0] = strconv.FormatUint(uint64(s.Client), 10)
		row[1] = s.Available.StringFixed(AmountPlaces)
		row[2] = s.Held.StringFixed(AmountPlaces)
		row[3] = s.Total.StringFixed(AmountPlaces)
		row[4] = strconv.FormatBool(s.Locked)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write client %d: %w", s.Client, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush snapshots: %w", err)
	}
	return nil
}
