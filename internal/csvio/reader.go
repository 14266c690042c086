package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/shopspring/decimal"
)

// AmountPlaces is the fixed precision of every amount.
const AmountPlaces = 4

var (
	ErrMissingHeader  = errors.New("missing or incomplete header")
	ErrUnknownType    = errors.New("unknown transaction type")
	ErrMissingAmount  = errors.New("amount required")
	ErrNegativeAmount = errors.New("amount must not be negative")
)

var requiredColumns = []string{"type", "client", "tx"}

type columns struct {
	typ, client, tx int
	amount          int // -1 when the header has no amount column
}

// ReadFile opens path and decodes every record in it.
func ReadFile(path string) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return ReadRecords(f)
}

// ReadRecords decodes a header row followed by transaction rows. Fields are
// trimmed and the header is matched case-insensitively. Decoding stops at the
// first malformed row.
func ReadRecords(r io.Reader) ([]models.Record, error) {
	rd := csv.NewReader(r)
	rd.FieldsPerRecord = -1
	rd.TrimLeadingSpace = true
	rd.ReuseRecord = true

	header, err := rd.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	for {
		row, err := rd.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if blank(row) {
			continue
		}

		rec, err := cols.decode(row)
		if err != nil {
			line, _ := rd.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// byteOrderMark is written by some spreadsheet exports ahead of the header.
const byteOrderMark = "\ufeff"

func parseHeader(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, byteOrderMark)
		}
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return columns{}, fmt.Errorf("%w: no %q column", ErrMissingHeader, name)
		}
	}

	cols := columns{typ: idx["type"], client: idx["client"], tx: idx["tx"], amount: -1}
	if i, ok := idx["amount"]; ok {
		cols.amount = i
	}
	return cols, nil
}

func (c columns) decode(row []string) (models.Record, error) {
	var rec models.Record

	typ, ok := models.ParseTxType(field(row, c.typ))
	if !ok {
		return rec, fmt.Errorf("%w: %q", ErrUnknownType, field(row, c.typ))
	}
	rec.Type = typ

	client, err := strconv.ParseUint(field(row, c.client), 10, 16)
	if err != nil {
		return rec, fmt.Errorf("client: %w", err)
	}
	rec.Client = models.ClientID(client)

	tx, err := strconv.ParseUint(field(row, c.tx), 10, 32)
	if err != nil {
		return rec, fmt.Errorf("tx: %w", err)
	}
	rec.Tx = models.TxID(tx)

	if !typ.CarriesAmount() {
		return rec, nil
	}
	raw := field(row, c.amount)
	if raw == "" {
		return rec, fmt.Errorf("%w for %s", ErrMissingAmount, typ)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return rec, fmt.Errorf("amount: %w", err)
	}
	if amount.IsNegative() {
		return rec, ErrNegativeAmount
	}
	rec.Amount = amount.Round(AmountPlaces)
	return rec, nil
}

// field returns the trimmed value at i, or "" when the row is short.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
