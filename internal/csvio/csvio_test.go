package csvio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/punchamoorthee/txreplay/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords(t *testing.T) {
	t.Run("should decode trimmed rows with optional amount", func(t *testing.T) {
		in := "type, client, tx, amount\n" +
			"deposit, 1, 1, 1.0\n" +
			"withdrawal,  2, 5, 3.25\n" +
			"dispute, 1, 1,\n" +
			"resolve, 1, 1\n" +
			"chargeback, 1, 1, \n"

		recs, err := ReadRecords(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, recs, 5)

		assert.Equal(t, models.TxDeposit, recs[0].Type)
		assert.Equal(t, models.ClientID(1), recs[0].Client)
		assert.Equal(t, models.TxID(1), recs[0].Tx)
		assert.True(t, recs[0].Amount.Equal(decimal.NewFromInt(1)))

		assert.Equal(t, models.TxWithdrawal, recs[1].Type)
		assert.Equal(t, models.ClientID(2), recs[1].Client)
		assert.True(t, recs[1].Amount.Equal(decimal.RequireFromString("3.25")))

		assert.Equal(t, models.TxDispute, recs[2].Type)
		assert.Equal(t, models.TxResolve, recs[3].Type)
		assert.Equal(t, models.TxChargeback, recs[4].Type)
	})

	t.Run("should accept reordered and capitalised header", func(t *testing.T) {
		in := "Client,TX,Type,Amount\n2,9,Deposit,4\n"
		recs, err := ReadRecords(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, models.ClientID(2), recs[0].Client)
		assert.Equal(t, models.TxID(9), recs[0].Tx)
		assert.Equal(t, models.TxDeposit, recs[0].Type)
	})

	t.Run("should accept header with byte order mark", func(t *testing.T) {
		recs, err := ReadRecords(strings.NewReader("\ufefftype,client,tx,amount\ndeposit,1,1,1\n"))
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, models.TxDeposit, recs[0].Type)
	})

	t.Run("should round amounts to four places", func(t *testing.T) {
		recs, err := ReadRecords(strings.NewReader("type,client,tx,amount\ndeposit,1,1,0.123456\n"))
		require.NoError(t, err)
		assert.Equal(t, "0.1235", recs[0].Amount.StringFixed(AmountPlaces))
	})

	t.Run("should reject malformed input", func(t *testing.T) {
		cases := []struct {
			name string
			in   string
			want error
		}{
			{"empty", "", ErrMissingHeader},
			{"no tx column", "type,client,amount\n", ErrMissingHeader},
			{"unknown type", "type,client,tx,amount\ntransfer,1,1,1\n", ErrUnknownType},
			{"deposit without amount", "type,client,tx,amount\ndeposit,1,1,\n", ErrMissingAmount},
			{"negative amount", "type,client,tx,amount\nwithdrawal,1,1,-2\n", ErrNegativeAmount},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := ReadRecords(strings.NewReader(tc.in))
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})

	t.Run("should report the failing line", func(t *testing.T) {
		in := "type,client,tx,amount\ndeposit,1,1,1\ndeposit,70000,2,1\n"
		_, err := ReadRecords(strings.NewReader(in))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), "client")
	})

	t.Run("should reject garbage amount", func(t *testing.T) {
		_, err := ReadRecords(strings.NewReader("type,client,tx,amount\ndeposit,1,1,abc\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount")
	})
}

func TestReadFile(t *testing.T) {
	t.Run("should read records from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tx.csv")
		require.NoError(t, os.WriteFile(path, []byte("type,client,tx,amount\ndeposit,1,1,2\n"), 0o600))

		recs, err := ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("should fail on missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestWriteRecords(t *testing.T) {
	recs := []models.Record{
		{Type: models.TxDeposit, Client: 1, Tx: 1, Amount: decimal.RequireFromString("2.5")},
		{Type: models.TxDispute, Client: 1, Tx: 1, Amount: decimal.NewFromInt(99)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, recs))
	assert.Equal(t, "type,client,tx,amount\ndeposit,1,1,2.5000\ndispute,1,1,\n", buf.String())

	back, err := ReadRecords(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.True(t, back[0].Amount.Equal(recs[0].Amount))
	assert.True(t, back[1].Amount.IsZero())
}

func TestWriteSnapshots(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSnapshots(&buf, []models.AccountSnapshot{
		{Client: 1, Available: decimal.RequireFromString("1.5"), Held: decimal.Zero, Total: decimal.RequireFromString("1.5")},
		{Client: 2, Available: decimal.NewFromInt(-8), Held: decimal.NewFromInt(10), Total: decimal.NewFromInt(2), Locked: true},
	})
	require.NoError(t, err)

	want := "client,available,held,total,locked\n" +
		"1,1.5000,0.0000,1.5000,false\n" +
		"2,-8.0000,10.0000,2.0000,true\n"
	assert.Equal(t, want, buf.String())
}
