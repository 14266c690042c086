package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name: "basic example",
			input: "type, client, tx, amount\n" +
				"deposit, 1, 1, 1.0\n" +
				"deposit, 2, 2, 2.0\n" +
				"deposit, 1, 3, 2.0\n" +
				"withdrawal, 1, 4, 1.5\n" +
				"withdrawal, 2, 5, 3.0\n",
			want: "client,available,held,total,locked\n" +
				"1,1.5000,0.0000,1.5000,false\n" +
				"2,2.0000,0.0000,2.0000,false\n",
		},
		{
			name: "withdrawal over available",
			input: "type,client,tx,amount\n" +
				"deposit,1,1,20.0\n" +
				"withdrawal,1,2,25.0\n",
			want: "client,available,held,total,locked\n" +
				"1,20.0000,0.0000,20.0000,false\n",
		},
		{
			name: "retroactive resolve",
			input: "type,client,tx,amount\n" +
				"deposit,1,1,100.0\n" +
				"deposit,1,2,50.0\n" +
				"dispute,1,1,\n" +
				"withdrawal,1,3,150.0\n" +
				"resolve,1,1,\n",
			want: "client,available,held,total,locked\n" +
				"1,0.0000,0.0000,0.0000,false\n",
		},
		{
			name: "no revival of withdrawal rejected before dispute",
			input: "type,client,tx,amount\n" +
				"deposit,1,1,100.0\n" +
				"deposit,1,2,50.0\n" +
				"withdrawal,1,3,200.0\n" +
				"dispute,1,2,\n" +
				"resolve,1,2,\n" +
				"dispute,1,2,\n",
			want: "client,available,held,total,locked\n" +
				"1,100.0000,50.0000,150.0000,false\n",
		},
		{
			name: "chargeback locks",
			input: "type,client,tx,amount\n" +
				"deposit,1,1,10\n" +
				"dispute,1,1\n" +
				"chargeback,1,1\n" +
				"deposit,1,2,5\n" +
				"dispute,3,1\n",
			want: "client,available,held,total,locked\n" +
				"1,0.0000,0.0000,0.0000,true\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run([]string{writeInput(t, tc.input)}, &out, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestRunFailures(t *testing.T) {
	t.Run("should require exactly one argument", func(t *testing.T) {
		var out bytes.Buffer
		assert.ErrorIs(t, run(nil, &out, zap.NewNop()), errUsage)
		assert.ErrorIs(t, run([]string{"a", "b"}, &out, zap.NewNop()), errUsage)
		assert.Empty(t, out.String())
	})

	t.Run("should fail on missing file", func(t *testing.T) {
		var out bytes.Buffer
		err := run([]string{filepath.Join(t.TempDir(), "nope.csv")}, &out, zap.NewNop())
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Empty(t, out.String())
	})

	t.Run("should fail before replaying a malformed file", func(t *testing.T) {
		var out bytes.Buffer
		err := run([]string{writeInput(t, "type,client,tx,amount\ndeposit,1,1,1\nbogus,1,2,1\n")}, &out, zap.NewNop())
		assert.Error(t, err)
		assert.Empty(t, out.String())
	})
}
