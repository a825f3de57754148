package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripSnapshot = `name = "Trip"
currency = "USD"
members = ["A", "B", "C"]

[[expenses]]
description = "Dinner"
amount = 90.0
paid_by = "A"
split_between = ["A", "B", "C"]
category = "Food & Dining"
`

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "group.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBalancesCommand(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "balances", "-f", path)
	require.NoError(t, err)

	assert.Contains(t, out, "TRIP")
	assert.Contains(t, out, "$60.00")
	assert.Contains(t, out, "-$30.00")
	assert.Contains(t, out, "Total spend")
	assert.Contains(t, out, "$90.00")
	assert.Contains(t, out, "Suggested settlements")
}

func TestSettleCommand_Apply(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "settle", "-f", path, "--apply")
	require.NoError(t, err)
	assert.Contains(t, out, "Recorded 2 settlement(s)")

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 3)
	assert.Equal(t, "Debt Cancellation", snap.Expenses[1].Category)
	assert.Equal(t, "B", snap.Expenses[1].PaidBy)
	assert.Equal(t, []string{"A"}, snap.Expenses[1].SplitBetween)
	assert.NotNil(t, snap.Expenses[1].Date)

	out, err = run(t, "settle", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "All settled up.")

	out, err = run(t, "balances", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "$90.00", "total spend must not count cancellations")
	assert.NotContains(t, out, "$150.00")
}

func TestSettleCommand_DryRunLeavesFile(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	_, err := run(t, "settle", "-f", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, tripSnapshot, string(data))
}

func TestLoadSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "no members",
			content: `name = "X"` + "\n" + `currency = "USD"`,
			want:    "at least one member",
		},
		{
			name: "empty split",
			content: `members = ["A"]
[[expenses]]
description = "Oops"
amount = 5.0
paid_by = "A"
split_between = []
`,
			want: "at least one member",
		},
		{
			name: "negative amount",
			content: `members = ["A"]
[[expenses]]
description = "Refund"
amount = -5.0
paid_by = "A"
split_between = ["A"]
`,
			want: "invalid amount",
		},
		{
			name:    "malformed toml",
			content: `members = [`,
			want:    "parsing snapshot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSnapshot(writeSnapshot(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"From", "To", "Amount"},
		Rows:    [][]string{{"B", "A", "$30.00"}},
	})

	assert.Contains(t, out, "From")
	assert.Contains(t, out, "$30.00")
	assert.Contains(t, out, "╭")
	assert.Empty(t, RenderTable(Table{}))
}

func TestBalancesCommand_Member(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "balances", "-f", path, "--member", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "B")
	assert.Contains(t, out, "-$30.00")
	assert.NotContains(t, out, "Suggested settlements")

	out, err = run(t, "balances", "-f", path, "-m", "Nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "$0.00")
}

func TestAddCommand(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	out, err := run(t, "add", "-f", path, "-d", "Taxi", "-a", "12,50", "-p", "B", "-s", "A,B")
	require.NoError(t, err)
	assert.Contains(t, out, "$12.50")

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Expenses, 2)
	added := snap.Expenses[1]
	assert.Equal(t, "Taxi", added.Description)
	assert.InDelta(t, 12.5, added.Amount, 1e-9)
	assert.Equal(t, []string{"A", "B"}, added.SplitBetween)
	assert.Equal(t, "General", added.Category)

	_, err = run(t, "add", "-f", path, "-d", "Snacks", "-a", "9", "-p", "C")
	require.NoError(t, err)
	snap, err = LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, snap.Expenses[2].SplitBetween)
}

func TestAddCommand_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "bad amount", args: []string{"-d", "X", "-a", "abc", "-p", "A"}, want: "invalid amount"},
		{name: "zero amount", args: []string{"-d", "X", "-a", "0", "-p", "A"}, want: "invalid amount"},
		{name: "blank description", args: []string{"-d", " ", "-a", "5", "-p", "A"}, want: "description is required"},
		{name: "reserved category", args: []string{"-d", "X", "-a", "5", "-p", "A", "-c", "Debt Cancellation"}, want: "reserved"},
		{name: "missing payer flag", args: []string{"-d", "X", "-a", "5"}, want: "paid-by"},
		{name: "blank split name", args: []string{"-d", "X", "-a", "5", "-p", "A", "-s", "A,,B"}, want: "names must not be empty"},
		{name: "duplicate split name", args: []string{"-d", "X", "-a", "5", "-p", "A", "-s", "A, A"}, want: "duplicate name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSnapshot(t, tripSnapshot)
			args := append([]string{"add", "-f", path}, tt.args...)
			_, err := run(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tripSnapshot, string(data))
		})
	}
}

func TestAddCommand_TrimsSplitNames(t *testing.T) {
	path := writeSnapshot(t, tripSnapshot)

	_, err := run(t, "add", "-f", path, "-d", "Taxi", "-a", "10", "-p", "A", "-s", "A, B")
	require.NoError(t, err)

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, snap.Expenses[1].SplitBetween)

	out, err := run(t, "balances", "-f", path, "-m", "B")
	require.NoError(t, err)
	assert.Contains(t, out, "-$35.00")
}

func TestLoadSnapshot_Names(t *testing.T) {
	t.Run("trims surrounding spaces", func(t *testing.T) {
		snap, err := LoadSnapshot(writeSnapshot(t, `members = [" A", "B "]
[[expenses]]
description = "Lunch"
amount = 10.0
paid_by = " A "
split_between = ["A", " B"]
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, snap.Members)
		assert.Equal(t, "A", snap.Expenses[0].PaidBy)
		assert.Equal(t, []string{"A", "B"}, snap.Expenses[0].SplitBetween)
	})

	t.Run("rejects duplicate split names", func(t *testing.T) {
		_, err := LoadSnapshot(writeSnapshot(t, `members = ["A", "B"]
[[expenses]]
description = "Lunch"
amount = 10.0
paid_by = "A"
split_between = ["B", " B"]
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "split_between")
		assert.Contains(t, err.Error(), "duplicate name")
	})

	t.Run("validate rejects untrimmed names", func(t *testing.T) {
		snap := &Snapshot{
			Members: []string{"A", "B"},
			Expenses: []SnapshotExpense{
				{Description: "Taxi", Amount: 10, PaidBy: "A", SplitBetween: []string{"A", " B"}},
			},
		}
		err := snap.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "surrounding spaces")
	})
}

func TestSaveSnapshot(t *testing.T) {
	t.Run("replaces the file without leftovers", func(t *testing.T) {
		path := writeSnapshot(t, tripSnapshot)
		snap, err := LoadSnapshot(path)
		require.NoError(t, err)

		snap.Name = "Renamed"
		require.NoError(t, SaveSnapshot(path, snap))

		reloaded, err := LoadSnapshot(path)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", reloaded.Name)

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "group.toml", entries[0].Name())

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})

	t.Run("failed replace keeps the directory clean", func(t *testing.T) {
		dir := t.TempDir()
		target := filepath.Join(dir, "group.toml")
		require.NoError(t, os.Mkdir(target, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(target, "keep"), []byte("x"), 0o644))

		err := SaveSnapshot(target, &Snapshot{Name: "Trip", Members: []string{"A"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "replacing snapshot")

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].IsDir())
	})

	t.Run("missing directory", func(t *testing.T) {
		err := SaveSnapshot(filepath.Join(t.TempDir(), "nope", "group.toml"), &Snapshot{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "creating snapshot file")
	})
}
