package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryEnv(t *testing.T) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("BUDGET_STORAGE_BACKEND", "memory")
	t.Setenv("BUDGET_USER_ID", "user-1")
	t.Setenv("BUDGET_LOG_LEVEL", "error")
}

func TestShell_SharesOneSession(t *testing.T) {
	memoryEnv(t)
	in := strings.NewReader(strings.Join([]string{
		`add --kind income --amount 1000 --category salary --date 2024-06-05`,
		`add --amount 50 --category food --description "lunch with team" --date 2024-06-01`,
		`home`,
		`bogus`,
		`exit`,
	}, "\n"))
	var out bytes.Buffer

	err := newApp(in, &out).RunContext(context.Background(), []string{"budget", "shell"})

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "Saved income")
	assert.Contains(t, text, "KES 950.00")
	assert.Contains(t, text, "lunch with team")
	assert.Contains(t, text, "error:")
}

func TestShell_EOFEnds(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer

	err := newApp(strings.NewReader("planner\n"), &out).RunContext(context.Background(), []string{"budget", "shell"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Record some income")
}

func TestCategories_JSON(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer

	err := newApp(strings.NewReader(""), &out).RunContext(context.Background(), []string{"budget", "--json", "categories", "--kind", "expense"})

	require.NoError(t, err)
	var categories []string
	require.NoError(t, json.Unmarshal(out.Bytes(), &categories))
	assert.Contains(t, categories, "food")
}

func TestAdd_RejectsNegativeAmount(t *testing.T) {
	memoryEnv(t)
	var out bytes.Buffer

	err := newApp(strings.NewReader(""), &out).RunContext(context.Background(),
		[]string{"budget", "add", "--amount", "-5", "--category", "food"})

	assert.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	memoryEnv(t)
	t.Setenv("BUDGET_STORAGE_BACKEND", "postgres")
	var out bytes.Buffer

	err := newApp(strings.NewReader(""), &out).RunContext(context.Background(), []string{"budget", "home"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid storage backend")
}

func TestShell_AllAndShow(t *testing.T) {
	memoryEnv(t)
	in := strings.NewReader(strings.Join([]string{
		`add --kind income --amount 1000 --category salary --date 2024-06-05`,
		`add --amount 20 --category transport --date 2023-01-09`,
		`transactions --all`,
		`show --id missing`,
		`ls --all --month 2024-06`,
	}, "\n"))
	var out bytes.Buffer

	err := newApp(in, &out).RunContext(context.Background(), []string{"budget", "shell"})

	require.NoError(t, err)
	text := out.String()
	assert.Contains(t, text, "2023-01-09")
	assert.Less(t, strings.Index(text, "+KES 1,000.00"), strings.Index(text, "-KES 20.00"))
	assert.Contains(t, text, "error: show missing: transaction not found")
	assert.Contains(t, text, "cannot be combined")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
