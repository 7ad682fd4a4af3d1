package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankfeed/internal/commands"
	"github.com/cleared-dev/bankfeed/internal/model"
	"github.com/cleared-dev/bankfeed/internal/rules"
)

// runBankfeed executes the CLI in-process and returns combined output.
func runBankfeed(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := commands.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

var testRules = []model.Rule{
	{Keyword: "starbucks", CategoryID: "restaurants"},
	{Keyword: "mario rossi", CategoryID: "transfers"},
	{Keyword: "coop", CategoryID: "groceries"},
}

// newWorkspace initializes a workspace with testRules.
func newWorkspace(t *testing.T, extraInitArgs ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, err := runBankfeed(t, append([]string{"init", dir}, extraInitArgs...)...)
	require.NoError(t, err)
	require.NoError(t, rules.Save(filepath.Join(dir, "rules", "categorization-rules.yaml"), testRules))
	return dir
}

// copyFixture copies testdata/<name> into dir.
func copyFixture(t *testing.T, name, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	dst := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
	return dst
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func gitLog(t *testing.T, dir, format string) string {
	t.Helper()
	cmd := exec.Command("git", "log", "--format="+format, "-1")
	cmd.Dir = dir
	out, err := cmd.Output()
	require.NoError(t, err)
	return string(out)
}
