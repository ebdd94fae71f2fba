package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/initiative/internal/engine"
)

// execute runs the CLI with args and returns stdout, stderr and the error.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// mustRun runs a command against db and fails the test on error.
func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, stderr, err := execute(t, "", append([]string{"--db", db}, args...)...)
	require.NoError(t, err, "args %v\nstdout:\n%s\nstderr:\n%s", args, out, stderr)
	return out
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "combat.db")
}

type snapshotResponse struct {
	Status  string          `json:"status"`
	Data    engine.Snapshot `json:"data"`
	TraceID string          `json:"trace_id"`
}

type combatantResponse struct {
	Status string          `json:"status"`
	Data   CombatantResult `json:"data"`
}

func decode[T any](t *testing.T, raw string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(raw), &v), "output:\n%s", raw)
	return v
}

func names(snap engine.Snapshot) []string {
	out := make([]string, len(snap.Combatants))
	for i, c := range snap.Combatants {
		out[i] = c.Name
	}
	return out
}

func TestAddAndShow_Text(t *testing.T) {
	db := tempDB(t)

	out := mustRun(t, db, "add", "Aria", "15", "--player")
	assert.Equal(t, "Added Aria (Init: 15, HP: N/A, AC: N/A)\n", out)

	out = mustRun(t, db, "add", "Goblin", "12", "--hp", "7", "--ac", "15")
	assert.Equal(t, "Added Goblin (Init: 12, HP: 7/7, AC: 15)\n", out)

	out = mustRun(t, db, "show")
	assert.Contains(t, out, "--- Round 1 ---")
	assert.Contains(t, out, ">>  Aria")
	assert.Contains(t, out, "Goblin          12    7/7          15   Monster")
}

func TestShow_JSON(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Goblin", "12", "--hp", "7")
	mustRun(t, db, "add", "Aria", "15")

	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.Equal(t, 1, resp.Data.Round)
	assert.Equal(t, []string{"Aria", "Goblin"}, names(resp.Data))

	// The pointer followed Goblin when Aria sorted in above it.
	assert.Equal(t, 1, resp.Data.CurrentIndex)
}

func TestShow_EmptyDatabase(t *testing.T) {
	out := mustRun(t, tempDB(t), "show")
	assert.Contains(t, out, "--- No encounter ---")
	assert.Contains(t, out, "(no combatants)")
}

func TestNext_WrapsAndIncrementsRound(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "A", "20")
	mustRun(t, db, "add", "B", "10")

	resp := decode[snapshotResponse](t, mustRun(t, db, "next", "--format", "json"))
	assert.Equal(t, 1, resp.Data.Round)
	assert.Equal(t, 1, resp.Data.CurrentIndex)

	resp = decode[snapshotResponse](t, mustRun(t, db, "next", "--format", "json"))
	assert.Equal(t, 2, resp.Data.Round)
	assert.Equal(t, 0, resp.Data.CurrentIndex)
}

func TestDamageAndHeal(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Goblin", "12", "--hp", "10")

	out := mustRun(t, db, "damage", "goblin", "7", "--type", "fire")
	assert.Equal(t, "Goblin: Took 7 fire damage (HP: 3/10 BLD)\n", out)

	out = mustRun(t, db, "dam", "Goblin", "50")
	assert.Equal(t, "Goblin: Took 50 damage (HP: 0/10 DEAD)\n", out)

	resp := decode[combatantResponse](t, mustRun(t, db, "heal", "Goblin", "99", "--format", "json"))
	require.NotNil(t, resp.Data.Combatant.CurrentHP)
	assert.Equal(t, 10, *resp.Data.Combatant.CurrentHP)
	assert.Len(t, resp.Data.Combatant.History, 3)
}

func TestDamage_UntrackedStillLogged(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15", "--player")

	out := mustRun(t, db, "damage", "Aria", "4", "--type", "cold")
	assert.Equal(t, "Aria: Took 4 cold damage (HP: N/A)\n", out)

	out = mustRun(t, db, "history", "Aria")
	assert.Equal(t, "--- History for Aria ---\n- Took 4 cold damage\n", out)
}

func TestDamage_NotFound(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15")

	out, _, err := execute(t, "", "--db", db, "damage", "Orc", "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Contains(t, out, `Error [E404]: combatant "Orc" not found`)
}

func TestDamage_NotFound_JSON(t *testing.T) {
	db := tempDB(t)

	out, _, err := execute(t, "", "--db", db, "--format", "json", "heal", "Orc", "5")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[CLIResponse](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
	assert.NotEmpty(t, resp.TraceID)
}

func TestInvalidArguments(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15")

	tests := []struct {
		name string
		args []string
	}{
		{"initiative not a number", []string{"add", "Orc", "fast"}},
		{"amount not a number", []string{"damage", "Aria", "lots"}},
		{"negative hp", []string{"add", "Orc", "3", "--hp=-1"}},
		{"zero duration", []string{"condition", "add", "Aria", "stunned", "--duration", "0"}},
		{"empty name", []string{"add", " ", "3"}},
		{"clear without confirmation", []string{"clear"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", append([]string{"--db", db}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error [E400]")
		})
	}

	// None of the rejected commands touched the roster.
	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Equal(t, []string{"Aria"}, names(resp.Data))
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "--db", tempDB(t), "--format", "yaml", "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.False(t, IsReported(err))
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRemove(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Goblin", "12")
	mustRun(t, db, "add", "goblin", "8")
	mustRun(t, db, "add", "Aria", "15")

	out := mustRun(t, db, "rem", "GOBLIN")
	assert.Contains(t, out, "Removed GOBLIN")

	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Equal(t, []string{"Aria"}, names(resp.Data))

	_, _, err := execute(t, "", "--db", db, "remove", "Goblin")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRemoveLast_EndsEncounter(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15")
	mustRun(t, db, "next")

	resp := decode[snapshotResponse](t, mustRun(t, db, "remove", "Aria", "--format", "json"))
	assert.Equal(t, 0, resp.Data.Round)
	assert.Equal(t, 0, resp.Data.CurrentIndex)
	assert.Empty(t, resp.Data.Combatants)
}

func TestClear(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15")
	mustRun(t, db, "add", "Goblin", "12")

	out := mustRun(t, db, "clear", "--yes")
	assert.Equal(t, "Encounter cleared\n", out)

	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Equal(t, 0, resp.Data.Round)
	assert.Empty(t, resp.Data.Combatants)
}

func TestConditions_ExpireOnTurnEnd(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15")
	mustRun(t, db, "add", "Goblin", "12")

	out := mustRun(t, db, "cond", "add", "Aria", "stunned", "-d", "1")
	assert.Equal(t, "Aria is now stunned(1r)\n", out)
	mustRun(t, db, "condition", "add", "Aria", "blessed")

	out = mustRun(t, db, "show")
	assert.Contains(t, out, "stunned(1r), blessed")

	// Aria's turn ends: stunned reaches zero and expires.
	resp := decode[snapshotResponse](t, mustRun(t, db, "next", "--format", "json"))
	aria := resp.Data.Combatants[0]
	require.Len(t, aria.Conditions, 1)
	assert.Equal(t, "blessed", aria.Conditions[0].Name)

	out = mustRun(t, db, "condition", "remove", "aria", "BLESSED")
	assert.Equal(t, "aria is no longer BLESSED\n", out)

	_, _, err := execute(t, "", "--db", db, "condition", "remove", "Orc", "prone")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestHistory_NoEntries(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "Aria", "15")

	out := mustRun(t, db, "history", "Aria")
	assert.Equal(t, "--- History for Aria ---\nNo history recorded.\n", out)

	_, _, err := execute(t, "", "--db", db, "history", "Orc")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSetInit_KeepsCurrentTurn(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "add", "A", "20")
	mustRun(t, db, "add", "B", "15")
	mustRun(t, db, "add", "C", "10")
	mustRun(t, db, "next") // B is current

	out := mustRun(t, db, "set-init", "B", "25")
	assert.Equal(t, "Updated B (Init: 25, HP: N/A, AC: N/A)\n", out)

	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Equal(t, []string{"B", "A", "C"}, names(resp.Data))
	assert.Equal(t, 0, resp.Data.CurrentIndex)
}

func TestImport(t *testing.T) {
	db := tempDB(t)
	roster := filepath.Join(t.TempDir(), "party.cue")
	require.NoError(t, os.WriteFile(roster, []byte(`
combatants: [
	{name: "Aria", initiative: 15, player: true},
	{name: "Goblin", initiative: 12, hp: 7, ac: 15,
		conditions: [{name: "prone"}]},
]
`), 0o644))

	out := mustRun(t, db, "import", roster)
	assert.Contains(t, out, "Imported 2 combatant(s)")
	assert.Contains(t, out, "prone")

	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Equal(t, []string{"Aria", "Goblin"}, names(resp.Data))
	assert.True(t, resp.Data.Combatants[0].IsPlayer)
}

func TestImport_InvalidFile(t *testing.T) {
	db := tempDB(t)
	roster := filepath.Join(t.TempDir(), "bad.cue")
	require.NoError(t, os.WriteFile(roster, []byte(`combatants: [{name: "Orc", initiative: 3, hp: -4}]`), 0o644))

	out, _, err := execute(t, "", "--db", db, "import", roster)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E422]")

	resp := decode[snapshotResponse](t, mustRun(t, db, "show", "--format", "json"))
	assert.Empty(t, resp.Data.Combatants)
}

func TestDatabaseDiscovery(t *testing.T) {
	dir := t.TempDir()

	// No database yet: combat.db is created in --dir.
	_, _, err := execute(t, "", "--dir", dir, "add", "Aria", "15")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "combat.db"))

	// A single database is picked up without --db.
	out, _, err := execute(t, "", "--dir", dir, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Aria")

	// Two databases and no --db is ambiguous.
	_, _, err = execute(t, "", "--db", filepath.Join(dir, "other.db"), "show")
	require.NoError(t, err)

	out, _, err = execute(t, "", "--dir", dir, "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E409]")
}

func TestOpen_Unusable(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "", "--db", dir, "show")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E500]")
}

func TestVerbose_LogsToStderr(t *testing.T) {
	db := tempDB(t)

	out, stderr, err := execute(t, "", "--db", db, "-v", "--format", "json", "add", "Aria", "15")
	require.NoError(t, err)
	assert.Contains(t, stderr, "combatant added")
	assert.Contains(t, stderr, "session=")

	resp := decode[combatantResponse](t, out)
	assert.Equal(t, "Aria", resp.Data.Combatant.Name)
}
