package history

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablestakes/sitngo/internal/evaluator"
	"github.com/tablestakes/sitngo/internal/game"
)

// playTournament drives an engine with passive players until it
// completes, producing real hand records.
func playTournament(t *testing.T, seed int64) *game.Engine {
	t.Helper()
	names := []string{"alice", "bob", "carol"}
	engine, err := game.NewEngine(names, 200, evaluator.New(),
		game.WithRNG(rand.New(rand.NewSource(seed))),
		game.WithLogger(log.New(io.Discard)),
	)
	require.NoError(t, err)

	for hands := 0; engine.Status() == game.StatusActive && hands < 500; hands++ {
		require.NoError(t, engine.StartHand())
		for engine.CurrentActor() >= 0 {
			actor := engine.CurrentActor()
			act := game.ActionFold
			for _, va := range engine.SeatView(actor).Valid {
				if va.Type == game.ActionCheck {
					act = game.ActionCheck
					break
				}
				if va.Type == game.ActionCall {
					act = game.ActionCall
				}
			}
			require.NoError(t, engine.ApplyAction(actor, act, 0))
		}
	}
	require.Equal(t, game.StatusCompleted, engine.Status())
	return engine
}

func TestWriteAndReadBack(t *testing.T) {
	engine := playTournament(t, 42)
	path := filepath.Join(t.TempDir(), "hands.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	for _, rec := range engine.History() {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())

	records, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, records, len(engine.History()))

	for i, rec := range records {
		assert.Equal(t, i+1, rec.HandNumber)
		assert.Equal(t, engine.History()[i].Payouts, rec.Payouts)
		assert.Equal(t, engine.History()[i].FinalStacks, rec.FinalStacks)
	}
}

func TestWriterAppendsAcrossReopens(t *testing.T) {
	engine := playTournament(t, 7)
	records := engine.History()
	require.GreaterOrEqual(t, len(records), 2)
	path := filepath.Join(t.TempDir(), "hands.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(records[0]))
	require.NoError(t, w.Close())

	w, err = NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRecord(records[1]))
	require.NoError(t, w.Close())

	got, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, records[0].HandNumber, got[0].HandNumber)
	assert.Equal(t, records[1].HandNumber, got[1].HandNumber)
}

func TestWriterCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "hands.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestVerifyReplaysRecordedTournament(t *testing.T) {
	engine := playTournament(t, 99)
	path := filepath.Join(t.TempDir(), "hands.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	for _, rec := range engine.History() {
		require.NoError(t, w.WriteRecord(rec))
	}
	require.NoError(t, w.Close())

	require.NoError(t, Verify(path, evaluator.New()))
}

func TestVerifyRejectsTamperedRecord(t *testing.T) {
	engine := playTournament(t, 13)
	path := filepath.Join(t.TempDir(), "hands.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	rec := engine.History()[0]
	rec.Payouts = map[int]int{0: 1}
	require.NoError(t, w.WriteRecord(rec))
	require.NoError(t, w.Close())

	require.Error(t, Verify(path, evaluator.New()))
}

func TestReadAllSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hands.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("\n\n"), 0o644))

	records, err := ReadAll(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadAllRejectsCorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hands.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0o644))

	_, err := ReadAll(path)
	require.Error(t, err)
}

func TestReadAllMissingFile(t *testing.T) {
	_, err := ReadAll(filepath.Join(t.TempDir(), "absent.jsonl"))
	require.Error(t, err)
}
