package staging

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/game"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
)

func TestFiles_RawRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := NewFiles(dir)
	date := time.Date(2024, 10, 8, 0, 0, 0, 0, time.UTC)
	score := 3
	batch := usecase.RawBatch{
		Date:  date,
		Games: []usecase.ExternalGame{{ID: 2024020001, Season: "20242025", GameType: 2, GameDate: "2024-10-08", HomeAbbrev: "EDM", AwayAbbrev: "CGY", HomeScore: &score, State: "OFF"}},
		Details: map[int64]usecase.ExternalPlayerDetail{
			8478402: {PlayerID: 8478402, FirstName: "Connor", LastName: "McDavid"},
		},
		Failures: []usecase.FetchFailure{{Entity: "boxscore", Key: "2024020001", Message: "boom"}},
	}

	path, err := files.WriteRaw(t.Context(), batch)
	if err != nil {
		t.Fatalf("write raw: %v", err)
	}
	if path != filepath.Join(dir, "raw", "2024-10-08.json") {
		t.Fatalf("unexpected path: %s", path)
	}

	got, err := files.ReadRaw(t.Context(), date)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if diff := cmp.Diff(batch, got); diff != "" {
		t.Fatalf("raw batch mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles_ProcessedRoundTrip(t *testing.T) {
	t.Parallel()

	files := NewFiles(t.TempDir())
	date := time.Date(2024, 10, 8, 0, 0, 0, 0, time.UTC)
	batch := usecase.CanonicalBatch{
		Date:       date,
		Games:      []game.Game{{ID: 2024020001, SeasonID: "20242025", GameType: 2, GameDate: date, HomeTeam: "EDM", AwayTeam: "CGY", State: game.StateFinal}},
		Rejections: []usecase.Rejection{{Table: "dim_player", Key: "1", Reason: "bad position"}},
	}
	if _, err := files.WriteProcessed(t.Context(), batch); err != nil {
		t.Fatalf("write processed: %v", err)
	}
	got, err := files.ReadProcessed(t.Context(), date)
	if err != nil {
		t.Fatalf("read processed: %v", err)
	}
	if len(got.Games) != 1 || !got.Games[0].GameDate.Equal(date) || got.Games[0].State != game.StateFinal {
		t.Fatalf("unexpected games: %+v", got.Games)
	}
	if diff := cmp.Diff(batch.Rejections, got.Rejections); diff != "" {
		t.Fatalf("rejections mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles_MissingBatchIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := NewFiles(t.TempDir()).ReadProcessed(t.Context(), time.Now())
	if !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
