package usecase

import (
	"testing"

	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
)

func TestExtractService_ExtractDate_OnlyCompletedTrackedGames(t *testing.T) {
	t.Parallel()

	provider := openerProvider()
	preseason := openerGame()
	preseason.ID = 2024010001
	preseason.GameType = 1
	upcoming := openerGame()
	upcoming.ID = secondGame
	upcoming.State = "PRE"
	provider.scores[openerDate] = append(provider.scores[openerDate], preseason, upcoming)
	provider.details[mcDavid] = ExternalPlayerDetail{PlayerID: mcDavid, FirstName: "Connor", LastName: "McDavid", ShootsCatches: "L"}

	service := NewExtractService(provider, ExtractConfig{Workers: 3, PlayerDetails: true}, nil, logging.NewNop())
	batch, err := service.ExtractDate(t.Context(), day(openerDate))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(batch.Games) != 2 {
		t.Fatalf("preseason games must be dropped, got %d games", len(batch.Games))
	}
	if len(batch.Boxscores) != 1 || provider.boxCalls != 1 {
		t.Fatalf("only the completed game has a box score, got %d (calls=%d)", len(batch.Boxscores), provider.boxCalls)
	}
	if len(batch.Details) != 1 || len(batch.Failures) != 0 {
		t.Fatalf("landing misses must not be entity failures: details=%d failures=%+v", len(batch.Details), batch.Failures)
	}
	if got := batch.RowsExtracted(); got != 8 {
		t.Fatalf("expected 2 games + 3 lines + 3 players, got %d", got)
	}
}
