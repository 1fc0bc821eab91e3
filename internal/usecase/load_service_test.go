package usecase

import (
	"errors"
	"testing"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/game"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/warehouse"
	warehousemock "github.com/riskibarqy/nhl-warehouse/internal/mocks/domain/warehouse"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func canonicalOpener(t *testing.T) game.Game {
	t.Helper()
	g, err := NewTransformer(logging.NewNop()).TransformGame(openerGame())
	if err != nil {
		t.Fatalf("transform game: %v", err)
	}
	return g
}

func TestLoadService_Load_WrapsStoreFailure(t *testing.T) {
	t.Parallel()

	store := warehousemock.NewStore(t)
	store.On("ExistingKeys", mock.Anything, warehouse.DimSeason, mock.Anything).Return(map[string]bool{"20242025": true}, nil).Once()
	store.On("ExistingKeys", mock.Anything, warehouse.DimTeam, mock.Anything).Return(map[string]bool{"EDM": true, "CGY": true}, nil).Twice()
	store.On("UpsertBatch", mock.Anything, warehouse.DimGame, mock.Anything).Return(warehouse.UpsertResult{}, errors.New("connection reset")).Once()

	service := NewLoadService(store, nil, logging.NewNop())
	_, err := service.Load(t.Context(), CanonicalBatch{Games: []game.Game{canonicalOpener(t)}})

	var loadErr *warehouse.LoadError
	if !errors.As(err, &loadErr) || loadErr.Table != "dim_game" || loadErr.Rows != 1 {
		t.Fatalf("expected load error for dim_game, got %v", err)
	}
}

func TestLoadService_Load_RejectsOrphansBeforeUpsert(t *testing.T) {
	t.Parallel()

	store := warehousemock.NewStore(t)
	store.On("ExistingKeys", mock.Anything, warehouse.DimSeason, mock.Anything).Return(map[string]bool{}, nil).Once()
	store.On("ExistingKeys", mock.Anything, warehouse.DimTeam, mock.Anything).Return(map[string]bool{"EDM": true, "CGY": true}, nil).Twice()

	service := NewLoadService(store, nil, logging.NewNop())
	result, err := service.Load(t.Context(), CanonicalBatch{Games: []game.Game{canonicalOpener(t)}})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(result.Rejections) != 1 || result.Rejections[0].Key != "2024020001" {
		t.Fatalf("expected the game to be rejected for its season, got %+v", result.Rejections)
	}
	store.AssertNotCalled(t, "UpsertBatch", mock.Anything, warehouse.DimGame, mock.Anything)
}

func TestLoadResult_Touched(t *testing.T) {
	t.Parallel()

	result := LoadResult{
		Skaters: warehouse.UpsertResult{
			Changed:  []string{"8478402|2024020001"},
			Accepted: []string{"8478402|2024020001", "8478402|2024020030", "8476456|2024020001"},
		},
		Goalies: warehouse.UpsertResult{Accepted: []string{"8479973|2024020001"}},
	}
	skaters := result.Touched(gamestats.KindSkater)
	if len(skaters) != 2 || len(skaters[mcDavid]) != 2 {
		t.Fatalf("unexpected skater touches: %v", skaters)
	}
	goalies := result.Touched(gamestats.KindGoalie)
	if _, ok := goalies[skinner][gameOpener]; !ok {
		t.Fatalf("unexpected goalie touches: %v", goalies)
	}
}
