package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Staging persists intermediate batches between stage-only invocations.
type Staging interface {
	WriteRaw(ctx context.Context, batch RawBatch) (string, error)
	ReadRaw(ctx context.Context, date time.Time) (RawBatch, error)
	WriteProcessed(ctx context.Context, batch CanonicalBatch) (string, error)
	ReadProcessed(ctx context.Context, date time.Time) (CanonicalBatch, error)
}

type Stage string

const (
	StageExtract   Stage = "extract"
	StageTransform Stage = "transform"
	StageLoad      Stage = "load"
	StageAll       Stage = "all"
)

func ParseStage(v string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(v))) {
	case "", StageAll:
		return StageAll, nil
	case StageExtract:
		return StageExtract, nil
	case StageTransform:
		return StageTransform, nil
	case StageLoad:
		return StageLoad, nil
	default:
		return "", fmt.Errorf("%w: unknown stage %q (extract|transform|load|all)", ErrInvalidInput, v)
	}
}
