package staging

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
)

const (
	rawDir       = "raw"
	processedDir = "processed"
	dateLayout   = "2006-01-02"
)

// Files stages batches as JSON under dir/raw/{date}.json and
// dir/processed/{date}.json.
type Files struct {
	dir string
}

func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

func (f *Files) WriteRaw(ctx context.Context, batch usecase.RawBatch) (string, error) {
	return f.write(ctx, rawDir, batch.Date, batch)
}

func (f *Files) ReadRaw(ctx context.Context, date time.Time) (usecase.RawBatch, error) {
	var batch usecase.RawBatch
	err := f.read(ctx, rawDir, date, &batch)
	return batch, err
}

func (f *Files) WriteProcessed(ctx context.Context, batch usecase.CanonicalBatch) (string, error) {
	return f.write(ctx, processedDir, batch.Date, batch)
}

func (f *Files) ReadProcessed(ctx context.Context, date time.Time) (usecase.CanonicalBatch, error) {
	var batch usecase.CanonicalBatch
	err := f.read(ctx, processedDir, date, &batch)
	return batch, err
}

func (f *Files) path(kind string, date time.Time) string {
	return filepath.Join(f.dir, kind, date.UTC().Format(dateLayout)+".json")
}

// write replaces the staged file through a rename so readers never see a
// partial batch.
func (f *Files) write(ctx context.Context, kind string, date time.Time, v any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := sonic.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s batch: %w", kind, err)
	}

	target := f.path(kind, date)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".batch-*")
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close staging file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("publish staging file: %w", err)
	}
	return target, nil
}

func (f *Files) read(ctx context.Context, kind string, date time.Time, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := f.path(kind, date)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: no %s batch staged at %s", usecase.ErrNotFound, kind, path)
		}
		return fmt.Errorf("read staging file: %w", err)
	}
	if err := sonic.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s batch %s: %w", kind, path, err)
	}
	return nil
}
