package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	qb "github.com/riskibarqy/nhl-warehouse/internal/platform/querybuilder"
)

func TestQuoteLiteral(t *testing.T) {
	got := quoteLiteral("o'hara")
	if got != "'o''hara'" {
		t.Fatalf("unexpected quoted literal: %s", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get run: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(sql.ErrConnDone) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestNullableHelpers(t *testing.T) {
	t.Run("optional string trims to nil", func(t *testing.T) {
		if optionalString("  ") != nil {
			t.Fatalf("expected nil for blank string")
		}
		if got := optionalString(" boom "); got == nil || *got != "boom" {
			t.Fatalf("unexpected value: %v", got)
		}
	})

	t.Run("null values map to zero values", func(t *testing.T) {
		if nullStringValue(sql.NullString{}) != "" || nullTimePtr(sql.NullTime{}) != nil || nullFloatPtr(sql.NullFloat64{}) != nil {
			t.Fatalf("expected zero values for NULL")
		}
	})

	t.Run("valid time is normalized to UTC", func(t *testing.T) {
		local := time.Date(2025, 1, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
		got := nullTimePtr(sql.NullTime{Time: local, Valid: true})
		if got == nil || got.Location() != time.UTC || !got.Equal(local) {
			t.Fatalf("unexpected time: %v", got)
		}
	})
}

func TestPipelineRunModel_KeyedByRunID(t *testing.T) {
	columns := qb.Columns(&pipelineRunTableModel{})
	if len(columns) == 0 || columns[0] != runIDColumn {
		t.Fatalf("expected %s as the first pipeline_runs column, got %v", runIDColumn, columns)
	}
	for _, c := range columns {
		if c == "id" {
			t.Fatalf("pipeline_runs has no id column: %v", columns)
		}
	}
}
