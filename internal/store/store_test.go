package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andresmejia3/blankmap/internal/types"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}

// TestStoreIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Explicitly check for Docker availability and fail hard if missing
	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blankmap_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Initialize Store (runs migrations)
	s, err := New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)

	// --- Test Scenarios ---

	atlas := types.Atlas{Superregion: "United States", AreaType: "States", OutputRoot: "/out/United States"}
	records := []types.AreaRecord{
		{Ordinate: 1, LatinName: "Alabama", NativeName: "Alabama", SpriteLocation: "United States/States/Alabama"},
		{Ordinate: 2, LatinName: "New York", NativeName: "New York", SpriteLocation: "United States/States/New_York"},
	}

	id, err := s.SaveAtlas(ctx, atlas, records)
	if err != nil {
		t.Fatalf("SaveAtlas failed: %v", err)
	}
	if id <= 0 {
		t.Errorf("Expected positive atlas ID, got %d", id)
	}

	// Re-saving replaces areas instead of duplicating them
	records = append(records, types.AreaRecord{Ordinate: 3, LatinName: "Ohio", NativeName: "Ohio", SpriteLocation: "United States/States/Ohio"})
	id2, err := s.SaveAtlas(ctx, atlas, records)
	if err != nil {
		t.Fatalf("Second SaveAtlas failed: %v", err)
	}
	if id2 != id {
		t.Errorf("Expected atlas to be reused (ID %d), got %d", id, id2)
	}

	areas, err := s.ListAreas(ctx, "United States", "States")
	if err != nil {
		t.Fatalf("ListAreas failed: %v", err)
	}
	if len(areas) != 3 {
		t.Fatalf("Expected 3 areas, got %d", len(areas))
	}
	if areas[1] != records[1] {
		t.Errorf("Area mismatch. Got %+v, want %+v", areas[1], records[1])
	}

	atlases, err := s.ListAtlases(ctx)
	if err != nil {
		t.Fatalf("ListAtlases failed: %v", err)
	}
	if len(atlases) != 1 || atlases[0].AreaCount != 3 {
		t.Errorf("Unexpected atlases: %+v", atlases)
	}

	// Label keeps the untouched name
	if err := s.LabelArea(ctx, "United States", "States", 2, "", "nyoo york"); err != nil {
		t.Fatalf("LabelArea failed: %v", err)
	}
	areas, _ = s.ListAreas(ctx, "United States", "States")
	if areas[1].NativeName != "New York" || areas[1].PhoneticName != "nyoo york" {
		t.Errorf("Label not applied correctly: %+v", areas[1])
	}

	err = s.LabelArea(ctx, "United States", "States", 99, "x", "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown area, got %v", err)
	}

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := s.ListAtlases(ctx); err == nil {
		t.Error("Expected error listing atlases after tables were dropped")
	}
}
