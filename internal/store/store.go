package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresmejia3/blankmap/internal/types"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a catalog lookup matches nothing.
var ErrNotFound = errors.New("not found in catalog")

// Store manages the PostgreSQL catalog of generated atlases.
type Store struct {
	conn *pgx.Conn
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the catalog tables if they don't exist (Auto-Migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS atlases (
			id SERIAL PRIMARY KEY,
			superregion TEXT NOT NULL,
			area_type TEXT NOT NULL,
			output_root TEXT NOT NULL,
			generated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE (superregion, area_type)
		);
		CREATE TABLE IF NOT EXISTS areas (
			atlas_id INT NOT NULL REFERENCES atlases(id) ON DELETE CASCADE,
			ordinate INT NOT NULL,
			latin_name TEXT NOT NULL,
			native_name TEXT NOT NULL,
			phonetic_name TEXT NOT NULL DEFAULT '',
			sprite_location TEXT NOT NULL,
			PRIMARY KEY (atlas_id, ordinate)
		);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// SaveAtlas registers the atlas (or refreshes an existing one with the same
// superregion and area type) and replaces its areas. Returns the atlas ID.
func (s *Store) SaveAtlas(ctx context.Context, atlas types.Atlas, records []types.AreaRecord) (int, error) {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx, `
		INSERT INTO atlases (superregion, area_type, output_root, generated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (superregion, area_type) DO UPDATE SET output_root = EXCLUDED.output_root, generated_at = NOW()
		RETURNING id
	`, atlas.Superregion, atlas.AreaType, atlas.OutputRoot).Scan(&id)
	if err != nil {
		return 0, err
	}

	// 1. Clean up old areas to ensure idempotency on re-generation
	if _, err := tx.Exec(ctx, "DELETE FROM areas WHERE atlas_id = $1", id); err != nil {
		return 0, err
	}

	// 2. Bulk insert the fresh set
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{id, r.Ordinate, r.LatinName, r.NativeName, r.PhoneticName, r.SpriteLocation}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"areas"},
		[]string{"atlas_id", "ordinate", "latin_name", "native_name", "phonetic_name", "sprite_location"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy areas: %w", err)
	}

	return id, tx.Commit(ctx)
}

// ListAtlases returns every atlas in the catalog with its area count.
func (s *Store) ListAtlases(ctx context.Context) ([]types.Atlas, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT a.id, a.superregion, a.area_type, a.output_root, a.generated_at, COUNT(ar.ordinate)
		FROM atlases a
		LEFT JOIN areas ar ON ar.atlas_id = a.id
		GROUP BY a.id
		ORDER BY a.superregion, a.area_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atlases []types.Atlas
	for rows.Next() {
		var a types.Atlas
		if err := rows.Scan(&a.ID, &a.Superregion, &a.AreaType, &a.OutputRoot, &a.GeneratedAt, &a.AreaCount); err != nil {
			return nil, err
		}
		atlases = append(atlases, a)
	}
	return atlases, rows.Err()
}

// ListAreas returns the areas of one atlas ordered by ordinate.
func (s *Store) ListAreas(ctx context.Context, superregion, areaType string) ([]types.AreaRecord, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT ar.ordinate, ar.latin_name, ar.native_name, ar.phonetic_name, ar.sprite_location
		FROM areas ar
		JOIN atlases a ON a.id = ar.atlas_id
		WHERE a.superregion = $1 AND a.area_type = $2
		ORDER BY ar.ordinate
	`, superregion, areaType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []types.AreaRecord
	for rows.Next() {
		var r types.AreaRecord
		if err := rows.Scan(&r.Ordinate, &r.LatinName, &r.NativeName, &r.PhoneticName, &r.SpriteLocation); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LabelArea sets the native and phonetic names of one area. Empty values leave
// the current name untouched.
func (s *Store) LabelArea(ctx context.Context, superregion, areaType string, ordinate int, native, phonetic string) error {
	tag, err := s.conn.Exec(ctx, `
		UPDATE areas ar
		SET native_name = COALESCE(NULLIF($4, ''), ar.native_name),
		    phonetic_name = COALESCE(NULLIF($5, ''), ar.phonetic_name)
		FROM atlases a
		WHERE a.id = ar.atlas_id AND a.superregion = $1 AND a.area_type = $2 AND ar.ordinate = $3
	`, superregion, areaType, ordinate, native, phonetic)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("area %d of %s/%s: %w", ordinate, superregion, areaType, ErrNotFound)
	}
	return nil
}

// Reset drops all catalog tables.
// This is useful for development to force a schema refresh without migrations.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS areas CASCADE;
		DROP TABLE IF EXISTS atlases CASCADE;
	`)
	return err
}
