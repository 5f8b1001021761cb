package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/dwitter/internal/identity"
)

// MetaRecord is a stored meta with its identifier and write order.
type MetaRecord struct {
	ID   identity.ID
	Meta *identity.Meta
	Seq  int64
}

// SaveMeta upserts the meta for id. A rewrite moves the row to the end of
// the listing order.
func (s *Store) SaveMeta(ctx context.Context, id identity.ID, meta *identity.Meta) error {
	if meta == nil {
		return fmt.Errorf("save meta %s: nil meta", id)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO metas
		(identifier, version, algorithm, public_key, seed, fingerprint, seq)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM metas))
		ON CONFLICT(identifier) DO UPDATE SET
			version = excluded.version,
			algorithm = excluded.algorithm,
			public_key = excluded.public_key,
			seed = excluded.seed,
			fingerprint = excluded.fingerprint,
			seq = excluded.seq
	`,
		id.String(),
		meta.Version,
		meta.Key.Algorithm,
		meta.Key.Data,
		meta.Seed,
		meta.Fingerprint,
	)
	if err != nil {
		return fmt.Errorf("save meta %s: %w", id, err)
	}
	return nil
}

// LoadMeta returns the meta stored for id. The bool is false when none is.
func (s *Store) LoadMeta(ctx context.Context, id identity.ID) (*identity.Meta, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT version, algorithm, public_key, seed, fingerprint
		FROM metas
		WHERE identifier = ?
	`, id.String())

	var m identity.Meta
	err := row.Scan(&m.Version, &m.Key.Algorithm, &m.Key.Data, &m.Seed, &m.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load meta %s: %w", id, err)
	}
	return &m, true, nil
}

// ListMetas returns every stored meta ordered by seq, identifier.
// Returns an empty slice (not nil) when the table is empty.
func (s *Store) ListMetas(ctx context.Context) ([]MetaRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT identifier, version, algorithm, public_key, seed, fingerprint, seq
		FROM metas
		ORDER BY seq ASC, identifier COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query metas: %w", err)
	}
	defer rows.Close()

	records := []MetaRecord{}
	for rows.Next() {
		var (
			identifier string
			rec        MetaRecord
			m          identity.Meta
		)
		if err := rows.Scan(&identifier, &m.Version, &m.Key.Algorithm, &m.Key.Data, &m.Seed, &m.Fingerprint, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		id, err := identity.ParseID(identifier)
		if err != nil {
			return nil, fmt.Errorf("scan meta: %w", err)
		}
		rec.ID = id
		rec.Meta = &m
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metas: %w", err)
	}
	return records, nil
}

// DeleteMeta removes the meta for id. Deleting a missing meta is not an error.
func (s *Store) DeleteMeta(ctx context.Context, id identity.ID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metas WHERE identifier = ?`, id.String()); err != nil {
		return fmt.Errorf("delete meta %s: %w", id, err)
	}
	return nil
}
