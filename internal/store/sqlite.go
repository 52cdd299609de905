package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/coasterscan/internal/model"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLite stores each record as a JSON payload next to the columns it is
// looked up by
type SQLite struct {
	db   *sql.DB
	path string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		PRIMARY KEY (kind, id)
	)`,
	`CREATE TABLE IF NOT EXISTS source_pages (
		id TEXT PRIMARY KEY,
		entity_kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		payload BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id TEXT PRIMARY KEY,
		entity_kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		status TEXT NOT NULL,
		payload BLOB NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS proposals_status ON proposals(status)`,
}

// NewSQLite opens (and creates if needed) the database at path
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "coasterscan.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the configured database path
func (s *SQLite) Path() string { return s.path }

// CreateEntity stores a new entity, assigning an id when empty
func (s *SQLite) CreateEntity(ctx context.Context, e *model.Entity) error {
	if err := prepareEntity(e); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entity: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO entities(kind, id, payload) VALUES(?, ?, ?)`,
		string(e.Kind), e.ID, data); err != nil {
		return fmt.Errorf("insert %s %s: %w", e.Kind, e.ID, err)
	}
	return nil
}

// GetEntity returns the entity or ErrNotFound
func (s *SQLite) GetEntity(ctx context.Context, kind model.Kind, id string) (*model.Entity, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM entities WHERE kind = ? AND id = ?`, string(kind), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s %s: %w", kind, id, err)
	}

	var e model.Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", kind, id, err)
	}
	return &e, nil
}

// ListEntities returns entities of a kind sorted by name
func (s *SQLite) ListEntities(ctx context.Context, kind model.Kind) ([]*model.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM entities WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("select entities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*model.Entity, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var e model.Entity
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decode entity: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortEntities(out)
	return out, nil
}

// UpdateEntity replaces an existing entity
func (s *SQLite) UpdateEntity(ctx context.Context, e *model.Entity) error {
	old, err := s.GetEntity(ctx, e.Kind, e.ID)
	if err != nil {
		return err
	}
	e.CreatedAt = old.CreatedAt
	e.UpdatedAt = now()

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entity: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE entities SET payload = ? WHERE kind = ? AND id = ?`,
		data, string(e.Kind), e.ID); err != nil {
		return fmt.Errorf("update %s %s: %w", e.Kind, e.ID, err)
	}
	return nil
}

// SaveSourcePage stores a provenance record
func (s *SQLite) SaveSourcePage(ctx context.Context, p *model.SourcePage) error {
	prepareSourcePage(p)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode source page: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO source_pages(id, entity_kind, entity_id, payload) VALUES(?, ?, ?, ?)`,
		p.ID, string(p.EntityKind), p.EntityID, data); err != nil {
		return fmt.Errorf("insert source page: %w", err)
	}
	return nil
}

// GetSourcePage returns a provenance record or ErrNotFound
func (s *SQLite) GetSourcePage(ctx context.Context, id string) (*model.SourcePage, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM source_pages WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("source page %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select source page: %w", err)
	}

	var p model.SourcePage
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode source page: %w", err)
	}
	return &p, nil
}

// SaveProposal stores a new proposal
func (s *SQLite) SaveProposal(ctx context.Context, p *model.Proposal) error {
	prepareProposal(p)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode proposal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO proposals(id, entity_kind, entity_id, status, payload) VALUES(?, ?, ?, ?, ?)`,
		p.ID, string(p.EntityKind), p.EntityID, string(p.Status), data); err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// GetProposal returns a proposal or ErrNotFound
func (s *SQLite) GetProposal(ctx context.Context, id string) (*model.Proposal, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM proposals WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("proposal %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select proposal: %w", err)
	}
	return decodeProposal(data)
}

// ListProposals returns matching proposals, newest first
func (s *SQLite) ListProposals(ctx context.Context, filter ProposalFilter) ([]*model.Proposal, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.EntityKind != "" {
		where = append(where, "entity_kind = ?")
		args = append(args, string(filter.EntityKind))
	}
	if filter.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, filter.EntityID)
	}

	query := `SELECT payload FROM proposals`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select proposals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*model.Proposal, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		p, err := decodeProposal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortProposals(out)
	return out, nil
}

// UpdateProposal replaces an existing proposal
func (s *SQLite) UpdateProposal(ctx context.Context, p *model.Proposal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode proposal: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE proposals SET status = ?, payload = ? WHERE id = ?`,
		string(p.Status), data, p.ID)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("proposal %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

// Close closes the database
func (s *SQLite) Close() error {
	return s.db.Close()
}

// decodeProposal keeps numbers as json.Number so integers survive the round trip
func decodeProposal(data []byte) (*model.Proposal, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var p model.Proposal
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	return &p, nil
}

var _ Store = (*SQLite)(nil)
