package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := NewSQLite(filepath.Join(t.TempDir(), "db", "coasterscan.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sq.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestStore_Entities(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			park := &model.Entity{
				Kind:        model.KindPark,
				Name:        "Efteling",
				WebsiteURL:  model.Ptr("https://www.efteling.com"),
				OpeningYear: model.Ptr(1952),
				Latitude:    model.Ptr(51.65),
			}
			require.NoError(t, s.CreateEntity(ctx, park))
			assert.NotEmpty(t, park.ID)
			assert.False(t, park.CreatedAt.IsZero())

			require.NoError(t, s.CreateEntity(ctx, &model.Entity{Kind: model.KindPark, Name: "Does Not Exist Land"}))
			require.NoError(t, s.CreateEntity(ctx, &model.Entity{Kind: model.KindManufacturer, Name: "Vekoma"}))

			got, err := s.GetEntity(ctx, model.KindPark, park.ID)
			require.NoError(t, err)
			assert.Equal(t, "Efteling", got.Name)
			require.NotNil(t, got.OpeningYear)
			assert.Equal(t, 1952, *got.OpeningYear)
			assert.Equal(t, "https://www.efteling.com", got.Website())

			parks, err := s.ListEntities(ctx, model.KindPark)
			require.NoError(t, err)
			require.Len(t, parks, 2)
			assert.Equal(t, "Does Not Exist Land", parks[0].Name)

			got.Name = "Efteling Theme Park"
			require.NoError(t, s.UpdateEntity(ctx, got))
			again, err := s.GetEntity(ctx, model.KindPark, park.ID)
			require.NoError(t, err)
			assert.Equal(t, "Efteling Theme Park", again.Name)
			assert.True(t, again.CreatedAt.Equal(park.CreatedAt))

			_, err = s.GetEntity(ctx, model.KindManufacturer, park.ID)
			assert.ErrorIs(t, err, ErrNotFound)

			err = s.UpdateEntity(ctx, &model.Entity{Kind: model.KindPark, ID: "missing", Name: "x"})
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_CreateEntityValidation(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Error(t, s.CreateEntity(ctx, &model.Entity{Kind: model.KindPark, Name: "  "}))
			assert.Error(t, s.CreateEntity(ctx, &model.Entity{Kind: "ride", Name: "x"}))

			e := &model.Entity{ID: "fixed", Kind: model.KindPark, Name: "A"}
			require.NoError(t, s.CreateEntity(ctx, e))
			assert.Error(t, s.CreateEntity(ctx, &model.Entity{ID: "fixed", Kind: model.KindPark, Name: "B"}))
		})
	}
}

func TestStore_SourcePages(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			page := &model.SourcePage{
				EntityKind: model.KindPark,
				EntityID:   "p1",
				URL:        "https://www.efteling.com",
				StatusCode: 200,
				RawHTML:    strings.Repeat("x", model.MaxProvenanceChars+50),
				CleanText:  "Efteling opened in 1952.",
			}
			require.NoError(t, s.SaveSourcePage(ctx, page))
			require.NotEmpty(t, page.ID)

			got, err := s.GetSourcePage(ctx, page.ID)
			require.NoError(t, err)
			assert.Len(t, got.RawHTML, model.MaxProvenanceChars)
			assert.Equal(t, "Efteling opened in 1952.", got.CleanText)
			assert.Equal(t, 200, got.StatusCode)

			_, err = s.GetSourcePage(ctx, "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_Proposals(t *testing.T) {
	restore := now
	defer func() { now = restore }()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			first := &model.Proposal{
				EntityKind: model.KindPark,
				EntityID:   "p1",
				SourceURL:  "https://www.efteling.com",
				Current:    model.FieldMap{"opening_year": nil},
				Suggested:  model.FieldMap{"opening_year": 1952},
			}
			require.NoError(t, s.SaveProposal(ctx, first))
			assert.Equal(t, model.StatusPending, first.Status)

			second := &model.Proposal{
				EntityKind: model.KindManufacturer,
				EntityID:   "m1",
				Suggested:  model.FieldMap{"country_code": "NL"},
			}
			require.NoError(t, s.SaveProposal(ctx, second))

			all, err := s.ListProposals(ctx, ProposalFilter{})
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, second.ID, all[0].ID, "newest first")

			parks, err := s.ListProposals(ctx, ProposalFilter{EntityKind: model.KindPark})
			require.NoError(t, err)
			require.Len(t, parks, 1)

			got, err := s.GetProposal(ctx, first.ID)
			require.NoError(t, err)
			assert.Contains(t, got.Current, "opening_year")
			assert.Nil(t, got.Current["opening_year"])
			assert.Equal(t, "1952", fmt.Sprint(got.Suggested["opening_year"]))

			reviewed := now()
			got.Status = model.StatusAccepted
			got.ReviewedAt = &reviewed
			require.NoError(t, s.UpdateProposal(ctx, got))

			pending, err := s.ListProposals(ctx, ProposalFilter{Status: model.StatusPending})
			require.NoError(t, err)
			require.Len(t, pending, 1)
			assert.Equal(t, second.ID, pending[0].ID)

			assert.ErrorIs(t, s.UpdateProposal(ctx, &model.Proposal{ID: "missing"}), ErrNotFound)
			_, err = s.GetProposal(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLite_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coasterscan.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	e := &model.Entity{Kind: model.KindManufacturer, Name: "Intamin", CountryCode: model.Ptr("CH")}
	require.NoError(t, s.CreateEntity(ctx, e))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetEntity(ctx, model.KindManufacturer, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CountryCode)
	assert.Equal(t, "CH", *got.CountryCode)
	assert.Equal(t, path, reopened.Path())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	p := &model.Proposal{EntityKind: model.KindPark, EntityID: "p1", Suggested: model.FieldMap{"name": "A"}}
	require.NoError(t, m.SaveProposal(ctx, p))

	got, err := m.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	got.Suggested["name"] = "B"

	again, err := m.GetProposal(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Suggested["name"])
}

func TestOpen(t *testing.T) {
	s, err := Open(model.StoreConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(model.StoreConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)
	require.NoError(t, s.Close())

	_, err = Open(model.StoreConfig{Driver: "postgres"})
	assert.Error(t, err)
}
