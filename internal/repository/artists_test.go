package repository

import (
	"context"
	"testing"

	"github.com/musiclib/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtistUpsertByNameIsIdempotent(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	first, err := store.Artists().UpsertByName(ctx, "Кипелов")
	require.NoError(t, err)
	second, err := store.Artists().UpsertByName(ctx, "Кипелов")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// exact match only, case is significant
	other, err := store.Artists().UpsertByName(ctx, "кипелов")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	var count int64
	require.NoError(t, db.Model(&models.Artist{}).Where("name = ?", "Кипелов").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestArtistUpsertByNameLosesRace(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()
	insertBeforeCreate(t, db, "artists", "INSERT INTO artists (name, created_at) VALUES (?, ?)", "Кипелов", baseTime)

	var got *models.Artist
	err := store.WithinTx(ctx, func(tx Store) error {
		var err error
		got, err = tx.Artists().UpsertByName(ctx, "Кипелов")
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "Кипелов", got.Name)
	assert.True(t, baseTime.Equal(got.CreatedAt))

	var rows []models.Artist
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, got.ID, rows[0].ID)
}

func TestArtistCreateDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Artists().Create(ctx, &models.Artist{Name: "DDT"}))
	assert.ErrorIs(t, store.Artists().Create(ctx, &models.Artist{Name: "DDT"}), ErrDuplicate)

	other := &models.Artist{Name: "Аквариум"}
	require.NoError(t, store.Artists().Create(ctx, other))
	other.Name = "DDT"
	assert.ErrorIs(t, store.Artists().Save(ctx, other), ErrDuplicate)
}

func TestArtistDeleteUnlinksTracks(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, err := store.Artists().UpsertByName(ctx, "Сплин")
	require.NoError(t, err)
	tr := seedTrack(t, store, "Выхода нет", models.TrackStatusApproved, baseTime)
	require.NoError(t, store.Tracks().ReplaceArtists(ctx, tr, []models.Artist{*a}))

	require.NoError(t, store.Artists().Delete(ctx, a.ID))
	assert.ErrorIs(t, store.Artists().Delete(ctx, a.ID), ErrNotFound)

	got, err := store.Tracks().FindByID(ctx, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Artists)
}

func TestArtistListAndSuggest(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"DDT", "Ddt Tribute", "Аквариум", "Кино", "ddt"} {
		_, err := store.Artists().UpsertByName(ctx, name)
		require.NoError(t, err)
	}

	list, total, err := store.Artists().List(ctx, ListParams{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, list, 2)
	assert.Equal(t, "DDT", list[0].Name)

	suggested, err := store.Artists().Suggest(ctx, "ddt", 10)
	require.NoError(t, err)
	names := make([]string, 0, len(suggested))
	for _, a := range suggested {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"DDT", "Ddt Tribute", "ddt"}, names)

	limited, err := store.Artists().Suggest(ctx, "ddt", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.Artists().Suggest(ctx, "%", 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	cyrillic, err := store.Artists().Suggest(ctx, "аквар", 10)
	require.NoError(t, err)
	require.Len(t, cyrillic, 1)
	assert.Equal(t, "Аквариум", cyrillic[0].Name)

	list, total, err = store.Artists().List(ctx, ListParams{Query: "КИН"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Кино", list[0].Name)
}
