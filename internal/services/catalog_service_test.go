package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/musiclib/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedProsti uploads "Прости" by Земфира, genre Поп, and approves it.
func seedProsti(t *testing.T, env *testEnv) *models.Track {
	t.Helper()
	env.genre(t, "Поп", "pop")
	tr := env.upload(t, UploadRequest{
		Title:       "Прости",
		ArtistNames: "Земфира",
		AlbumTitle:  "Прости меня моя любовь",
		GenreCodes:  []string{"pop"},
	})
	env.approve(t, tr.ID)
	return tr
}

func titles(p *Page[models.Track]) []string {
	out := []string{}
	for _, tr := range p.Items {
		out = append(out, tr.Title)
	}
	return out
}

func TestQueryScenarios(t *testing.T) {
	env := newTestEnv(t)
	seedProsti(t, env)
	ctx := context.Background()

	tests := []struct {
		name  string
		query TrackQuery
		want  []string
	}{
		{"unknown title", TrackQuery{Search: "Неизвестный трек"}, []string{}},
		{"search by artist", TrackQuery{Search: "Земфира"}, []string{"Прости"}},
		{"search by title", TrackQuery{Search: "Прости"}, []string{"Прости"}},
		{"search by genre name", TrackQuery{Search: "Поп"}, []string{"Прости"}},
		{"search by album", TrackQuery{Search: "любовь"}, []string{"Прости"}},
		{"genre code", TrackQuery{Genre: "pop"}, []string{"Прости"}},
		{"genre name is not a code", TrackQuery{Genre: "Поп"}, []string{}},
		{"artist substring", TrackQuery{Artist: "емфир"}, []string{"Прости"}},
		{"album substring", TrackQuery{Album: "моя"}, []string{"Прости"}},
		{"no filters", TrackQuery{}, []string{"Прости"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, mode := range []SearchMode{ModeSearchOnly, ModeSearchPlusFilter} {
				page, err := env.catalog.Query(ctx, tt.query, mode, ListingPages)
				require.NoError(t, err)
				assert.Equal(t, tt.want, titles(page))
				assert.EqualValues(t, len(tt.want), page.TotalCount)
			}
		})
	}
}

func TestQueryEmptyResultIsAPage(t *testing.T) {
	env := newTestEnv(t)

	page, err := env.catalog.Query(context.Background(), TrackQuery{Search: "Неизвестный трек"}, ModeSearchPlusFilter, APIPages)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Zero(t, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
}

func TestQueryHidesUnapprovedTracks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "zemfira")
	tr := env.upload(t, UploadRequest{Title: "Прости", UploaderID: &owner})

	page, err := env.catalog.Query(ctx, TrackQuery{Search: "Прости"}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)

	mine, err := env.catalog.MyUploads(ctx, owner, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Прости"}, titles(mine))

	env.approve(t, tr.ID)
	page, err = env.catalog.Query(ctx, TrackQuery{Search: "Прости"}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)

	_, err = env.uploads.ModerateTrack(ctx, tr.ID, models.TrackStatusRejected)
	require.NoError(t, err)
	page, err = env.catalog.Query(ctx, TrackQuery{Genre: "", Search: "Прости"}, ModeSearchPlusFilter, APIPages)
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func TestSearchModes(t *testing.T) {
	env := newTestEnv(t)
	seedProsti(t, env)
	ctx := context.Background()

	// search text matches, the genre facet does not
	q := TrackQuery{Search: "Земфира", Genre: "rock"}

	page, err := env.catalog.Query(ctx, q, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.Equal(t, []string{"Прости"}, titles(page))

	page, err = env.catalog.Query(ctx, q, ModeSearchPlusFilter, APIPages)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestQueryDeduplicatesJoinMatches(t *testing.T) {
	env := newTestEnv(t)
	env.genre(t, "Рок", "rock")
	env.genre(t, "Русский рок", "ru-rock")
	tr := env.upload(t, UploadRequest{
		Title:       "Рок-н-ролл мёртв",
		ArtistNames: "Аквариум|Рок-группа",
		GenreCodes:  []string{"rock", "ru-rock"},
	})
	env.approve(t, tr.ID)

	page, err := env.catalog.Query(context.Background(), TrackQuery{Search: "Рок"}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.TotalCount)
	assert.Len(t, page.Items, 1)
}

func seedTimeline(t *testing.T, env *testEnv, n int) {
	t.Helper()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		tr := &models.Track{
			Title:        fmt.Sprintf("track-%02d", i),
			Status:       models.TrackStatusApproved,
			AudioKey:     fmt.Sprintf("tracks/%02d.mp3", i),
			UploaderName: AnonymousUploader,
			UploadedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, env.store.Tracks().Create(context.Background(), tr))
	}
}

func TestPaginationDeterminism(t *testing.T) {
	env := newTestEnv(t)
	seedTimeline(t, env, 25)
	ctx := context.Background()

	first, err := env.catalog.Query(ctx, TrackQuery{Page: 1, PageSize: 12}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	require.Len(t, first.Items, 12)
	assert.Equal(t, "track-24", first.Items[0].Title)
	assert.Equal(t, "track-13", first.Items[11].Title)
	assert.EqualValues(t, 25, first.TotalCount)
	assert.Equal(t, 3, first.TotalPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrevious)
	for i := 1; i < len(first.Items); i++ {
		assert.True(t, first.Items[i-1].UploadedAt.After(first.Items[i].UploadedAt))
	}

	last, err := env.catalog.Query(ctx, TrackQuery{Page: 3, PageSize: 12}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.Equal(t, []string{"track-00"}, titles(last))
	assert.False(t, last.HasNext)
	assert.True(t, last.HasPrevious)
}

func TestListingPagePolicy(t *testing.T) {
	env := newTestEnv(t)
	seedTimeline(t, env, 25)
	ctx := context.Background()

	// sizes outside the allow-list fall back to the default
	for _, size := range []int{0, -1, 7, 100} {
		page, err := env.catalog.Query(ctx, TrackQuery{PageSize: size}, ModeSearchOnly, ListingPages)
		require.NoError(t, err)
		assert.Equal(t, 12, page.PageSize, size)
	}

	page, err := env.catalog.Query(ctx, TrackQuery{PageSize: 24}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.Len(t, page.Items, 24)

	// out of range pages clamp
	page, err = env.catalog.Query(ctx, TrackQuery{Page: 99}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, []string{"track-00"}, titles(page))

	page, err = env.catalog.Query(ctx, TrackQuery{Page: -4}, ModeSearchOnly, ListingPages)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
}

func TestAPIPagePolicy(t *testing.T) {
	env := newTestEnv(t)
	seedTimeline(t, env, 25)
	ctx := context.Background()

	page, err := env.catalog.Query(ctx, TrackQuery{}, ModeSearchPlusFilter, APIPages)
	require.NoError(t, err)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 3, page.TotalPages)

	page, err = env.catalog.Query(ctx, TrackQuery{PageSize: 500}, ModeSearchPlusFilter, APIPages)
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
	assert.Len(t, page.Items, 25)

	_, err = env.catalog.Query(ctx, TrackQuery{Page: 4}, ModeSearchPlusFilter, APIPages)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.catalog.Query(ctx, TrackQuery{Page: -1}, ModeSearchPlusFilter, APIPages)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetTrackVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "owner")
	stranger := env.user(t, "stranger")
	tr := env.upload(t, UploadRequest{Title: "Черновик", UploaderID: &owner})

	_, err := env.catalog.GetTrack(ctx, tr.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.catalog.GetTrack(ctx, tr.ID, &stranger)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := env.catalog.GetTrack(ctx, tr.ID, &owner)
	require.NoError(t, err)
	assert.Equal(t, "Черновик", got.Title)

	env.approve(t, tr.ID)
	_, err = env.catalog.GetTrack(ctx, tr.ID, nil)
	assert.NoError(t, err)
}

func TestAudioLocation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tr := env.upload(t, UploadRequest{Title: "Слушать"})
	env.approve(t, tr.ID)

	_, loc, err := env.catalog.AudioLocation(ctx, tr.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://blobs.test/"+tr.AudioKey, loc.URL)

	require.NoError(t, env.blobs.Delete(ctx, tr.AudioKey))
	_, _, err = env.catalog.AudioLocation(ctx, tr.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.upload(t, UploadRequest{ArtistNames: "DDT", AlbumTitle: "Актриса Весна"})

	artists, err := env.catalog.SuggestArtists(ctx, "DDT")
	require.NoError(t, err)
	require.Len(t, artists, 1)
	assert.Equal(t, "DDT", artists[0].Name)

	albums, err := env.catalog.SuggestAlbums(ctx, " Весна ")
	require.NoError(t, err)
	require.Len(t, albums, 1)

	artists, err = env.catalog.SuggestArtists(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, artists)

	albums, err = env.catalog.SuggestAlbums(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, albums)
}

func TestSuggestLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, err := env.store.Artists().UpsertByName(ctx, fmt.Sprintf("Band %02d", i))
		require.NoError(t, err)
	}

	artists, err := env.catalog.SuggestArtists(ctx, "band")
	require.NoError(t, err)
	require.Len(t, artists, suggestLimit)
	assert.Equal(t, "Band 00", artists[0].Name)
}
