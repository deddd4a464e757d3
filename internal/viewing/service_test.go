package viewing

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/streamflix-backend/pkg/db/dbtest"
	"github.com/angelmondragon/streamflix-backend/pkg/db/models"
	"github.com/angelmondragon/streamflix-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streamflix-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var baseTime = time.Date(2026, 4, 10, 20, 0, 0, 0, time.UTC)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (Service, *gorm.DB, *testClock) {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	clock := &testClock{now: baseTime}
	svc, err := NewService(ServiceParams{
		Repo:              NewRepository(conn),
		TransactionRunner: client,
		Clock:             clock.Now,
	})
	require.NoError(t, err)
	return svc, conn, clock
}

func seedTitle(t *testing.T, conn *gorm.DB, name string, kind enums.TitleType) *models.Title {
	t.Helper()
	title := &models.Title{Name: name, Type: kind, ReleaseYear: 2021}
	require.NoError(t, conn.Create(title).Error)
	return title
}

func seedEpisode(t *testing.T, conn *gorm.DB, titleID uint, number int) *models.Episode {
	t.Helper()
	episode := &models.Episode{TitleID: titleID, EpisodeNumber: number, DurationSeconds: 1800, VideoURL: "https://cdn.example.com/e.mp4"}
	require.NoError(t, conn.Create(episode).Error)
	return episode
}

func requireErrCode(t *testing.T, err error, code pkgerrors.Code, msg string) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, code, typed.Code())
	if msg != "" {
		assert.Equal(t, msg, typed.Message())
	}
}

func boolPtr(v bool) *bool { return &v }
func uintPtr(v uint) *uint { return &v }

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestRecordViewingUpsertsMovieProgress(t *testing.T) {
	svc, conn, clock := newTestService(t)
	ctx := context.Background()
	movie := seedTitle(t, conn, "Arrival", enums.TitleTypeMovie)

	first, err := svc.RecordViewing(ctx, 7, RecordViewingInput{TitleID: movie.ID, PositionSeconds: 120, TotalDurationSeconds: 6000})
	require.NoError(t, err)
	assert.True(t, first.AutoPlayNextEpisode)
	assert.Nil(t, first.CompletedAt)
	require.NotNil(t, first.Title)
	assert.Equal(t, "Arrival", first.Title.Name)

	clock.Advance(time.Minute)
	second, err := svc.RecordViewing(ctx, 7, RecordViewingInput{
		TitleID:              movie.ID,
		PositionSeconds:      900,
		TotalDurationSeconds: 6000,
		AutoPlayNextEpisode:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 900, second.PositionSeconds)
	assert.False(t, second.AutoPlayNextEpisode)
	assert.True(t, second.LastViewedAt.Equal(baseTime.Add(time.Minute)))

	var count int64
	require.NoError(t, conn.Model(&models.ViewingProgress{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRecordViewingStoresAutoPlayFalseOnInsert(t *testing.T) {
	svc, conn, _ := newTestService(t)
	movie := seedTitle(t, conn, "Heat", enums.TitleTypeMovie)

	got, err := svc.RecordViewing(context.Background(), 3, RecordViewingInput{
		TitleID:              movie.ID,
		TotalDurationSeconds: 100,
		AutoPlayNextEpisode:  boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, got.AutoPlayNextEpisode)
	assert.Zero(t, got.PositionSeconds)

	var stored models.ViewingProgress
	require.NoError(t, conn.First(&stored, got.ID).Error)
	assert.False(t, stored.AutoPlayNextEpisode)
	assert.False(t, stored.IsCompleted)
}

func TestRecordViewingTracksEpisodesSeparately(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	series := seedTitle(t, conn, "Dark", enums.TitleTypeSeries)
	ep1 := seedEpisode(t, conn, series.ID, 1)
	ep2 := seedEpisode(t, conn, series.ID, 2)

	_, err := svc.RecordViewing(ctx, 1, RecordViewingInput{TitleID: series.ID, EpisodeID: uintPtr(ep1.ID), PositionSeconds: 10, TotalDurationSeconds: 1800})
	require.NoError(t, err)
	got, err := svc.RecordViewing(ctx, 1, RecordViewingInput{TitleID: series.ID, EpisodeID: uintPtr(ep2.ID), PositionSeconds: 20, TotalDurationSeconds: 1800})
	require.NoError(t, err)
	require.NotNil(t, got.Episode)
	assert.Equal(t, 2, got.Episode.EpisodeNumber)

	rows, err := svc.GetViewingProgress(ctx, 1, series.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRecordViewingRejectsUnknownTitleOrEpisode(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	series := seedTitle(t, conn, "Dark", enums.TitleTypeSeries)
	other := seedTitle(t, conn, "Lost", enums.TitleTypeSeries)
	foreign := seedEpisode(t, conn, other.ID, 1)

	_, err := svc.RecordViewing(ctx, 1, RecordViewingInput{TitleID: 999, TotalDurationSeconds: 10})
	requireErrCode(t, err, pkgerrors.CodeNotFound, "Title with id 999 not found")

	_, err = svc.RecordViewing(ctx, 1, RecordViewingInput{TitleID: series.ID, EpisodeID: uintPtr(foreign.ID), TotalDurationSeconds: 10})
	requireErrCode(t, err, pkgerrors.CodeNotFound, "")
}

func TestCompletingTitleRemovesItFromWatchlist(t *testing.T) {
	svc, conn, clock := newTestService(t)
	ctx := context.Background()
	movie := seedTitle(t, conn, "Up", enums.TitleTypeMovie)

	_, err := svc.AddToWatchlist(ctx, 5, WatchlistInput{TitleID: movie.ID})
	require.NoError(t, err)

	clock.Advance(time.Hour)
	got, err := svc.RecordViewing(ctx, 5, RecordViewingInput{TitleID: movie.ID, PositionSeconds: 5400, TotalDurationSeconds: 5400, IsCompleted: true})
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(clock.now))

	list, err := svc.GetWatchlist(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, list)

	reopened, err := svc.RecordViewing(ctx, 5, RecordViewingInput{TitleID: movie.ID, PositionSeconds: 10, TotalDurationSeconds: 5400})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
	assert.False(t, reopened.IsCompleted)
}

func TestWatchlistLifecycle(t *testing.T) {
	svc, conn, clock := newTestService(t)
	ctx := context.Background()
	a := seedTitle(t, conn, "A", enums.TitleTypeMovie)
	b := seedTitle(t, conn, "B", enums.TitleTypeMovie)

	_, err := svc.AddToWatchlist(ctx, 2, WatchlistInput{TitleID: 404})
	requireErrCode(t, err, pkgerrors.CodeNotFound, "Title with id 404 not found")

	added, err := svc.AddToWatchlist(ctx, 2, WatchlistInput{TitleID: a.ID})
	require.NoError(t, err)
	require.NotNil(t, added.Title)

	_, err = svc.AddToWatchlist(ctx, 2, WatchlistInput{TitleID: a.ID})
	requireErrCode(t, err, pkgerrors.CodeValidation, "Title is already in your watchlist")

	clock.Advance(time.Minute)
	_, err = svc.AddToWatchlist(ctx, 2, WatchlistInput{TitleID: b.ID})
	require.NoError(t, err)

	list, err := svc.GetWatchlist(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].TitleID)

	removed, err := svc.RemoveFromWatchlist(ctx, 2, a.ID)
	require.NoError(t, err)
	require.NotNil(t, removed.RemovedAt)

	_, err = svc.RemoveFromWatchlist(ctx, 2, a.ID)
	requireErrCode(t, err, pkgerrors.CodeValidation, "Title is already removed from watchlist")

	_, err = svc.RemoveFromWatchlist(ctx, 9, a.ID)
	requireErrCode(t, err, pkgerrors.CodeNotFound, "Title with id 1 not found in watchlist for user 9")

	restored, err := svc.AddToWatchlist(ctx, 2, WatchlistInput{TitleID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, added.ID, restored.ID)
	assert.Nil(t, restored.RemovedAt)
}

func TestFeedsAndHistory(t *testing.T) {
	svc, conn, clock := newTestService(t)
	ctx := context.Background()
	titles := []*models.Title{
		seedTitle(t, conn, "One", enums.TitleTypeMovie),
		seedTitle(t, conn, "Two", enums.TitleTypeMovie),
		seedTitle(t, conn, "Three", enums.TitleTypeMovie),
	}

	for i, title := range titles {
		clock.Advance(time.Minute)
		_, err := svc.RecordViewing(ctx, 4, RecordViewingInput{
			TitleID:              title.ID,
			PositionSeconds:      100,
			TotalDurationSeconds: 100,
			IsCompleted:          i == 1,
		})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, 4)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, titles[2].ID, history[0].TitleID)

	cont, err := svc.ContinueWatching(ctx, 4, 0)
	require.NoError(t, err)
	require.Len(t, cont, 2)
	assert.Equal(t, titles[2].ID, cont[0].TitleID)
	assert.Equal(t, titles[0].ID, cont[1].TitleID)

	limited, err := svc.ContinueWatching(ctx, 4, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	done, err := svc.RecentlyCompleted(ctx, 4, 10)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, titles[1].ID, done[0].TitleID)

	other, err := svc.History(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestClearViewingProgress(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()
	series := seedTitle(t, conn, "Dark", enums.TitleTypeSeries)
	ep1 := seedEpisode(t, conn, series.ID, 1)
	ep2 := seedEpisode(t, conn, series.ID, 2)
	for _, ep := range []*models.Episode{ep1, ep2} {
		_, err := svc.RecordViewing(ctx, 1, RecordViewingInput{TitleID: series.ID, EpisodeID: uintPtr(ep.ID), TotalDurationSeconds: 10})
		require.NoError(t, err)
	}
	_, err := svc.RecordViewing(ctx, 2, RecordViewingInput{TitleID: series.ID, EpisodeID: uintPtr(ep1.ID), TotalDurationSeconds: 10})
	require.NoError(t, err)

	res, err := svc.ClearViewingProgress(ctx, 1, series.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Deleted)

	rows, err := svc.GetViewingProgress(ctx, 2, series.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.ClearViewingProgress(ctx, 1, 555)
	requireErrCode(t, err, pkgerrors.CodeNotFound, "Title with id 555 not found")
}

func TestNormalizeFeedLimit(t *testing.T) {
	assert.Equal(t, DefaultFeedLimit, normalizeFeedLimit(0))
	assert.Equal(t, MaxFeedLimit, normalizeFeedLimit(500))
	assert.Equal(t, 7, normalizeFeedLimit(7))
}
