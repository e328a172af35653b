package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localmeet/localmeet-server/internal/geo"
	"github.com/localmeet/localmeet-server/internal/models"
)

func testEvent(title string, date time.Time) *models.Event {
	return &models.Event{
		EventID:           "evt_test",
		Title:             title,
		Description:       "A test event.",
		Date:              date,
		Duration:          models.DurationOneToTwo,
		Location:          &geo.Location{Latitude: 51.5, Longitude: -0.1},
		ContactVisibility: models.ContactVisibilityLoggedIn,
		Size:              models.EventSizeSmall,
		AddedBy:           1,
		AddedAt:           time.Now(),
		LastEdited:        time.Now(),
		RegisteredUsers:   []int64{},
		InterestedUsers:   []int64{},
	}
}

func countEventFiles(t *testing.T, dataDir string) int {
	t.Helper()
	count := 0
	err := filepath.Walk(filepath.Join(dataDir, "events"), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".json" {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "pottery_class", Slug("Pottery Class"))
	assert.Equal(t, "caf__night_", Slug("Café Night!"))
	assert.Equal(t, "run_5k", Slug("Run 5k"))
}

func TestEventRelPath(t *testing.T) {
	date := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "events/2026/09/05_pottery_class.json", EventRelPath(date, "Pottery Class"))
}

func TestWriteEventCreatesFileAndProfileReference(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	owner := testProfile()
	owner.EventFilesCreated = nil
	event := testEvent("Pottery Class", time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC))

	require.NoError(t, repo.WriteEvent(ctx, event, owner))

	assert.Equal(t, "events/2026/09/05_pottery_class.json", event.OriginalFilePath)
	assert.Equal(t, []string{"events/2026/09/05_pottery_class.json"}, owner.EventFilesCreated)

	// The profile write is observable on disk, not just in memory.
	stored, err := repo.LoadProfile(ctx, "alice1.json")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, owner.EventFilesCreated, stored.EventFilesCreated)

	loaded, err := repo.ReadEventByPath(ctx, event.OriginalFilePath)
	require.NoError(t, err)
	assert.Equal(t, "Pottery Class", loaded.Title)
}

func TestWriteEventValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()

	err := repo.WriteEvent(ctx, testEvent("Tiny", time.Now()), owner)
	assert.ErrorIs(t, err, ErrInvalidEvent)

	undated := testEvent("Valid Title", time.Time{})
	err = repo.WriteEvent(ctx, undated, owner)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestWriteEventRejectsPathOutsideEventTree(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	// A file next to the data directory must survive a write that claims
	// it as the event's previous location.
	victim := filepath.Join(filepath.Dir(repo.DataDir()), "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("keep me"), 0o644))

	for _, relPath := range []string{
		"../victim.txt",
		"/etc/passwd",
		"users/alice1.json",
		"events/2026/09/../../../victim.txt",
	} {
		event := testEvent("Pottery Class", time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC))
		event.OriginalFilePath = relPath
		err := repo.WriteEvent(ctx, event, owner)
		assert.ErrorIs(t, err, ErrInvalidEvent, relPath)
	}

	_, err := os.Stat(victim)
	assert.NoError(t, err)
	assert.Empty(t, owner.EventFilesCreated)
}

func TestReadEventByPathRejectsMalformedPath(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, relPath := range []string{
		"../outside.json",
		"/etc/passwd",
		"users/alice1.json",
		"events/2026/09/../../09/05_sneaky.json",
	} {
		_, err := repo.ReadEventByPath(ctx, relPath)
		assert.ErrorIs(t, err, ErrEventNotFound, relPath)
	}
}

func TestWriteEventRewriteSamePathIsNotACollision(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	date := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	event := testEvent("Pottery Class", date)
	require.NoError(t, repo.WriteEvent(ctx, event, owner))

	// Same logical event, unchanged title and date: same target path, no error.
	event.Description = "Updated description."
	require.NoError(t, repo.WriteEvent(ctx, event, owner))

	assert.Equal(t, 1, countEventFiles(t, repo.DataDir()))
	assert.Equal(t, []string{"events/2026/09/05_pottery_class.json"}, owner.EventFilesCreated)
}

func TestWriteEventCollisionWithDifferentEvent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	date := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	require.NoError(t, repo.WriteEvent(ctx, testEvent("Pottery Class", date), owner))

	other := testEvent("Pottery Class", date)
	other.EventID = "evt_other"
	err := repo.WriteEvent(ctx, other, owner)
	assert.ErrorIs(t, err, ErrEventCollision)

	// The original file was not clobbered.
	loaded, err := repo.ReadEventByPath(ctx, "events/2026/09/05_pottery_class.json")
	require.NoError(t, err)
	assert.Equal(t, "evt_test", loaded.EventID)
}

func TestWriteEventRename(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	event := testEvent("Pottery Class", time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC))
	require.NoError(t, repo.WriteEvent(ctx, event, owner))

	// Moving the date to another month changes the shard path.
	event.Date = time.Date(2026, 10, 12, 19, 0, 0, 0, time.UTC)
	require.NoError(t, repo.WriteEvent(ctx, event, owner))

	assert.Equal(t, "events/2026/10/12_pottery_class.json", event.OriginalFilePath)
	assert.Equal(t, 1, countEventFiles(t, repo.DataDir()))
	assert.Equal(t, []string{"events/2026/10/12_pottery_class.json"}, owner.EventFilesCreated)

	_, err := repo.ReadEventByPath(ctx, "events/2026/09/05_pottery_class.json")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestQueryEventsAcrossShards(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	dates := []time.Time{
		time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 1, 18, 30, 0, 0, time.UTC),
	}
	titles := []string{"September Social", "October Walkabout", "December Market"}
	for i, d := range dates {
		require.NoError(t, repo.WriteEvent(ctx, testEvent(titles[i], d), owner))
	}

	events, err := repo.QueryEvents(ctx, EventQuery{
		Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Shards are visited in chronological order.
	assert.Equal(t, "September Social", events[0].Title)
	assert.Equal(t, "October Walkabout", events[1].Title)
}

func TestQueryEventsSkipsMalformedFiles(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	date := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	require.NoError(t, repo.WriteEvent(ctx, testEvent("Pottery Class", date), owner))

	shard := filepath.Join(repo.DataDir(), "events", "2026", "09")
	require.NoError(t, os.WriteFile(filepath.Join(shard, "10_broken.json"), []byte("{not json"), 0o644))

	events, err := repo.QueryEvents(ctx, EventQuery{
		Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Pottery Class", events[0].Title)
}

func TestQueryEventsGeoFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	date := time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC)
	near := testEvent("Near The Centre", date)
	near.Location = &geo.Location{Latitude: 51.5, Longitude: -0.1}
	require.NoError(t, repo.WriteEvent(ctx, near, owner))

	far := testEvent("Far Far Away Fair", date.AddDate(0, 0, 1))
	far.Location = &geo.Location{Latitude: 52.5, Longitude: -0.1}
	require.NoError(t, repo.WriteEvent(ctx, far, owner))

	events, err := repo.QueryEvents(ctx, EventQuery{
		Start:    time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		Center:   &geo.Location{Latitude: 51.5, Longitude: -0.1},
		RadiusKm: 1,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Near The Centre", events[0].Title)
}

func TestQueryEventsCancelledContext(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.QueryEvents(ctx, EventQuery{
		Start: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMostRecentEventByUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	first := testEvent("First Gathering", time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC))
	second := testEvent("Second Gathering", time.Date(2026, 9, 6, 19, 0, 0, 0, time.UTC))
	require.NoError(t, repo.WriteEvent(ctx, first, owner))
	require.NoError(t, repo.WriteEvent(ctx, second, owner))

	event, err := repo.MostRecentEventByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Second Gathering", event.Title)
}

func TestMostRecentEventSelfHealing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	owner := testProfile()
	owner.EventFilesCreated = nil

	valid := testEvent("Valid Gathering", time.Date(2026, 9, 5, 19, 0, 0, 0, time.UTC))
	require.NoError(t, repo.WriteEvent(ctx, valid, owner))

	// A dangling reference sits after the valid one.
	owner.AddCreatedEventFile("events/2026/09/09_deleted_event.json")
	require.NoError(t, repo.SaveProfile(ctx, owner))

	event, err := repo.MostRecentEventByUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Valid Gathering", event.Title)

	// The dangling path was pruned and the pruned profile persisted.
	assert.Equal(t, []string{"events/2026/09/05_valid_gathering.json"}, owner.EventFilesCreated)
	stored, err := repo.LoadProfile(ctx, "alice1.json")
	require.NoError(t, err)
	assert.Equal(t, owner.EventFilesCreated, stored.EventFilesCreated)
}

func TestMostRecentEventEmptyListReturnsExample(t *testing.T) {
	repo := newTestRepo(t)
	owner := testProfile()
	owner.EventFilesCreated = nil

	event, err := repo.MostRecentEventByUser(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, "evt_example", event.EventID)
}
