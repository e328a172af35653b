package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/localmeet/localmeet-server/internal/geo"
	"github.com/localmeet/localmeet-server/internal/models"
)

// defaultQueryWindow is how far ahead a range query looks when no end
// date is given.
const defaultQueryWindow = 60 * 24 * time.Hour

// eventPathPattern matches the only path shape the store ever generates.
// Anything else, absolute paths and ".." segments included, never reaches
// the filesystem.
var eventPathPattern = regexp.MustCompile(`^events/\d{4}/\d{2}/\d{2}_[a-z0-9_]+\.json$`)

// Slug normalizes an event title into a filename fragment: lowercased,
// with every non-alphanumeric byte replaced by an underscore.
func Slug(title string) string {
	b := []byte(strings.ToLower(title))
	for i, c := range b {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			b[i] = '_'
		}
	}
	return string(b)
}

// EventRelPath computes the data-dir-relative storage path for an event,
// sharded by calendar month: events/{year}/{month}/{day}_{slug}.json.
func EventRelPath(date time.Time, title string) string {
	return fmt.Sprintf("events/%04d/%02d/%02d_%s.json",
		date.Year(), int(date.Month()), date.Day(), Slug(title))
}

func validateEvent(event *models.Event) error {
	if len(strings.TrimSpace(event.Title)) < 5 {
		return ErrInvalidEvent
	}
	if event.Date.IsZero() {
		return ErrInvalidEvent
	}
	if event.OriginalFilePath != "" && !eventPathPattern.MatchString(event.OriginalFilePath) {
		return ErrInvalidEvent
	}
	return nil
}

// WriteEvent persists an event document and keeps the owner's profile in
// step with it. When the computed path differs from the event's current
// OriginalFilePath the old file is removed and the profile reference moved.
//
// The profile is saved before the event file: a crash in between leaves at
// worst an unreferenced event file on disk, never a profile pointing at a
// missing file (MostRecentEventByUser heals the latter anyway).
func (r *FileRepository) WriteEvent(ctx context.Context, event *models.Event, owner *models.User) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	targetPath := EventRelPath(event.Date, event.Title)

	mu := r.lockPath(targetPath)
	mu.Lock()
	defer mu.Unlock()

	absTarget := filepath.Join(r.dataDir, filepath.FromSlash(targetPath))
	if _, err := os.Stat(absTarget); err == nil && event.OriginalFilePath != targetPath {
		return ErrEventCollision
	}

	if event.OriginalFilePath != "" && event.OriginalFilePath != targetPath {
		oldAbs := filepath.Join(r.dataDir, filepath.FromSlash(event.OriginalFilePath))
		if err := os.Remove(oldAbs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing old event file: %w", err)
		}
		owner.RemoveCreatedEventFile(event.OriginalFilePath)
	}

	owner.AddCreatedEventFile(targetPath)
	if err := r.SaveProfile(ctx, owner); err != nil {
		return err
	}

	event.OriginalFilePath = targetPath
	if err := os.MkdirAll(filepath.Dir(absTarget), 0o755); err != nil {
		return fmt.Errorf("error creating event directory: %w", err)
	}
	data, err := json.MarshalIndent(event, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializing event: %w", err)
	}
	if err := os.WriteFile(absTarget, data, 0o644); err != nil {
		return fmt.Errorf("error writing event: %w", err)
	}
	return nil
}

// ReadEventByPath loads one event document by its data-dir-relative path.
// Paths that do not have the store's own shape are treated as not found.
func (r *FileRepository) ReadEventByPath(ctx context.Context, relPath string) (*models.Event, error) {
	if !eventPathPattern.MatchString(relPath) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, relPath)
	}
	data, err := os.ReadFile(filepath.Join(r.dataDir, filepath.FromSlash(relPath)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, relPath)
	}
	var event models.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, relPath)
	}
	return &event, nil
}

// QueryEvents enumerates every month shard intersecting the query range in
// chronological order and loads each event document. Files that fail to
// parse are logged and skipped. Filtering is shard-granular: callers that
// need day-level precision at the range edges filter on Event.Date too.
func (r *FileRepository) QueryEvents(ctx context.Context, q EventQuery) ([]models.Event, error) {
	start := q.Start
	if start.IsZero() {
		start = time.Now()
	}
	end := q.End
	if end.IsZero() {
		end = start.Add(defaultQueryWindow)
	}

	events := []models.Event{}
	year, month := start.Year(), int(start.Month())
	endYear, endMonth := end.Year(), int(end.Month())

	for year < endYear || (year == endYear && month <= endMonth) {
		if err := ctx.Err(); err != nil {
			return events, err
		}

		shard := filepath.Join(r.dataDir, "events", fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
		entries, err := os.ReadDir(shard)
		if err != nil && !os.IsNotExist(err) {
			return events, fmt.Errorf("error listing event shard: %w", err)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(shard, entry.Name()))
			if err != nil {
				r.log.Warn(ctx, "skipping unreadable event file", "file", entry.Name(), "error", err)
				continue
			}
			var event models.Event
			if err := json.Unmarshal(data, &event); err != nil {
				r.log.Warn(ctx, "skipping malformed event file", "file", entry.Name(), "error", err)
				continue
			}

			if q.Center != nil && q.RadiusKm > 0 && event.Location != nil {
				if geo.Distance(*q.Center, *event.Location) > q.RadiusKm {
					continue
				}
			}
			events = append(events, event)
		}

		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return events, nil
}

// MostRecentEventByUser returns the event behind the last entry of the
// owner's EventFilesCreated list. Entries whose files are missing or
// unreadable are pruned from the profile and the next most recent entry is
// tried, so a dangling reference heals itself on read. An empty list
// yields the canonical example event for form pre-population.
func (r *FileRepository) MostRecentEventByUser(ctx context.Context, owner *models.User) (*models.Event, error) {
	for len(owner.EventFilesCreated) > 0 {
		relPath := owner.EventFilesCreated[len(owner.EventFilesCreated)-1]
		event, err := r.ReadEventByPath(ctx, relPath)
		if err == nil {
			return event, nil
		}

		r.log.Warn(ctx, "pruning dangling event reference", "user", owner.Username, "path", relPath)
		owner.RemoveCreatedEventFile(relPath)
		if err := r.SaveProfile(ctx, owner); err != nil {
			return nil, err
		}
	}
	return models.ExampleEvent(), nil
}
