// Package repository implements the file-backed persistence layer: the
// identity ledger, user profile documents, month-sharded event documents
// and the tag catalogs, all stored under a single data directory.
package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/localmeet/localmeet-server/internal/geo"
	"github.com/localmeet/localmeet-server/internal/logging"
	"github.com/localmeet/localmeet-server/internal/models"
)

// Validation and conflict errors surfaced to callers. Lookups signal
// absence with a nil record and a nil error, never with an error.
var (
	ErrInvalidUsername   = errors.New("username must be non-empty and alphanumeric")
	ErrWeakPassword      = errors.New("password must be at least 8 characters with upper, lower, digit and symbol")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInvalidEvent      = errors.New("event must have a title of at least 5 characters and a valid date")
	ErrEventCollision    = errors.New("a different event already exists at the target path")
	ErrEventNotFound     = errors.New("event not found")
	ErrMissingNameColumn = errors.New("tag catalog must have a 'name' column")
)

// EventQuery filters a range query over the event store. Zero Start
// defaults to now, zero End to Start plus 60 days. Center and RadiusKm
// enable the great-circle filter when both are set.
type EventQuery struct {
	Start    time.Time
	End      time.Time
	Center   *geo.Location
	RadiusKm float64
}

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	// Identity ledger operations
	UsernameExists(ctx context.Context, username string) (bool, error)
	GetUserLookupByUsername(ctx context.Context, username string) (*models.UserLookup, error)
	GetUserLookupByID(ctx context.Context, userID int64) (*models.UserLookup, error)
	CreateUser(ctx context.Context, username, plaintext string) (int64, error)

	// Profile operations
	LoadProfile(ctx context.Context, filename string) (*models.User, error)
	SaveProfile(ctx context.Context, user *models.User) error

	// Event operations
	WriteEvent(ctx context.Context, event *models.Event, owner *models.User) error
	ReadEventByPath(ctx context.Context, relPath string) (*models.Event, error)
	QueryEvents(ctx context.Context, q EventQuery) ([]models.Event, error)
	MostRecentEventByUser(ctx context.Context, owner *models.User) (*models.Event, error)

	// Tag catalog operations
	CategoryTags(ctx context.Context) ([]models.Tag, error)
	GroupTags(ctx context.Context) ([]models.Tag, error)
}

// FileRepository implements the Repository interface on a plain filesystem.
//
// Layout under the data directory:
//
//	users/_user_lookup.csv                      identity ledger
//	users/{lowercase-username}.json             profile documents
//	events/{year}/{month}/{day}_{slug}.json     event documents
//	tags/categoryTags.csv, tags/groupTags.csv   tag catalogs
type FileRepository struct {
	dataDir string
	log     logging.Logger

	// ledgerMu guards the scan-for-uniqueness / next-id / append sequence
	// in CreateUser. Single-process deployment is assumed.
	ledgerMu sync.Mutex

	// pathLocks serializes event writes per target path, so writes for
	// different dates stay concurrent.
	pathMu    sync.Mutex
	pathLocks map[string]*sync.Mutex
}

// NewFileRepository creates a repository rooted at dataDir. The directory
// is expected to exist (see config.SetupDataDir).
func NewFileRepository(dataDir string, log logging.Logger) *FileRepository {
	return &FileRepository{
		dataDir:   dataDir,
		log:       log,
		pathLocks: make(map[string]*sync.Mutex),
	}
}

// DataDir returns the root of the repository's on-disk state.
func (r *FileRepository) DataDir() string {
	return r.dataDir
}

// lockPath returns the mutex guarding writes to one relative path.
func (r *FileRepository) lockPath(relPath string) *sync.Mutex {
	r.pathMu.Lock()
	defer r.pathMu.Unlock()
	mu, ok := r.pathLocks[relPath]
	if !ok {
		mu = &sync.Mutex{}
		r.pathLocks[relPath] = mu
	}
	return mu
}
