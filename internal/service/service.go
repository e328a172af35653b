package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/localmeet/localmeet-server/internal/geo"
	"github.com/localmeet/localmeet-server/internal/models"
	"github.com/localmeet/localmeet-server/internal/password"
	"github.com/localmeet/localmeet-server/internal/repository"
)

// Service-level failures the web layer maps to HTTP statuses. Validation
// and conflict errors from the repository pass through unchanged.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("this account may not create events")
	ErrInvalidDate        = errors.New("invalid date")
)

// Service defines all the business logic operations
type Service interface {
	// Authentication
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	UsernameExists(ctx context.Context, username string) (bool, error)

	// Events
	ListEvents(ctx context.Context, q models.ListEventsQuery) ([]models.Event, error)
	CreateEvent(ctx context.Context, userID int64, req models.CreateEventRequest) (*models.Event, error)
	MostRecentEvent(ctx context.Context, userID int64) (*models.Event, error)

	// Tag catalogs
	CategoryTags(ctx context.Context) ([]models.Tag, error)
	GroupTags(ctx context.Context) ([]models.Tag, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	jwtSecret     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, jwtSecret string) Service {
	return &DefaultService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour,
		now:           time.Now,
	}
}

// Authentication methods
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	userID, err := s.repo.CreateUser(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.User{
		UserID:     userID,
		Username:   req.Username,
		Name:       req.Name,
		Email:      req.Email,
		DateJoined: time.Now().UTC(),
		UserType:   models.UserTypeMember,

		SearchGroupTags:          []string{},
		SearchCategoryTags:       []string{},
		DaysTimesOfInterest:      []string{},
		EventsReviewed:           []string{},
		EventsRegisteredInterest: []string{},
		EventsSignedUpFor:        []string{},
		EventsAttended:           []string{},
		EventFilesCreated:        []string{},
		EventFilesEdited:         []string{},
	}
	if req.Latitude != nil && req.Longitude != nil {
		profile.Location = &geo.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	if err := s.repo.SaveProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("error saving profile: %w", err)
	}

	return &models.AuthResponse{
		Status:   "success",
		UserID:   userID,
		Username: req.Username,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	rec, err := s.repo.GetUserLookupByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	if rec == nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(rec.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:    "success",
		UserID:    rec.UserID,
		Username:  rec.Username,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) UsernameExists(ctx context.Context, username string) (bool, error) {
	return s.repo.UsernameExists(ctx, username)
}

// Event methods
func (s *DefaultService) ListEvents(ctx context.Context, q models.ListEventsQuery) ([]models.Event, error) {
	// Explicit dates parse as UTC, so the default window is anchored to
	// the UTC day too.
	start := s.now().UTC()
	if q.StartDate != "" {
		var err error
		start, err = parseDay(q.StartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}
	end := start.AddDate(0, 0, 60)
	if q.EndDate != "" {
		var err error
		end, err = parseDay(q.EndDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
	}

	query := repository.EventQuery{Start: start, End: end}
	if q.Latitude != nil && q.Longitude != nil && q.Distance != nil {
		query.Center = &geo.Location{Latitude: *q.Latitude, Longitude: *q.Longitude}
		query.RadiusKm = *q.Distance
	}

	events, err := s.repo.QueryEvents(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying events: %w", err)
	}

	// The store filters at shard (month) granularity; apply the exact
	// day-level bounds here, both ends inclusive.
	lower := startOfDay(start)
	upper := startOfDay(end).AddDate(0, 0, 1)
	filtered := []models.Event{}
	for _, event := range events {
		if event.Date.Before(lower) || !event.Date.Before(upper) {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered, nil
}

func (s *DefaultService) CreateEvent(ctx context.Context, userID int64, req models.CreateEventRequest) (*models.Event, error) {
	profile, err := s.profileByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.UserType.CanCreateEvents() {
		return nil, ErrForbidden
	}

	date, err := parseEventDate(req.Date, req.StartTime)
	if err != nil {
		return nil, repository.ErrInvalidEvent
	}

	now := time.Now().UTC()
	event := &models.Event{
		EventID:     uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		Duration:    models.DurationOneHourOrLess,

		LocationAddress:  req.LocationAddress,
		LocationPostcode: req.LocationPostcode,

		MemberOnly:        req.MemberOnly,
		ExternalRegister:  req.ExternalRegister,
		LocalMeetRegister: req.LocalMeetRegister,

		GroupTags:    req.GroupTags,
		CategoryTags: req.CategoryTags,

		ContactPerson:     req.ContactPerson,
		ContactDetails:    req.ContactDetails,
		ContactVisibility: models.ContactVisibilityNobody,

		CostIntroductory: req.CostIntroductory,
		CostRegular:      req.CostRegular,
		Size:             models.EventSizeSmall,

		AddedBy:         userID,
		AddedAt:         now,
		LastEdited:      now,
		RegisteredUsers: []int64{},
		InterestedUsers: []int64{},
	}
	if req.Duration != "" {
		d := models.Duration(req.Duration)
		if !d.Valid() {
			return nil, repository.ErrInvalidEvent
		}
		event.Duration = d
	}
	if req.ContactVisibility != "" {
		v := models.ContactVisibility(req.ContactVisibility)
		if !v.Valid() {
			return nil, repository.ErrInvalidEvent
		}
		event.ContactVisibility = v
	}
	if req.Size != "" {
		sz := models.EventSize(req.Size)
		if !sz.Valid() {
			return nil, repository.ErrInvalidEvent
		}
		event.Size = sz
	}
	if req.GroupTags == nil {
		event.GroupTags = []string{}
	}
	if req.CategoryTags == nil {
		event.CategoryTags = []string{}
	}
	if req.Latitude != nil && req.Longitude != nil {
		event.Location = &geo.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	// Editing an existing event keeps its identity and its attendees.
	// The claimed path must be one of the caller's own events; the path
	// never comes from the client alone.
	if req.OriginalFilePath != "" {
		if !profile.OwnsEventFile(req.OriginalFilePath) {
			return nil, ErrForbidden
		}
		event.OriginalFilePath = req.OriginalFilePath
		if existing, err := s.repo.ReadEventByPath(ctx, req.OriginalFilePath); err == nil {
			event.EventID = existing.EventID
			event.AddedBy = existing.AddedBy
			event.AddedAt = existing.AddedAt
			event.RegisteredUsers = existing.RegisteredUsers
			event.InterestedUsers = existing.InterestedUsers
		}
		profile.AddEditedEventFile(repository.EventRelPath(event.Date, event.Title))
	}

	if err := s.repo.WriteEvent(ctx, event, profile); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *DefaultService) MostRecentEvent(ctx context.Context, userID int64) (*models.Event, error) {
	profile, err := s.profileByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.MostRecentEventByUser(ctx, profile)
}

// Tag catalog methods
func (s *DefaultService) CategoryTags(ctx context.Context) ([]models.Tag, error) {
	return s.repo.CategoryTags(ctx)
}

func (s *DefaultService) GroupTags(ctx context.Context) ([]models.Tag, error) {
	return s.repo.GroupTags(ctx)
}

// Helper methods
func (s *DefaultService) profileByID(ctx context.Context, userID int64) (*models.User, error) {
	rec, err := s.repo.GetUserLookupByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if rec == nil {
		return nil, ErrUserNotFound
	}

	profile, err := s.repo.LoadProfile(ctx, rec.ProfileFile)
	if err != nil {
		return nil, fmt.Errorf("error loading profile: %w", err)
	}
	if profile == nil {
		return nil, ErrUserNotFound
	}
	return profile, nil
}

func (s *DefaultService) generateJWT(userID int64) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": expirationTime.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// parseDay parses a calendar date in 2006-01-02 form.
func parseDay(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseEventDate combines the form's calendar date and optional clock time.
func parseEventDate(day, clock string) (time.Time, error) {
	date, err := parseDay(day)
	if err != nil {
		// The form may also submit a full timestamp.
		date, err = time.Parse(time.RFC3339, day)
		if err != nil {
			return time.Time{}, err
		}
	}
	if clock != "" {
		t, err := time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, err
		}
		date = time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location())
	}
	return date, nil
}
