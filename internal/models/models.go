package models

import (
	"strings"
	"time"

	"github.com/localmeet/localmeet-server/internal/geo"
)

// UserType describes the role of a user account.
type UserType string

const (
	UserTypeMember    UserType = "member"
	UserTypeOrganizer UserType = "organizer"
	UserTypeModerator UserType = "moderator"
	UserTypeAdmin     UserType = "admin"
)

// CanCreateEvents reports whether the role is allowed to create or edit events.
func (t UserType) CanCreateEvents() bool {
	switch t {
	case UserTypeOrganizer, UserTypeModerator, UserTypeAdmin:
		return true
	}
	return false
}

// UserLookup is one row of the identity ledger (users/_user_lookup.csv).
// The password hash is a PHC-format argon2id string with the salt embedded.
type UserLookup struct {
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	ProfileFile  string `json:"profileFilename"`
}

// User is the full profile document stored at users/{lowercase-username}.json.
type User struct {
	UserID     int64         `json:"userId"`
	Username   string        `json:"username"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	DateJoined time.Time     `json:"dateJoined"`
	Location   *geo.Location `json:"location,omitempty"`
	UserType   UserType      `json:"userType"`

	SearchGroupTags     []string `json:"searchGroupTags"`
	SearchCategoryTags  []string `json:"searchCategoryTags"`
	DaysTimesOfInterest []string `json:"daysTimesOfInterest"`

	EventsReviewed           []string `json:"eventsReviewed"`
	EventsRegisteredInterest []string `json:"eventsRegisteredInterest"`
	EventsSignedUpFor        []string `json:"eventsSignedUpFor"`
	EventsAttended           []string `json:"eventsAttended"`

	// EventFilesCreated holds data-dir-relative paths of the event documents
	// this user created, ordered least to most recently touched. No duplicates.
	EventFilesCreated []string `json:"eventFilesCreated"`
	EventFilesEdited  []string `json:"eventFilesEdited"`
}

// ProfileFilename returns the deterministic document name for a username.
func ProfileFilename(username string) string {
	return strings.ToLower(username) + ".json"
}

// AddCreatedEventFile appends path to EventFilesCreated. If the path is
// already present it is moved to the end, so the last entry is always the
// most recently touched event.
func (u *User) AddCreatedEventFile(path string) {
	u.RemoveCreatedEventFile(path)
	u.EventFilesCreated = append(u.EventFilesCreated, path)
}

// RemoveCreatedEventFile removes path from EventFilesCreated if present.
func (u *User) RemoveCreatedEventFile(path string) {
	for i, p := range u.EventFilesCreated {
		if p == path {
			u.EventFilesCreated = append(u.EventFilesCreated[:i], u.EventFilesCreated[i+1:]...)
			return
		}
	}
}

// OwnsEventFile reports whether path is one of the event documents this
// user created.
func (u *User) OwnsEventFile(path string) bool {
	for _, p := range u.EventFilesCreated {
		if p == path {
			return true
		}
	}
	return false
}

// AddEditedEventFile appends path to EventFilesEdited if it is not already there.
func (u *User) AddEditedEventFile(path string) {
	for _, p := range u.EventFilesEdited {
		if p == path {
			return
		}
	}
	u.EventFilesEdited = append(u.EventFilesEdited, path)
}

// Duration buckets an event's expected length.
type Duration string

const (
	DurationOneHourOrLess Duration = "1h_or_less"
	DurationOneToTwo      Duration = "1_to_2"
	DurationTwoToThree    Duration = "2_to_3"
	DurationThreeToFour   Duration = "3_to_4"
	DurationMoreThanFour  Duration = "more_than_4"
)

// Valid reports whether d is one of the known duration buckets.
func (d Duration) Valid() bool {
	switch d {
	case DurationOneHourOrLess, DurationOneToTwo, DurationTwoToThree,
		DurationThreeToFour, DurationMoreThanFour:
		return true
	}
	return false
}

// EventSize buckets the expected attendance.
type EventSize string

const (
	EventSizeTiny   EventSize = "5-10"
	EventSizeSmall  EventSize = "10-20"
	EventSizeMedium EventSize = "20-50"
	EventSizeLarge  EventSize = "50-100"
	EventSizeHuge   EventSize = "100+"
)

// Valid reports whether s is one of the known size buckets.
func (s EventSize) Valid() bool {
	switch s {
	case EventSizeTiny, EventSizeSmall, EventSizeMedium, EventSizeLarge, EventSizeHuge:
		return true
	}
	return false
}

// ContactVisibility controls who may see the organizer's contact details.
type ContactVisibility string

const (
	ContactVisibilityNobody    ContactVisibility = "NOBODY"
	ContactVisibilityLocalMeet ContactVisibility = "LOCAL_MEET_DIRECT"
	ContactVisibilityLoggedIn  ContactVisibility = "LOGGED_IN"
	ContactVisibilityPublic    ContactVisibility = "PUBLIC"
)

// Valid reports whether v is one of the known visibility levels.
func (v ContactVisibility) Valid() bool {
	switch v {
	case ContactVisibilityNobody, ContactVisibilityLocalMeet,
		ContactVisibilityLoggedIn, ContactVisibilityPublic:
		return true
	}
	return false
}

// Event is the document stored at events/{year}/{month}/{day}_{slug}.json.
type Event struct {
	EventID     string    `json:"eventId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Duration    Duration  `json:"duration"`

	LocationAddress  string        `json:"locationAddress"`
	LocationPostcode string        `json:"locationPostcode"`
	Location         *geo.Location `json:"location,omitempty"`

	MemberOnly        bool   `json:"memberOnly"`
	ExternalRegister  string `json:"externalRegister"`
	LocalMeetRegister bool   `json:"localMeetRegister"`

	GroupTags    []string `json:"groupTags"`
	CategoryTags []string `json:"categoryTags"`

	ContactPerson     string            `json:"contactPerson"`
	ContactDetails    string            `json:"contactDetails"`
	ContactVisibility ContactVisibility `json:"contactVisibility"`

	CostIntroductory float64   `json:"costIntroductory"`
	CostRegular      float64   `json:"costRegular"`
	Size             EventSize `json:"size"`

	AddedBy         int64     `json:"addedBy"`
	AddedAt         time.Time `json:"addedAt"`
	LastEdited      time.Time `json:"lastEdited"`
	RegisteredUsers []int64   `json:"registeredUsers"`
	InterestedUsers []int64   `json:"interestedUsers"`
	IsCancelled     bool      `json:"isCancelled"`
	IsDeleted       bool      `json:"isDeleted"`

	// OriginalFilePath is the data-dir-relative path this event is currently
	// stored under. A write whose computed path differs from it is a rename.
	OriginalFilePath string `json:"originalFilePath,omitempty"`
}

// ExampleEvent returns the placeholder event used to pre-populate the
// creation form for users who have not created anything yet.
func ExampleEvent() *Event {
	date := time.Now().AddDate(0, 0, 21)
	date = time.Date(date.Year(), date.Month(), date.Day(), 19, 0, 0, 0, date.Location())

	now := time.Now()
	return &Event{
		EventID:           "evt_example",
		Title:             "Example Event",
		Description:       "This is an example event.",
		Date:              date,
		Duration:          DurationOneHourOrLess,
		LocationAddress:   "123 Example St",
		LocationPostcode:  "SG12 0DE",
		Location:          &geo.Location{Latitude: 51.811892, Longitude: -0.03717},
		LocalMeetRegister: true,
		GroupTags:         []string{"exampleGroup"},
		CategoryTags:      []string{"exampleCategory"},
		ContactPerson:     "Jane Doe",
		ContactDetails:    "jane@example.com",
		ContactVisibility: ContactVisibilityLoggedIn,
		Size:              EventSizeSmall,
		AddedAt:           now,
		LastEdited:        now,
		RegisteredUsers:   []int64{},
		InterestedUsers:   []int64{},
	}
}

// Tag is one row of a tag catalog CSV file.
type Tag struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
