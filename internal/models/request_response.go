package models

// Request models
type SignUpRequest struct {
	Username  string   `json:"username" binding:"required"`
	Password  string   `json:"password" binding:"required"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateEventRequest carries the event form. Date is a calendar date
// (2006-01-02) and StartTime an optional clock time (15:04) merged into the
// event timestamp, the way the original form submits them separately.
type CreateEventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"startTime"`
	Duration    string `json:"duration"`

	LocationAddress  string   `json:"locationAddress"`
	LocationPostcode string   `json:"locationPostcode"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`

	MemberOnly        bool   `json:"memberOnly"`
	ExternalRegister  string `json:"externalRegister"`
	LocalMeetRegister bool   `json:"localMeetRegister"`

	GroupTags    []string `json:"groupTags"`
	CategoryTags []string `json:"categoryTags"`

	ContactPerson     string `json:"contactPerson"`
	ContactDetails    string `json:"contactDetails"`
	ContactVisibility string `json:"contactVisibility"`

	CostIntroductory float64 `json:"costIntroductory"`
	CostRegular      float64 `json:"costRegular"`
	Size             string  `json:"size"`

	// OriginalFilePath identifies the event being edited; empty for a new one.
	OriginalFilePath string `json:"originalFilePath"`
}

// ListEventsQuery is the parsed form of the event listing filters.
type ListEventsQuery struct {
	StartDate string   `form:"startDate"`
	EndDate   string   `form:"endDate"`
	Latitude  *float64 `form:"lat"`
	Longitude *float64 `form:"lng"`
	Distance  *float64 `form:"distance"`
}

// Response models
type AuthResponse struct {
	Status    string `json:"status"`
	UserID    int64  `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expiresIn,omitempty"`
}

type UsernameExistsResponse struct {
	Exists bool `json:"exists"`
}

type EventResponse struct {
	Status string `json:"status"`
	Event  *Event `json:"event,omitempty"`
}

type EventListResponse struct {
	Status string  `json:"status"`
	Events []Event `json:"events"`
}

type TagListResponse struct {
	Status string `json:"status"`
	Tags   []Tag  `json:"tags"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
