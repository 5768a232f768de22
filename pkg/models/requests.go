package models

// CreateEmergencyRequest is the body of POST /emergencies.
// User is accepted as an alias of Reporter for older clients.
type CreateEmergencyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Reporter    string `json:"reporter"`
	User        string `json:"user"`
}

// ReporterID returns the reporter, falling back to the legacy user field
func (r CreateEmergencyRequest) ReporterID() string {
	if r.Reporter != "" {
		return r.Reporter
	}
	return r.User
}

// VolunteerRequest is the body of the accept and decline endpoints
type VolunteerRequest struct {
	VolunteerName string `json:"volunteerName"`
}

// LegacyVolunteerRequest is the body of /api/accept and /api/decline
type LegacyVolunteerRequest struct {
	EmergencyID string `json:"emergencyId"`
	Volunteer   string `json:"volunteer"`
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Role        string `json:"role"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Country     string `json:"country"`
	City        string `json:"city"`
	PinCode     string `json:"pinCode"`
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ProfileUpdate carries the editable profile fields; nil means unchanged
type ProfileUpdate struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Address     *string `json:"address,omitempty"`
	Country     *string `json:"country,omitempty"`
	City        *string `json:"city,omitempty"`
	PinCode     *string `json:"pinCode,omitempty"`
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	Message string `json:"message"`
}
