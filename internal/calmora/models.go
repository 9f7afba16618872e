package calmora

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Credentials are the login form values.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up form. ConfirmPassword never leaves the client.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"`
}

// TokenResponse is returned by login and register.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	Message     string `json:"message,omitempty"`
}

type Profile struct {
	ID           int    `json:"id,omitempty" yaml:"id,omitempty"`
	FullName     string `json:"full_name" yaml:"full_name"`
	Email        string `json:"email" yaml:"email"`
	Username     string `json:"username" yaml:"username"`
	Gender       string `json:"gender" yaml:"gender"`
	BirthDate    string `json:"birth_date" yaml:"birth_date"`
	ProfileImage string `json:"profile_image" yaml:"profile_image"`
	CreatedAt    string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// DefaultGender is sent when a profile update leaves gender empty.
const DefaultGender = "Male"

// Genders offered by the profile form.
var Genders = []string{"Male", "Female", "Other"}

// ProfileUpdate is the edit-profile form. Empty BirthDate is not sent.
type ProfileUpdate struct {
	FullName  string
	Email     string
	Username  string
	Gender    string
	BirthDate string
	Photo     *Photo
}

// Photo is an image attached to a profile update.
type Photo struct {
	Filename    string
	ContentType string
	Content     io.Reader
}

// OpenPhoto opens the image at path. The caller closes the returned file.
// The content type comes from the extension, falling back to sniffing.
func OpenPhoto(path string) (*Photo, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open photo: %w", err)
	}

	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		ct = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to rewind photo: %w", err)
		}
	}

	return &Photo{Filename: filepath.Base(path), ContentType: ct, Content: f}, f, nil
}

// ProfileUpdateResult is the backend reply to a profile update.
type ProfileUpdateResult struct {
	Message      string `json:"message" yaml:"message"`
	ProfileImage string `json:"profile_image,omitempty" yaml:"profile_image,omitempty"`
	AccessToken  string `json:"access_token,omitempty" yaml:"-"`
	Gender       string `json:"gender,omitempty" yaml:"gender,omitempty"`
}

// TokenRotated reports whether the backend issued a new token.
func (r *ProfileUpdateResult) TokenRotated() bool {
	return r.AccessToken != ""
}

type MessageResponse struct {
	Message string `json:"message" yaml:"message"`
}

// TrackerInput is one day of self-reported metrics.
type TrackerInput struct {
	SleepHours        float64 `json:"sleep_hours" yaml:"sleep_hours"`
	SleepQuality      string  `json:"sleep_quality" yaml:"sleep_quality"`
	ScreenTime        float64 `json:"screen_time" yaml:"screen_time"`
	PhysicalActivity  int     `json:"physical_activity" yaml:"physical_activity"`
	SocialInteraction float64 `json:"social_interaction" yaml:"social_interaction"`
	WorkProductivity  int     `json:"work_productivity" yaml:"work_productivity"`
	Weather           string  `json:"weather" yaml:"weather"`
	DietQuality       string  `json:"diet_quality" yaml:"diet_quality"`
}

// Allowed categorical values.
var (
	SleepQualities = []string{"Poor", "Fair", "Good", "Excellent"}
	Weathers       = []string{"Cloudy", "Rainy", "Sunny"}
	DietQualities  = []string{"Average", "Good", "Poor"}
)

// DefaultTrackerInput returns the tracker form's initial values.
func DefaultTrackerInput() TrackerInput {
	return TrackerInput{
		SleepHours:        7.5,
		SleepQuality:      "Good",
		ScreenTime:        5,
		PhysicalActivity:  30,
		SocialInteraction: 3,
		WorkProductivity:  7,
		Weather:           "Sunny",
		DietQuality:       "Good",
	}
}

// Validate checks ranges and options. Errors wrap ErrInvalidInput.
func (in TrackerInput) Validate() error {
	checks := []struct {
		field    string
		value    float64
		min, max float64
	}{
		{"sleep_hours", in.SleepHours, 3, 12},
		{"screen_time", in.ScreenTime, 1, 12},
		{"physical_activity", float64(in.PhysicalActivity), 0, 120},
		{"social_interaction", in.SocialInteraction, 0, 10},
		{"work_productivity", float64(in.WorkProductivity), 1, 10},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s must be between %g and %g, got %g", ErrInvalidInput, c.field, c.min, c.max, c.value)
		}
	}

	options := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"sleep_quality", in.SleepQuality, SleepQualities},
		{"weather", in.Weather, Weathers},
		{"diet_quality", in.DietQuality, DietQualities},
	}
	for _, o := range options {
		if !slices.Contains(o.allowed, o.value) {
			return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidInput, o.field, strings.Join(o.allowed, ", "), o.value)
		}
	}
	return nil
}

// Prediction is the result of a tracker submission. When the day already has
// an entry the backend answers with only Detail set.
type Prediction struct {
	MoodScore        *float64 `json:"mood_score,omitempty" yaml:"mood_score,omitempty"`
	StressLevel      *float64 `json:"stress_level,omitempty" yaml:"stress_level,omitempty"`
	AIRecommendation string   `json:"ai_recommendation,omitempty" yaml:"ai_recommendation,omitempty"`
	Date             string   `json:"date,omitempty" yaml:"date,omitempty"`
	Detail           string   `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Rejected reports whether the backend declined to make a prediction.
func (p *Prediction) Rejected() bool {
	return p.Detail != ""
}

// HistoryEntry is a stored tracker entry with its prediction.
type HistoryEntry struct {
	ID               int     `json:"id,omitempty" yaml:"id,omitempty"`
	Date             string  `json:"date" yaml:"date"`
	MoodScore        float64 `json:"mood_score" yaml:"mood_score"`
	StressLevel      float64 `json:"stress_level" yaml:"stress_level"`
	AIRecommendation string  `json:"ai_recommendation,omitempty" yaml:"ai_recommendation,omitempty"`
	TrackerInput     `yaml:",inline"`
}
