package stress

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const DefaultBaseURL = "https://movieflix-moengage.onrender.com"

type Credentials struct {
	Username string
	Password string
}

type Config struct {
	BaseURL         string
	Admin           Credentials
	User            Credentials
	ConcurrentUsers int
	RequestsPerUser int
	RapidRequests   int
	SearchQueries   []string
	MovieIDs        []string
	BrowsePause     time.Duration
	QueryPause      time.Duration
	RequestTimeout  time.Duration
	// RequestsPerSecond caps the request rate across all users. Zero
	// disables the cap.
	RequestsPerSecond float64
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		Admin:           Credentials{Username: "admin", Password: "admin123"},
		User:            Credentials{Username: "user", Password: "user123"},
		ConcurrentUsers: 10,
		RequestsPerUser: 5,
		RapidRequests:   20,
		SearchQueries:   []string{"Matrix", "Batman", "Avengers", "Star Wars", "Inception", "Interstellar"},
		MovieIDs:        []string{"tt0133093", "tt0468569", "tt1375666", "tt0816692", "tt0167260"},
		BrowsePause:     500 * time.Millisecond,
		QueryPause:      300 * time.Millisecond,
		RequestTimeout:  30 * time.Second,
	}
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Admin, validation.By(validateCredentials)),
		validation.Field(&c.User, validation.By(validateCredentials)),
		validation.Field(&c.ConcurrentUsers, validation.Required, validation.Min(1)),
		validation.Field(&c.RequestsPerUser, validation.Min(0)),
		validation.Field(&c.RapidRequests, validation.Min(0)),
		validation.Field(&c.SearchQueries, validation.Required),
		validation.Field(&c.MovieIDs, validation.Required),
		validation.Field(&c.BrowsePause, validation.Min(time.Duration(0))),
		validation.Field(&c.QueryPause, validation.Min(time.Duration(0))),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
	)
}

func validateCredentials(value interface{}) error {
	creds, ok := value.(Credentials)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be Credentials")
	}

	return validation.ValidateStruct(&creds,
		validation.Field(&creds.Username, validation.Required),
		validation.Field(&creds.Password, validation.Required),
	)
}
