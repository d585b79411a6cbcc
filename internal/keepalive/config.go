package keepalive

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/angeloszaimis/movieflix-keepalive/internal/endpoint"
)

type ExhaustionAction string

const (
	ExhaustionStop ExhaustionAction = "stop"
	ExhaustionSkip ExhaustionAction = "skip"
)

// Config is fixed for the lifetime of a Service.
type Config struct {
	Endpoints      []endpoint.Endpoint
	PingInterval   time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	OnExhaustion   ExhaustionAction
	UserAgent      string
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Endpoints, validation.Required),
		validation.Field(&c.PingInterval, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.MaxRetries, validation.Min(0)),
		validation.Field(&c.RetryDelay, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RequestTimeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.OnExhaustion, validation.In(ExhaustionStop, ExhaustionSkip)),
	)
}
