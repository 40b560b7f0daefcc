package api

import (
	"time"

	"github.com/fogfish/opts"
	"github.com/google/uuid"

	"github.com/finquery/finquery/pkg/stdx"
	"github.com/finquery/finquery/pkg/uuidx"
)

// Credentials is the opaque key/value secret material for one provider.
// The core never interprets the keys; their names come from configuration
// and their values from the environment of the caller.
type Credentials map[string]string

// CommandContext carries the per-call state threaded through the router
// and the executor: credentials by provider, the call deadline, and the
// strictness switches. A fresh context can be built per call; the core
// never mutates one after construction.
type CommandContext struct {
	// RunID identifies this call in logs and in the envelope's extra map.
	RunID uuid.UUID

	// Credentials maps provider name to its secret material.
	Credentials map[string]Credentials

	// Timeout bounds the whole call. Zero means the executor default.
	Timeout time.Duration

	// StrictEmptyData turns an EmptyDataError into a returned error
	// instead of a warning with empty results.
	StrictEmptyData bool

	// Prevents unkeyed literals
	_ struct{}
}

// Option configures a CommandContext under construction.
type Option = opts.Option[CommandContext]

var (
	// WithRunID overrides the generated run identifier.
	WithRunID = opts.ForName[CommandContext, uuid.UUID]("RunID")

	// WithTimeout bounds the whole call, overriding the executor default.
	WithTimeout = opts.ForName[CommandContext, time.Duration]("Timeout")

	// WithStrictEmptyData makes empty provider responses an error.
	WithStrictEmptyData = opts.ForName[CommandContext, bool]("StrictEmptyData")
)

// WithCredentials attaches secret material for one provider.
func WithCredentials(provider string, creds Credentials) Option {
	return opts.Type[CommandContext](func(c *CommandContext) error {
		if c.Credentials == nil {
			c.Credentials = make(map[string]Credentials)
		}
		c.Credentials[provider] = creds
		return nil
	})
}

// NewCommandContext builds a per-call context. It panics only on
// programmer error inside an option, never on user input.
func NewCommandContext(options ...Option) (*CommandContext, error) {
	cc := CommandContext{RunID: uuidx.New()}
	if err := opts.Apply(&cc, options); err != nil {
		return nil, err
	}
	return &cc, nil
}

// MustCommandContext is NewCommandContext that panics on option errors.
func MustCommandContext(options ...Option) *CommandContext {
	return stdx.Must1(NewCommandContext(options...))
}

// CredentialsFor returns the secret material registered for provider and
// whether any non-empty material is present.
func (c *CommandContext) CredentialsFor(provider string) (Credentials, bool) {
	if c == nil || c.Credentials == nil {
		return nil, false
	}
	creds, ok := c.Credentials[provider]
	return creds, ok && len(creds) > 0
}
