// Package calmora implements the Calmora backend operations on top of the
// API access layer. It is the only place that writes or clears the session
// token: login, registration, a profile update that renames the user, logout
// and account deletion.
package calmora

import (
	"errors"

	"github.com/calmora/calmora-cli/internal/api"
	"github.com/calmora/calmora-cli/internal/logging"
)

var (
	ErrLoginFailed      = errors.New("login failed: no access token in response")
	ErrPasswordMismatch = errors.New("password and confirmation do not match")
	ErrInvalidInput     = errors.New("invalid input")
)

// Backend routes.
const (
	pathLogin    = "/auth/login"
	pathRegister = "/auth/register"
	pathProfile  = "/account/profile"
	pathHistory  = "/tracker/history"
	pathPredict  = "/tracker/predict"
	pathExport   = "/tracker/export"
)

type Service struct {
	api    *api.Client
	logger *logging.Logger
}

// New creates a Service. A nil logger discards output.
func New(client *api.Client, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{api: client, logger: logger}
}

// Client returns the underlying API client.
func (s *Service) Client() *api.Client {
	return s.api
}
