package calmora

import (
	"context"
	"fmt"
)

// Login exchanges credentials for a session token and stores it.
func (s *Service) Login(ctx context.Context, email, password string) error {
	var resp TokenResponse
	if err := s.api.Post(ctx, pathLogin, Credentials{Email: email, Password: password}, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return ErrLoginFailed
	}
	if err := s.api.SaveSession(ctx, resp.AccessToken); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "logged in", "email", email)
	return nil
}

// Register creates an account. When the backend returns a token the user is
// logged in immediately; the returned bool reports whether that happened.
func (s *Service) Register(ctx context.Context, r Registration) (bool, error) {
	if r.Password != r.ConfirmPassword {
		return false, ErrPasswordMismatch
	}

	var resp TokenResponse
	if err := s.api.Post(ctx, pathRegister, r, &resp); err != nil {
		return false, fmt.Errorf("register: %w", err)
	}
	if resp.AccessToken == "" {
		return false, nil
	}
	if err := s.api.SaveSession(ctx, resp.AccessToken); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "registered", "username", r.Username)
	return true, nil
}

// Logout forgets the stored token. The backend is not contacted.
func (s *Service) Logout(ctx context.Context) error {
	return s.api.ClearSession(ctx)
}
