package calmora

import (
	"context"
	"fmt"
	"strings"

	"github.com/calmora/calmora-cli/internal/api"
)

func (s *Service) Profile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := s.api.Get(ctx, pathProfile, nil, &p); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile replaces the profile fields. It is always sent as multipart,
// with or without a photo. A rotated token from the backend replaces the
// stored one.
func (s *Service) UpdateProfile(ctx context.Context, u ProfileUpdate) (*ProfileUpdateResult, error) {
	body, err := u.form()
	if err != nil {
		return nil, err
	}

	var resp ProfileUpdateResult
	if err := s.api.Put(ctx, pathProfile, body, &resp); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if resp.TokenRotated() {
		if err := s.api.SaveSession(ctx, resp.AccessToken); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "session token rotated after profile update")
	}
	return &resp, nil
}

func (u ProfileUpdate) form() (api.Multipart, error) {
	gender := u.Gender
	if gender == "" {
		gender = DefaultGender
	}

	var body api.Multipart
	body.Add("full_name", u.FullName)
	body.Add("email", u.Email)
	body.Add("username", u.Username)
	body.Add("gender", gender)
	if u.BirthDate != "" {
		body.Add("birth_date", u.BirthDate)
	}

	if u.Photo != nil {
		if !strings.HasPrefix(strings.ToLower(u.Photo.ContentType), "image/") {
			return api.Multipart{}, fmt.Errorf("%w: photo must be an image, got %q", ErrInvalidInput, u.Photo.ContentType)
		}
		body.AddFile("file", u.Photo.Filename, u.Photo.ContentType, u.Photo.Content)
	}
	return body, nil
}

// DeleteAccount removes the account and then the local session.
func (s *Service) DeleteAccount(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := s.api.Delete(ctx, pathProfile, &resp); err != nil {
		return nil, fmt.Errorf("delete account: %w", err)
	}
	if err := s.api.ClearSession(ctx); err != nil {
		return nil, err
	}
	return &resp, nil
}
