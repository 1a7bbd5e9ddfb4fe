package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// Credentials holds one advisor profile from the credentials file.
type Credentials struct {
	APIKey string
	Model  string
}

// Registry reads advisor profiles from an ini credentials file. Sections are
// profile names; recognized keys are api_key and model.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetCredentials(ctx context.Context, profile string) (*Credentials, error)
}

type credRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &credRegistry{cfg: cfg}, nil
}

func (cr *credRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *credRegistry) GetCredentials(_ context.Context, profile string) (*Credentials, error) {
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	return &Credentials{
		APIKey: section.Key("api_key").String(),
		Model:  section.Key("model").String(),
	}, nil
}

// DefaultCredentialsPath points at ~/.ledger-atlas/credentials.
func DefaultCredentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ledger-atlas", "credentials"), nil
}

// AdvisorCredentials resolves the advisor key and model for these settings.
// A key set directly (or via GEMINI_API_KEY, applied in Load) wins; otherwise
// the configured profile is looked up in the credentials file. No key anywhere
// is not an error, callers fall back to the rule advisor.
func (s *Settings) AdvisorCredentials(ctx context.Context) (Credentials, error) {
	if s.Advisor.APIKey != "" {
		return Credentials{APIKey: s.Advisor.APIKey, Model: s.Advisor.Model}, nil
	}
	if s.Advisor.Profile == "" {
		return Credentials{Model: s.Advisor.Model}, nil
	}

	path, err := DefaultCredentialsPath()
	if err != nil {
		return Credentials{}, err
	}
	registry, err := NewRegistry(path)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to load credentials file: %w", err)
	}
	creds, err := registry.GetCredentials(ctx, s.Advisor.Profile)
	if err != nil {
		return Credentials{}, err
	}
	if creds.Model == "" {
		creds.Model = s.Advisor.Model
	}
	return *creds, nil
}
