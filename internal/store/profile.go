package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/models"
)

// ProfileStore persists the singleton user profile and the independent
// has-completed-onboarding flag. Updates replace the profile wholesale.
type ProfileStore struct {
	mu        sync.Mutex
	path      string
	profile   models.UserProfile
	onboarded bool
	logger    *zap.Logger
}

type profileFile struct {
	Profile                models.UserProfile `json:"profile"`
	HasCompletedOnboarding bool               `json:"hasCompletedOnboarding"`
}

// NewProfileStore loads the profile file; missing or unparseable files yield
// an empty profile.
func NewProfileStore(path string, logger *zap.Logger) *ProfileStore {
	p := &ProfileStore{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error("failed_to_load_profile", zap.String("path", path), zap.Error(err))
		}
		return p
	}
	var f profileFile
	if err := json.Unmarshal(data, &f); err != nil {
		logger.Error("failed_to_parse_profile", zap.String("path", path), zap.Error(err))
		return p
	}
	p.profile = f.Profile
	p.onboarded = f.HasCompletedOnboarding
	return p
}

// Profile returns the current profile
func (p *ProfileStore) Profile() models.UserProfile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// Update replaces the profile wholesale and persists
func (p *ProfileStore) Update(profile models.UserProfile) {
	p.mu.Lock()
	p.profile = profile
	p.persistLocked()
	p.mu.Unlock()
}

// HasCompletedOnboarding reports the onboarding flag
func (p *ProfileStore) HasCompletedOnboarding() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onboarded
}

// CompleteOnboarding marks onboarding done
func (p *ProfileStore) CompleteOnboarding() {
	p.mu.Lock()
	p.onboarded = true
	p.persistLocked()
	p.mu.Unlock()
}

// ResetOnboarding clears the flag and the profile
func (p *ProfileStore) ResetOnboarding() {
	p.mu.Lock()
	p.onboarded = false
	p.profile = models.UserProfile{}
	p.persistLocked()
	p.mu.Unlock()
}

func (p *ProfileStore) persistLocked() {
	data, err := json.MarshalIndent(profileFile{
		Profile:                p.profile,
		HasCompletedOnboarding: p.onboarded,
	}, "", "  ")
	if err != nil {
		p.logger.Error("failed_to_encode_profile", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		p.logger.Error("failed_to_create_profile_dir", zap.Error(err))
		return
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		p.logger.Error("failed_to_write_profile", zap.Error(err))
		return
	}
	if err := os.Rename(tmp, p.path); err != nil {
		p.logger.Error("failed_to_replace_profile", zap.Error(err))
	}
}
