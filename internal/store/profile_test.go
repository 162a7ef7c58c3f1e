package store

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/mirrorday/mirrorday/internal/models"
)

func TestProfileStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.json")
	p := NewProfileStore(path, zap.NewNop())

	if !p.Profile().Incomplete() {
		t.Error("fresh profile should be incomplete")
	}
	if p.HasCompletedOnboarding() {
		t.Error("fresh store should not report onboarding complete")
	}

	p.Update(models.UserProfile{FirstName: "Ada", Surname: "Lovelace", Country: "UK"})
	p.CompleteOnboarding()

	// Reload from disk
	reloaded := NewProfileStore(path, zap.NewNop())
	if got := reloaded.Profile().FullName(); got != "Ada Lovelace" {
		t.Errorf("reloaded FullName() = %q", got)
	}
	if !reloaded.HasCompletedOnboarding() {
		t.Error("onboarding flag lost across reload")
	}
}

func TestProfileStore_ResetOnboarding(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "profile.json")
	p := NewProfileStore(path, zap.NewNop())
	p.Update(models.UserProfile{FirstName: "Ada"})
	p.CompleteOnboarding()

	p.ResetOnboarding()

	if p.HasCompletedOnboarding() {
		t.Error("reset should clear the onboarding flag")
	}
	if !p.Profile().Incomplete() {
		t.Error("reset should clear the profile")
	}
}
