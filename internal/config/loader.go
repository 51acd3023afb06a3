package config

import (
	"errors"
	"fmt"
	"os"

	"gauntlet/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	profileFileName = ".gauntlet.yaml"

	// profileEnvVar overrides the profile location.
	profileEnvVar = "GAUNTLET_PROFILE"
)

// DefaultProfilePath returns the profile location: the GAUNTLET_PROFILE
// environment variable when set, otherwise .gauntlet.yaml in the working
// directory.
func DefaultProfilePath() string {
	if p := os.Getenv(profileEnvVar); p != "" {
		return p
	}
	return profileFileName
}

// LoadProfile loads the profile from the given path. A missing file is not an
// error: the defaults apply. A malformed or invalid file is a configuration
// error.
func LoadProfile(path string) (Profile, error) {
	profile := GetDefaultProfile()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No profile found at %s, using defaults", path)
			return profile, nil
		}
		logging.Info("ConfigLoader", "Error loading profile from %s: %s", path, err)
		return Profile{}, err
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		// profile malformed
		return Profile{}, fmt.Errorf("error loading profile from %s: %w", path, err)
	}
	if profile.SlowTimeout == "" {
		profile.SlowTimeout = DefaultSlowTimeout
	}
	if profile.JUnit.ReportName == "" {
		profile.JUnit.ReportName = DefaultJUnitReportName
	}
	if err := profile.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Loaded profile from %s", path)
	return profile, nil
}
