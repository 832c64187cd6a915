package api

import (
	"fmt"

	"github.com/coreos/go-semver/semver"
)

// versionUnavailable is reported when no valid version is configured.
const versionUnavailable = "Something went wrong while retrieving and parsing the current API version. Please try again later"

// VersionInfo is the parsed API version as reported by /v1/version.
// Fields are declared in JSON key order so the body has sorted keys.
type VersionInfo struct {
	Build      *string `json:"build"`
	Major      int64   `json:"major"`
	Minor      int64   `json:"minor"`
	Patch      int64   `json:"patch"`
	Prerelease *string `json:"prerelease"`
}

// ParseVersion parses a semantic version such as "1.2.3-rc.1+build.5".
func ParseVersion(value string) (VersionInfo, error) {
	v, err := semver.NewVersion(value)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("parse version: %w", err)
	}

	info := VersionInfo{
		Major: v.Major,
		Minor: v.Minor,
		Patch: v.Patch,
	}
	if v.PreRelease != "" {
		pre := string(v.PreRelease)
		info.Prerelease = &pre
	}
	if v.Metadata != "" {
		build := v.Metadata
		info.Build = &build
	}
	return info, nil
}
