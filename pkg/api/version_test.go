package api

import "testing"

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		major   int64
		minor   int64
		patch   int64
		pre     string
		build   string
	}{
		{name: "plain", value: "1.2.3", major: 1, minor: 2, patch: 3},
		{name: "prerelease", value: "0.9.0-beta.2", major: 0, minor: 9, patch: 0, pre: "beta.2"},
		{name: "build metadata", value: "3.1.4+sha.abc", major: 3, minor: 1, patch: 4, build: "sha.abc"},
		{name: "two parts", value: "1.2", wantErr: true},
		{name: "leading v", value: "v1.2.3", wantErr: true},
		{name: "garbage", value: "latest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVersion(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseVersion(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if got.Major != tt.major || got.Minor != tt.minor || got.Patch != tt.patch {
				t.Errorf("ParseVersion(%q) = %d.%d.%d, want %d.%d.%d",
					tt.value, got.Major, got.Minor, got.Patch, tt.major, tt.minor, tt.patch)
			}
			if (got.Prerelease == nil) != (tt.pre == "") || (got.Prerelease != nil && *got.Prerelease != tt.pre) {
				t.Errorf("Prerelease = %v, want %q", got.Prerelease, tt.pre)
			}
			if (got.Build == nil) != (tt.build == "") || (got.Build != nil && *got.Build != tt.build) {
				t.Errorf("Build = %v, want %q", got.Build, tt.build)
			}
		})
	}
}
