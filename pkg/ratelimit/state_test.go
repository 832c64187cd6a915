package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestState_IsBlocked(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{
			name:  "never blocked",
			state: State{},
			want:  false,
		},
		{
			name:  "blocked in future",
			state: State{BlockedUntil: now.Add(30 * time.Second)},
			want:  true,
		},
		{
			name:  "block expired",
			state: State{BlockedUntil: now.Add(-1 * time.Second)},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsBlocked(now); got != tt.want {
				t.Errorf("IsBlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_TimeUntilUnblock(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	if got := (State{BlockedUntil: now.Add(10 * time.Second)}).TimeUntilUnblock(now); got != 10*time.Second {
		t.Errorf("TimeUntilUnblock() = %v, want 10s", got)
	}
	if got := (State{BlockedUntil: now.Add(-10 * time.Second)}).TimeUntilUnblock(now); got != 0 {
		t.Errorf("TimeUntilUnblock() = %v, want 0", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		value  string
		want   time.Duration
		wantOK bool
	}{
		{name: "missing", value: "", want: 0, wantOK: false},
		{name: "seconds", value: "120", want: 2 * time.Minute, wantOK: true},
		{name: "zero seconds", value: "0", want: 0, wantOK: true},
		{name: "negative seconds", value: "-5", want: 0, wantOK: false},
		{name: "http date", value: now.Add(90 * time.Second).Format(http.TimeFormat), want: 90 * time.Second, wantOK: true},
		{name: "http date in past", value: now.Add(-time.Hour).Format(http.TimeFormat), want: 0, wantOK: true},
		{name: "garbage", value: "soon", want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := http.Header{}
			if tt.value != "" {
				headers.Set("Retry-After", tt.value)
			}

			got, ok := ParseRetryAfter(headers, now)
			if ok != tt.wantOK {
				t.Errorf("ParseRetryAfter() ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseRetryAfter() = %v, want %v", got, tt.want)
			}
		})
	}
}
