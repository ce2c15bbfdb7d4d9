package presence

import (
	"testing"
	"time"
)

func TestEvaluateNilLastSeen(t *testing.T) {
	state := Evaluate(nil, time.Now(), DefaultOnlineThreshold)
	if state.Online {
		t.Fatal("nil lastSeen must read offline")
	}
	if state.StatusText != "Offline" {
		t.Fatalf("status = %q, want %q", state.StatusText, "Offline")
	}
	if state.LastSeenAt != nil {
		t.Fatal("LastSeenAt must stay nil")
	}
}

func TestEvaluateThresholdProperty(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	ages := []time.Duration{
		0, time.Second, 10 * time.Second, 29 * time.Second,
		30 * time.Second, 31 * time.Second, time.Minute, time.Hour,
	}
	for _, age := range ages {
		seen := now.Add(-age)
		state := Evaluate(&seen, now, 30*time.Second)
		want := age < 30*time.Second
		if state.Online != want {
			t.Fatalf("age %v: online = %v, want %v", age, state.Online, want)
		}
	}
}

func TestEvaluateStatusText(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{name: "active now", age: 10 * time.Second, want: "Online • Active now"},
		{name: "just now past threshold", age: 45 * time.Second, want: "Last seen just now"},
		{name: "minutes", age: 5 * time.Minute, want: "Last seen 5 minutes ago"},
		{name: "one minute", age: 90 * time.Second, want: "Last seen 1 minute ago"},
		{name: "one hour", age: 3700 * time.Second, want: "Last seen 1 hour ago"},
		{name: "hours", age: 7 * time.Hour, want: "Last seen 7 hours ago"},
		{name: "one day", age: 25 * time.Hour, want: "Last seen 1 day ago"},
		{name: "days", age: 72 * time.Hour, want: "Last seen 3 days ago"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen := now.Add(-tc.age)
			state := Evaluate(&seen, now, 30*time.Second)
			if state.StatusText != tc.want {
				t.Fatalf("age %v: status = %q, want %q", tc.age, state.StatusText, tc.want)
			}
		})
	}
}

func TestEvaluateCustomThreshold(t *testing.T) {
	now := time.Now()
	seen := now.Add(-45 * time.Second)
	if !Evaluate(&seen, now, time.Minute).Online {
		t.Fatal("45s age must be online under a 60s threshold")
	}
	if Evaluate(&seen, now, 30*time.Second).Online {
		t.Fatal("45s age must be offline under a 30s threshold")
	}
}

func TestEvaluateZeroThresholdFallsBack(t *testing.T) {
	now := time.Now()
	seen := now.Add(-10 * time.Second)
	if !Evaluate(&seen, now, 0).Online {
		t.Fatal("zero threshold must fall back to the 30s default")
	}
}
