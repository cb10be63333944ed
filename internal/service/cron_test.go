package service

import (
	"testing"
	"time"
)

func TestDailySpec(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"08:30", "0 30 8 * * *", true},
		{"23:59", "0 59 23 * * *", true},
		{"0:00", "0 0 0 * * *", true},
		{"24:00", "", false},
		{"12:60", "", false},
		{"noon", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, err := dailySpec(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Errorf("dailySpec(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Errorf("dailySpec(%q): expected error", tc.in)
		}
	}
}

func TestScheduleIntervalRejectsSubSecond(t *testing.T) {
	svc := NewCronService(time.UTC)
	if _, err := svc.ScheduleInterval(time.Millisecond, func() {}); err == nil {
		t.Error("expected sub-second interval to be rejected")
	}
	if _, err := svc.ScheduleInterval(time.Minute, func() {}); err != nil {
		t.Errorf("ScheduleInterval: %v", err)
	}
}
