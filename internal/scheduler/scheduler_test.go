package scheduler

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, time.March, 1, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{"expires today", date(2026, time.March, 1), 0},
		{"expires tomorrow", date(2026, time.March, 2), 1},
		{"expires in a week", date(2026, time.March, 8), 7},
		{"expired yesterday", date(2026, time.February, 28), -1},
		{"expired ten days ago", date(2026, time.February, 19), -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DaysUntil(tt.expiresAt, now)
			if got != tt.want {
				t.Errorf("DaysUntil() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDaysUntilIgnoresTimeOfDay(t *testing.T) {
	// Late evening now vs early morning expiry must still count whole days
	now := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	expiresAt := time.Date(2026, time.March, 2, 0, 1, 0, 0, time.UTC)

	if got := DaysUntil(expiresAt, now); got != 1 {
		t.Errorf("DaysUntil() = %d, want 1", got)
	}
}

func TestDueStage(t *testing.T) {
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{"far in the future", date(2026, time.May, 1), StageNone},
		{"31 days out", date(2026, time.April, 1), StageNone},
		{"exactly 30 days", date(2026, time.March, 31), Stage30Days},
		{"20 days out", date(2026, time.March, 21), Stage30Days},
		{"exactly 15 days", date(2026, time.March, 16), Stage15Days},
		{"10 days out", date(2026, time.March, 11), Stage15Days},
		{"exactly 7 days", date(2026, time.March, 8), Stage7Days},
		{"tomorrow", date(2026, time.March, 2), Stage7Days},
		{"today", date(2026, time.March, 1), StageExpired},
		{"already expired", date(2026, time.February, 20), StageExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueStage(tt.expiresAt, now)
			if got != tt.want {
				t.Errorf("DueStage() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDueStageOrdering(t *testing.T) {
	// Stages must be strictly increasing so a conditional "stage < due"
	// update never re-sends an earlier reminder after a later one
	if !(StageNone < Stage30Days && Stage30Days < Stage15Days &&
		Stage15Days < Stage7Days && Stage7Days < StageExpired) {
		t.Error("reminder stages are not strictly ordered")
	}
}

func TestNextDailyRun(t *testing.T) {
	s := &Scheduler{}

	tests := []struct {
		name string
		from time.Time
		hour int
		min  int
		want time.Time
	}{
		{
			"later today",
			time.Date(2026, time.March, 1, 5, 0, 0, 0, time.UTC),
			7, 0,
			time.Date(2026, time.March, 1, 7, 0, 0, 0, time.UTC),
		},
		{
			"already passed, tomorrow",
			time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
			7, 0,
			time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC),
		},
		{
			"exact moment rolls to tomorrow",
			time.Date(2026, time.March, 1, 7, 0, 0, 0, time.UTC),
			7, 0,
			time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.nextDailyRun(tt.from, tt.hour, tt.min)
			if !got.Equal(tt.want) {
				t.Errorf("nextDailyRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStartCronTaskRejectsInvalidExpressions(t *testing.T) {
	s := &Scheduler{stopChan: make(chan bool)}

	tests := []string{
		"",
		"0 7 * *",
		"61 7 * * *",
		"0 25 * * *",
		"0 7 * * 8",
		"*/0 * * * *",
	}

	for _, expr := range tests {
		if err := s.startCronTask(expr, "test_task", func() {}); err == nil {
			t.Errorf("startCronTask(%q) accepted an invalid expression", expr)
		}
	}
}
