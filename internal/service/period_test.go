package service

import (
	"testing"
	"time"
)

func TestPeriodKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 本地时间 3 月 1 日 02:00，UTC 仍在 2 月
	local := time.Date(2026, 3, 1, 2, 0, 0, 0, loc)
	if key := periodKey(local); key != "2026-02" {
		t.Fatalf("expected 2026-02, got %s", key)
	}
	if key := periodKey(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)); key != "2026-03" {
		t.Fatalf("expected 2026-03, got %s", key)
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end := periodBounds(time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC))
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start: %v", start)
	}
	if !end.Equal(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected end: %v", end)
	}

	// 12 月滚动到次年 1 月
	start, end = periodBounds(time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC))
	if !start.Equal(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected year rollover: %v - %v", start, end)
	}
}

func TestParsePeriodKey(t *testing.T) {
	if _, ok := parsePeriodKey("2026-03"); !ok {
		t.Fatalf("valid key rejected")
	}
	for _, key := range []string{"", "2026", "2026-13", "march"} {
		if _, ok := parsePeriodKey(key); ok {
			t.Fatalf("invalid key accepted: %q", key)
		}
	}
}
