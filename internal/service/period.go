package service

import "time"

// periodKey 返回 UTC 自然月周期键（YYYY-MM）
func periodKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// periodBounds 返回 UTC 自然月的起止时间（起含、止为下月首日）
func periodBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// parsePeriodKey 解析周期键，非法时返回零值
func parsePeriodKey(key string) (time.Time, bool) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
