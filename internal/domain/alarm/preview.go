package alarm

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// PreviewLimit caps the number of entries in a diagnostics preview.
const PreviewLimit = 5

// PreviewEntry is one row of the truncated per-alarm diagnostics preview.
type PreviewEntry struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Enabled    bool   `json:"enabled"`
	Repeat     bool   `json:"repeat"`
	RepeatDays []int  `json:"repeat_days"`
	Next       string `json:"next,omitempty"`
}

// BuildPreview builds a truncated preview of the alarm set and its schedule,
// ordered by alarm key.
func BuildPreview(alarms map[string]*NormalizedAlarm, schedule map[string]*time.Time) []PreviewEntry {
	keys := make([]string, 0, len(alarms))
	for key := range alarms {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	preview := make([]PreviewEntry, 0, PreviewLimit)

	for _, key := range keys {
		a := alarms[key]
		preview = append(preview, PreviewEntry{
			Key:        a.Key,
			Label:      a.Label,
			Enabled:    a.Enabled,
			Repeat:     a.Repeat,
			RepeatDays: append([]int(nil), a.RepeatDaysNormalized...),
			Next:       FormatTimePtr(schedule[key]),
		})

		if len(preview) >= PreviewLimit {
			break
		}
	}

	return preview
}

// DescribeTimeUntil returns a human-friendly description of the time left
// until target, e.g. "in 1d 2h 5m" or "due". Returns "" for a nil target.
func DescribeTimeUntil(target *time.Time, now time.Time) string {
	if target == nil {
		return ""
	}

	totalSeconds := int(target.Sub(now) / time.Second)
	if totalSeconds <= 0 {
		return "due"
	}

	days := totalSeconds / 86400
	hours := totalSeconds % 86400 / 3600
	minutes := totalSeconds % 3600 / 60
	seconds := totalSeconds % 60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}

	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}

	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}

	if len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	return "in " + strings.Join(parts, " ")
}
