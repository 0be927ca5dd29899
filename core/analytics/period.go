package analytics

import (
	"strconv"
	"strings"
	"time"
)

// Periods.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodYear    = "year"
)

var periodAliases = map[string]string{
	"weekly":    PeriodWeek,
	"monthly":   PeriodMonth,
	"quarterly": PeriodQuarter,
	"yearly":    PeriodYear,
}

type periodConfig struct {
	bucketCount int
	// step between bucket boundaries, applied backward from "now"
	stepMonths int
	stepDays   int
	label      func(b Bucket, index int) string
}

var periodConfigs = map[string]periodConfig{
	PeriodWeek: {
		bucketCount: 7,
		stepDays:    1,
		label:       func(b Bucket, _ int) string { return b.StartDate.Format("Mon") },
	},
	PeriodMonth: {
		bucketCount: 4,
		stepDays:    7,
		label:       func(_ Bucket, index int) string { return "Week " + strconv.Itoa(index+1) },
	},
	PeriodQuarter: {
		bucketCount: 4,
		stepMonths:  1,
		label:       func(b Bucket, _ int) string { return b.StartDate.Format("Jan") },
	},
	PeriodYear: {
		bucketCount: 12,
		stepMonths:  1,
		label:       func(b Bucket, _ int) string { return b.StartDate.Format("Jan") },
	},
}

// NormalizePeriod maps any supported spelling of a period to its canonical value.
func NormalizePeriod(period string) string {
	key := strings.ToLower(strings.TrimSpace(period))
	if canonical, ok := periodAliases[key]; ok {
		return canonical
	}
	return key
}

// BuildBuckets builds the bucket sequence for a period, ending at now.
// Buckets are returned oldest first. Every bucket is half-open [start, end)
// except the last, which is closed [start, end] so that now falls inside it.
func BuildBuckets(period string, now time.Time) (string, []Bucket, error) {
	normalized := NormalizePeriod(period)
	config, ok := periodConfigs[normalized]
	if !ok {
		return "", nil, ErrInvalidPeriod
	}

	buckets := make([]Bucket, config.bucketCount)
	bucketEnd := now
	for i := config.bucketCount - 1; i >= 0; i-- {
		start := bucketEnd.AddDate(0, -config.stepMonths, -config.stepDays)
		buckets[i] = Bucket{StartDate: start, EndDate: bucketEnd}
		bucketEnd = start
	}
	for i := range buckets {
		buckets[i].Label = config.label(buckets[i], i)
	}
	return normalized, buckets, nil
}

// findBucket locates the bucket containing date, honoring the interval
// semantics above. It returns -1 when date falls outside every bucket.
func findBucket(buckets []Bucket, date time.Time) int {
	for i := range buckets {
		isLast := i == len(buckets)-1
		startsAfter := !date.Before(buckets[i].StartDate)
		endsBefore := date.Before(buckets[i].EndDate) || (isLast && date.Equal(buckets[i].EndDate))
		if startsAfter && endsBefore {
			return i
		}
	}
	return -1
}
