package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildBucketsCounts(t *testing.T) {
	nows := []time.Time{
		time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC), // leap day
		time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),  // month-length edge
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Now().UTC(),
	}
	wantCounts := map[string]int{
		PeriodWeek:    7,
		PeriodMonth:   4,
		PeriodQuarter: 4,
		PeriodYear:    12,
	}
	for period, want := range wantCounts {
		for _, now := range nows {
			normalized, buckets, err := BuildBuckets(period, now)
			assert.NoError(t, err)
			assert.Equal(t, period, normalized)
			assert.Len(t, buckets, want)
		}
	}
}

func TestBuildBucketsCoverage(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	for _, period := range []string{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear} {
		t.Run(period, func(t *testing.T) {
			_, buckets, err := BuildBuckets(period, now)
			assert.NoError(t, err)

			// last bucket ends exactly at now
			assert.True(t, buckets[len(buckets)-1].EndDate.Equal(now))
			// contiguous: each bucket starts where the previous one ends
			for i := 1; i < len(buckets); i++ {
				assert.True(t, buckets[i].StartDate.Equal(buckets[i-1].EndDate),
					"gap between bucket %d and %d", i-1, i)
			}
			// chronological and non-empty intervals
			for i, b := range buckets {
				assert.True(t, b.StartDate.Before(b.EndDate), "bucket %d is empty or inverted", i)
			}
		})
	}
}

func TestBuildBucketsLabels(t *testing.T) {
	now := time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC) // a Sunday

	_, weekBuckets, err := BuildBuckets(PeriodWeek, now)
	assert.NoError(t, err)
	wantDays := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	for i, b := range weekBuckets {
		assert.Equal(t, wantDays[i], b.Label)
	}

	_, monthBuckets, err := BuildBuckets(PeriodMonth, now)
	assert.NoError(t, err)
	for i, b := range monthBuckets {
		assert.Equal(t, fmt.Sprintf("Week %d", i+1), b.Label)
	}

	_, yearBuckets, err := BuildBuckets(PeriodYear, now)
	assert.NoError(t, err)
	assert.Equal(t, "Jun", yearBuckets[0].Label) // 12 months back lands in last June
	assert.Equal(t, "May", yearBuckets[len(yearBuckets)-1].Label)
}

func TestBuildBucketsAliases(t *testing.T) {
	now := time.Now().UTC()
	aliases := map[string]string{
		"weekly":      PeriodWeek,
		"Monthly":     PeriodMonth,
		" quarterly ": PeriodQuarter,
		"YEARLY":      PeriodYear,
		"week":        PeriodWeek,
	}
	for alias, want := range aliases {
		normalized, _, err := BuildBuckets(alias, now)
		assert.NoError(t, err, alias)
		assert.Equal(t, want, normalized)
	}
}

func TestBuildBucketsInvalidPeriod(t *testing.T) {
	for _, period := range []string{"bogus", "", "fortnight", "day"} {
		_, _, err := BuildBuckets(period, time.Now().UTC())
		assert.Equal(t, ErrInvalidPeriod, err)
	}
}

func TestFindBucketIntervals(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	_, buckets, err := BuildBuckets(PeriodWeek, now)
	assert.NoError(t, err)

	// boundary between two buckets belongs to the later one
	boundary := buckets[3].StartDate
	assert.Equal(t, 3, findBucket(buckets, boundary))
	assert.Equal(t, 2, findBucket(buckets, boundary.Add(-time.Second)))

	// now itself falls inside the last (closed) bucket
	assert.Equal(t, len(buckets)-1, findBucket(buckets, now))

	// out of range on both sides
	assert.Equal(t, -1, findBucket(buckets, buckets[0].StartDate.Add(-time.Second)))
	assert.Equal(t, -1, findBucket(buckets, now.Add(time.Second)))
}
