// Package window extracts contiguous time ranges from a timestamp-sorted
// sample sequence.
//
// Every function assumes samples are sorted ascending by T. Unsorted input
// is not detected.
package window

import (
	"sort"
	"time"

	"github.com/okian/tackline/internal/domain/model"
)

// SliceByTimeRange returns the samples from the first sample at or after
// from, through the first sample at or after to. When no sample sits
// exactly on to, the next later sample is included as the closing edge.
// The result shares the backing array of samples.
func SliceByTimeRange(samples []model.Sample, from, to time.Time) []model.Sample {
	fromIdx := indexAtOrAfter(samples, from)
	toIdx := indexAtOrAfter(samples, to)
	end := toIdx + 1
	if end > len(samples) {
		end = len(samples)
	}
	if fromIdx >= end {
		return nil
	}
	return samples[fromIdx:end:end]
}

// SliceAroundTime returns SliceByTimeRange(samples, at-before, at+after).
func SliceAroundTime(samples []model.Sample, at time.Time, before, after time.Duration) []model.Sample {
	return SliceByTimeRange(samples, at.Add(-before), at.Add(after))
}

// Spec describes a window relative to a reference time.
type Spec struct {
	Before time.Duration
	After  time.Duration
}

// Around applies the window to samples at the given time.
func (s Spec) Around(samples []model.Sample, at time.Time) []model.Sample {
	return SliceAroundTime(samples, at, s.Before, s.After)
}

// indexAtOrAfter is the lowest index whose timestamp is not before ts.
func indexAtOrAfter(samples []model.Sample, ts time.Time) int {
	return sort.Search(len(samples), func(i int) bool {
		return !samples[i].T.Before(ts)
	})
}
