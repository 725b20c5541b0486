package models

import "time"

// TimelapseForm keeps the interval, total time and image count fields
// consistent. Editing either duration recomputes the count; editing the
// count recomputes the total time. Nothing recomputes the interval.
type TimelapseForm struct {
	Interval HMS
	Total    HMS
	Count    int
}

// NewTimelapseForm creates an empty form
func NewTimelapseForm() *TimelapseForm {
	return &TimelapseForm{}
}

// SetInterval updates the interval and recomputes the image count
func (f *TimelapseForm) SetInterval(interval HMS) {
	f.Interval = interval
	f.Count = ImageCount(f.Total.TotalSeconds(), f.Interval.TotalSeconds())
}

// SetTotal updates the total time and recomputes the image count
func (f *TimelapseForm) SetTotal(total HMS) {
	f.Total = total
	f.Count = ImageCount(f.Total.TotalSeconds(), f.Interval.TotalSeconds())
}

// SetImageCount updates the image count and recomputes the total time
func (f *TimelapseForm) SetImageCount(count int) {
	f.Count = count
	f.Total = FromSeconds(TotalTime(count, f.Interval.TotalSeconds()))
}

// IntervalSeconds returns the interval in seconds
func (f *TimelapseForm) IntervalSeconds() int {
	return f.Interval.TotalSeconds()
}

// TotalSeconds returns the total time in seconds
func (f *TimelapseForm) TotalSeconds() int {
	return f.Total.TotalSeconds()
}

// Plan derives the run parameters from the duration fields. The image count
// is recomputed rather than read from the entry so an entry that was never
// submitted cannot disagree with the durations.
func (f *TimelapseForm) Plan() RunPlan {
	interval := f.IntervalSeconds()
	total := f.TotalSeconds()
	return RunPlan{
		Interval:  time.Duration(interval) * time.Second,
		Total:     time.Duration(total) * time.Second,
		NumImages: ImageCount(total, interval),
	}
}

// RunPlan is the schedule a run is started with
type RunPlan struct {
	Interval  time.Duration
	Total     time.Duration
	NumImages int
}
