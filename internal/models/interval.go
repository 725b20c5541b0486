package models

import (
	"fmt"
	"strconv"
	"strings"
)

// HMS is a duration as entered in the hours/minutes/seconds spinners
type HMS struct {
	Hours   int
	Minutes int
	Seconds int
}

// ToSeconds combines hours, minutes and seconds into a number of seconds
func ToSeconds(hours, minutes, seconds int) int {
	return seconds + 60*minutes + 3600*hours
}

// FromSeconds decomposes a number of seconds into hours, minutes and seconds.
// Negative input decomposes as zero.
func FromSeconds(total int) HMS {
	if total < 0 {
		total = 0
	}
	hours, rem := total/3600, total%3600
	return HMS{
		Hours:   hours,
		Minutes: rem / 60,
		Seconds: rem % 60,
	}
}

// TotalSeconds returns the duration in seconds
func (t HMS) TotalSeconds() int {
	return ToSeconds(t.Hours, t.Minutes, t.Seconds)
}

// String formats the duration as H:MM:SS
func (t HMS) String() string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// ImageCount returns the number of frames a run of total seconds captures at
// the given interval: one frame at start plus one per whole interval.
// A non-positive interval or a negative total yields zero frames.
func ImageCount(total, interval int) int {
	if interval <= 0 || total < 0 {
		return 0
	}
	return 1 + total/interval
}

// TotalTime returns the run duration in seconds needed to capture count
// frames at the given interval.
func TotalTime(count, interval int) int {
	if count < 1 || interval <= 0 {
		return 0
	}
	return (count - 1) * interval
}

// ParseImageCount parses the image number entry
func ParseImageCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid image number %q: %w", text, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid image number %q: must not be negative", text)
	}
	return n, nil
}

// ParseHMSField parses one spinner field. Empty text reads as zero.
func ParseHMSField(text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("invalid time value %q: %w", text, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid time value %q: must not be negative", text)
	}
	return n, nil
}
