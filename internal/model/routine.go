package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Frequency is how often a routine recurs.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// WeekdaySet is a bitmask of weekdays, bit 0 being Sunday.
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given days.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.With(d)
	}
	return s
}

func (s WeekdaySet) With(d time.Weekday) WeekdaySet {
	if d < time.Sunday || d > time.Saturday {
		return s
	}
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Empty() bool {
	return s&0x7f == 0
}

// Days lists the members from Sunday to Saturday.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// ParseWeekdays reads a comma separated list of day numbers (0 = Sunday) or
// English short names, e.g. "1,3" or "mon,wed".
func ParseWeekdays(raw string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			if n < 0 || n > 6 {
				return 0, fmt.Errorf("weekday %d out of range 0..6", n)
			}
			s = s.With(time.Weekday(n))
			continue
		}
		d, ok := weekdayNames[part]
		if !ok {
			return 0, fmt.Errorf("unknown weekday %q", part)
		}
		s = s.With(d)
	}
	return s, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// MonthOverflow decides what a monthly routine does in months that are
// shorter than its day of month.
type MonthOverflow string

const (
	// OverflowClamp makes the routine due on the last day of the month.
	OverflowClamp MonthOverflow = "clamp"
	// OverflowSkip drops the occurrence for that month.
	OverflowSkip MonthOverflow = "skip"
)

var (
	ErrRecurrenceFrequency  = errors.New("frequency must be daily, weekly or monthly")
	ErrRecurrenceWeekdays   = errors.New("weekly routine needs at least one weekday")
	ErrRecurrenceDayOfMonth = errors.New("monthly routine needs a day of month in 1..31")
	ErrRoutineTime          = errors.New("time must be HH:MM")
)

// Routine is a template that materializes into one task per due date.
type Routine struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string     `gorm:"type:varchar(36);index" json:"user_id"`
	CategoryID *string    `gorm:"type:varchar(36);index" json:"category_id"`
	Title      string     `gorm:"not null" json:"title"`
	Memo       string     `json:"memo"`
	Priority   Priority   `gorm:"type:varchar(10)" json:"priority"`
	IsActive   bool       `json:"is_active"`
	Frequency  Frequency  `gorm:"type:varchar(10)" json:"frequency"`
	Weekdays   WeekdaySet `json:"weekdays"`
	DayOfMonth int        `json:"day_of_month"`
	HasTime    bool       `json:"has_time"`
	Time       string     `gorm:"type:varchar(5)" json:"time"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r *Routine) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ValidateRecurrence checks that the descriptor fits the frequency.
func (r *Routine) ValidateRecurrence() error {
	switch r.Frequency {
	case FrequencyDaily:
	case FrequencyWeekly:
		if r.Weekdays.Empty() {
			return ErrRecurrenceWeekdays
		}
	case FrequencyMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return ErrRecurrenceDayOfMonth
		}
	default:
		return ErrRecurrenceFrequency
	}
	if r.HasTime && !ValidClock(r.Time) {
		return ErrRoutineTime
	}
	return nil
}

// DueOn reports whether the routine produces a task on date.
func (r *Routine) DueOn(date Date, overflow MonthOverflow) bool {
	switch r.Frequency {
	case FrequencyDaily:
		return true
	case FrequencyWeekly:
		return r.Weekdays.Has(date.Weekday())
	case FrequencyMonthly:
		day := date.Day()
		if day == r.DayOfMonth {
			return true
		}
		last := date.DaysInMonth()
		return overflow == OverflowClamp && day == last && r.DayOfMonth > last
	}
	return false
}

// ValidClock reports whether s is a 24h HH:MM time.
func ValidClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil && len(s) == 5
}
