package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type TimeFrame string

const (
	Daily     TimeFrame = "daily"
	Weekly    TimeFrame = "weekly"
	Monthly   TimeFrame = "monthly"
	Quarterly TimeFrame = "quarterly"
)

var ErrUnknownTimeFrame = errors.New("unknown time frame")

// ParseTimeFrame : accepts the long names and the short aliases used by chart clients
func ParseTimeFrame(s string) (TimeFrame, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "daily", "1d", "d":
		return Daily, nil
	case "weekly", "1w", "w":
		return Weekly, nil
	case "monthly", "1m", "m":
		return Monthly, nil
	case "quarterly", "1q", "q":
		return Quarterly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTimeFrame, s)
	}
}

// Quarter : 1..4
func Quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// PeriodKey : grouping key of the calendar period that contains t
func (tf TimeFrame) PeriodKey(t time.Time) string {
	switch tf {
	case Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return t.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%04d-Q%d", t.Year(), Quarter(t))
	default:
		return t.Format(DateLayout)
	}
}

// Label : x-axis label of a bar dated t
func (tf TimeFrame) Label(t time.Time) string {
	switch tf {
	case Monthly:
		return t.Format("2006-1")
	case Quarterly:
		return fmt.Sprintf("%dQ%d", t.Year(), Quarter(t))
	default:
		return t.Format("2006-1-2")
	}
}
