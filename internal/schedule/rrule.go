package schedule

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"

	"github.com/nurpe/pestcare-visits/internal/model"
)

// CadenceRule describes a contract's generated visit dates as an RFC 5545
// recurrence bounded by COUNT. Month-end clamping is expressed with
// BYMONTHDAY=28..d;BYSETPOS=-1, which picks the anchor day or the last day of
// shorter months.
func CadenceRule(c model.Contract) (*rrule.RRule, error) {
	drafts, err := GenerateVisits(c)
	if err != nil {
		return nil, err
	}

	start := DateOnly(c.StartDate)
	opt := rrule.ROption{
		Dtstart: start,
		Count:   len(drafts),
	}

	switch c.Cadence {
	case model.CadenceWeekly:
		opt.Freq = rrule.WEEKLY
	case model.CadenceMonthly, model.CadenceQuarterly:
		opt.Freq = rrule.MONTHLY
		if c.Cadence == model.CadenceQuarterly {
			opt.Interval = 3
		}
		opt.Bymonthday, opt.Bysetpos = monthDaySelector(start.Day())
	case model.CadenceOneOff:
		opt.Freq = rrule.DAILY
		opt.Count = 1
	default:
		return nil, fmt.Errorf("%w: unknown cadence %q", ErrValidation, c.Cadence)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return rule, nil
}

func monthDaySelector(anchor int) ([]int, []int) {
	if anchor <= 28 {
		return []int{anchor}, nil
	}
	days := make([]int, 0, anchor-27)
	for d := 28; d <= anchor; d++ {
		days = append(days, d)
	}
	return days, []int{-1}
}

// RuleValue returns the RRULE property value of rule, without DTSTART.
func RuleValue(rule *rrule.RRule) string {
	for _, line := range strings.Split(rule.String(), "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "RRULE:"); ok {
			return value
		}
		if strings.HasPrefix(line, "FREQ=") {
			return line
		}
	}
	return ""
}
