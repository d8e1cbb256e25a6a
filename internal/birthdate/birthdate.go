// Package birthdate resolves a (day, month, year) triple into a calendar date
// and an age in whole years. The month may be a numeral, an English month
// name or a Chinese month name.
package birthdate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/katachat/katareport/pkg/utils"
)

// Errors returned by Resolve. All of them describe bad input.
var (
	ErrUnrecognizedMonth   = errors.New("birthdate: unrecognized month")
	ErrInvalidCalendarDate = errors.New("birthdate: not a valid calendar date")
	ErrFutureBirthdate     = errors.New("birthdate: birthdate is in the future")
)

var chineseMonths = map[string]time.Month{
	"一月": time.January, "二月": time.February, "三月": time.March,
	"四月": time.April, "五月": time.May, "六月": time.June,
	"七月": time.July, "八月": time.August, "九月": time.September,
	"十月": time.October, "十一月": time.November, "十二月": time.December,
}

// englishMonths is keyed by the case-folded full month name.
var englishMonths = func() map[string]time.Month {
	fold := cases.Fold()
	m := make(map[string]time.Month, 12)
	for mo := time.January; mo <= time.December; mo++ {
		m[fold.String(mo.String())] = mo
	}
	return m
}()

// ParseMonth converts a month token to a time.Month.
func ParseMonth(token string) (time.Month, error) {
	tok := strings.TrimSpace(token)
	if tok == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnrecognizedMonth)
	}

	if isDigits(tok) {
		n, err := strconv.Atoi(tok)
		if err != nil || n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: %q", ErrUnrecognizedMonth, token)
		}
		return time.Month(n), nil
	}

	if m, ok := chineseMonths[tok]; ok {
		return m, nil
	}

	// cases.Caser is not safe for concurrent use; make one per call.
	if m, ok := englishMonths[cases.Fold().String(tok)]; ok {
		return m, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedMonth, token)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Resolver computes ages relative to its clock. The zero value uses the
// system clock in SGT.
type Resolver struct {
	Now utils.Clock
}

// NewResolver returns a Resolver using now as "today".
func NewResolver(now utils.Clock) *Resolver {
	return &Resolver{Now: now}
}

// Result is a resolved birthdate.
type Result struct {
	Birthdate time.Time
	Age       int
}

// Resolve parses the triple and returns the age in whole years.
func (r *Resolver) Resolve(day int, month string, year int) (int, error) {
	res, err := r.ResolveDate(day, month, year)
	if err != nil {
		return 0, err
	}
	return res.Age, nil
}

// ResolveDate parses the triple and returns both the canonical date and the age.
func (r *Resolver) ResolveDate(day int, month string, year int) (Result, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return Result{}, err
	}

	today := r.today()
	birth, err := calendarDate(year, m, day, today.Location())
	if err != nil {
		return Result{}, err
	}

	if birth.After(today) {
		return Result{}, fmt.Errorf("%w: %s", ErrFutureBirthdate, utils.FormatDate(birth))
	}

	return Result{Birthdate: birth, Age: AgeOn(birth, today)}, nil
}

func (r *Resolver) today() time.Time {
	now := utils.NowSGT
	if r != nil && r.Now != nil {
		now = r.Now
	}
	t := now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// calendarDate rejects triples that time.Date would normalise (Feb 30 → Mar 1).
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	if year < 1 || day < 1 {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidCalendarDate, year, int(month), day)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidCalendarDate, year, int(month), day)
	}
	return t, nil
}

// AgeOn returns the age in whole years of someone born on birth, as of today.
// One year is subtracted until the birthday has occurred in today's year.
func AgeOn(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() ||
		(today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsInputError reports whether err came from bad birthdate input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrUnrecognizedMonth) ||
		errors.Is(err, ErrInvalidCalendarDate) ||
		errors.Is(err, ErrFutureBirthdate)
}
