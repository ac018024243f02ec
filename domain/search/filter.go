package search

import (
	"chat-session/errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type FilterType string

const (
	Keyword FilterType = "key"
	Time    FilterType = "time"
)

const (
	LessOrEqual    = "<="
	Less           = "<"
	GreaterOrEqual = ">="
	Greater        = ">"
	Equal          = "="
)

// operators are ordered so that the longest match wins
var operators = []string{LessOrEqual, Less, GreaterOrEqual, Greater, Equal}

const subMillisPart = "000000"

var (
	calendarDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	compactLocal = regexp.MustCompile(`^\d{8}T\d{6}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
)

// Filter is a parsed history query such as "time>1512860944810468536" or "key=token".
// It decouples the raw input typed by the user from what the history store expects.
type Filter struct {
	Arg      string     // The original filter string
	Type     FilterType // Keyword or Time
	Operator string
	Key      string // Normalized key, a nanosecond epoch for Time filters
}

// ParseFilter parses "<type><operator><key>".
// A type marker only counts when an operator follows it, so "keyboard" or
// "timeout" are plain keywords. Input without a marker is a keyword equality.
func ParseFilter(arg string) (Filter, error) {
	if strings.TrimSpace(arg) == "" {
		return Filter{}, fmt.Errorf("%w: empty filter", errors.ErrFilterParse)
	}

	for _, marker := range []FilterType{Time, Keyword} {
		rest, found := strings.CutPrefix(arg, string(marker))
		if !found {
			continue
		}
		op, ok := matchOperator(rest)
		if !ok {
			if marker == Time && rest == "" {
				return Filter{}, fmt.Errorf("%w: %q has no operator", errors.ErrFilterParse, arg)
			}
			continue
		}
		return newFilter(arg, marker, op, rest[len(op):])
	}

	return Filter{Arg: arg, Type: Keyword, Operator: Equal, Key: arg}, nil
}

// NewerThan builds the filter used to fetch history strictly after ts.
func NewerThan(ts int64) Filter {
	key := strconv.FormatInt(ts, 10)
	return Filter{
		Arg:      string(Time) + Greater + key,
		Type:     Time,
		Operator: Greater,
		Key:      key,
	}
}

func (f Filter) String() string {
	return string(f.Type) + f.Operator + f.Key
}

// Nanos returns the key of a Time filter as a nanosecond epoch.
func (f Filter) Nanos() (int64, error) {
	if f.Type != Time {
		return 0, fmt.Errorf("%w: %q is not a time filter", errors.ErrFilterParse, f.Arg)
	}
	ns, err := strconv.ParseInt(f.Key, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errors.ErrFilterParse, err)
	}
	return ns, nil
}

// Match reports whether ts satisfies a Time filter.
func (f Filter) Match(ts int64) bool {
	ns, err := f.Nanos()
	if err != nil {
		return false
	}
	switch f.Operator {
	case LessOrEqual:
		return ts <= ns
	case Less:
		return ts < ns
	case GreaterOrEqual:
		return ts >= ns
	case Greater:
		return ts > ns
	default:
		return ts == ns
	}
}

func newFilter(arg string, filterType FilterType, op, key string) (Filter, error) {
	if key == "" {
		return Filter{}, fmt.Errorf("%w: %q has no key", errors.ErrFilterParse, arg)
	}
	if filterType == Keyword {
		if op != Equal {
			return Filter{}, fmt.Errorf("%w: keyword filters only support %q", errors.ErrFilterParse, Equal)
		}
		return Filter{Arg: arg, Type: Keyword, Operator: op, Key: key}, nil
	}

	normalized, err := NormalizeTimestamp(key)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Arg: arg, Type: Time, Operator: op, Key: normalized}, nil
}

func matchOperator(s string) (string, bool) {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op, true
		}
	}
	return "", false
}

// NormalizeTimestamp turns a timestamp literal into a nanosecond epoch string.
//   - "1512860944810468536" is already nanoseconds and is returned as is
//   - "2017-12-08" is midnight UTC of that day
//   - "20171208T121212" is a local time; only millisecond precision exists,
//     the last six digits are zero
func NormalizeTimestamp(key string) (string, error) {
	switch {
	case digitsOnly.MatchString(key):
		return key, nil
	case calendarDate.MatchString(key):
		t, err := time.Parse(time.DateOnly, key)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrFilterParse, err)
		}
		return strconv.FormatInt(t.UnixMilli(), 10) + subMillisPart, nil
	case compactLocal.MatchString(key):
		t, err := time.ParseInLocation("20060102T150405", key, time.Local)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errors.ErrFilterParse, err)
		}
		return strconv.FormatInt(t.UnixMilli(), 10) + subMillisPart, nil
	default:
		return "", fmt.Errorf("%w: unsupported timestamp %q", errors.ErrFilterParse, key)
	}
}
