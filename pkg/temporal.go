package sd2

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date is the payload of a resolved temporal.date Object: a calendar
// date with no time-of-day or offset.
type Date struct {
	Year, Month, Day int
}

// Clock is the payload of a resolved temporal.time Object: a
// time-of-day with nanosecond precision, no date or offset.
type Clock struct {
	Hour, Minute, Second, Nanosecond int
}

// Instant is the payload of a resolved temporal.instant Object: a
// fixed point on the UTC timeline.
type Instant struct {
	Time time.Time
}

// Duration is the payload of a resolved temporal.duration Object: an
// exact elapsed time, in nanoseconds. P1D is defined as exactly
// 86_400_000_000_000ns regardless of calendar irregularities.
type Duration struct {
	Nanoseconds int64
}

// Period is the payload of a resolved temporal.period Object: a
// calendar-relative span with no fixed duration. Weeks are folded
// into Days at parse time (1 week = 7 days).
type Period struct {
	Years, Months, Days int
}

var (
	dateRE     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	clockRE    = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})(?:\.(\d+))?$`)
	instantRE  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})(?:\.(\d+))?(Z|[+-]\d{2}:\d{2})$`)
	durationDateRE = regexp.MustCompile(`^(?:(\d+)D)?$`)
	durationBadDateRE = regexp.MustCompile(`\d+[YMW]`)
	durationTimeRE = regexp.MustCompile(`^(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d+))?S)?$`)
	periodRE   = regexp.MustCompile(`^(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?$`)
)

// NewTemporalRegistry returns the built-in registry for date, time,
// instant, duration and period, each registered under the
// corresponding temporal.* type tag. Every handler expects exactly
// one String argument, by position or under the "value" attribute.
func NewTemporalRegistry() *ConstructorRegistry {
	r := NewConstructorRegistry()
	r.Register(NewQualifiedName("date"), NewQualifiedName("temporal", "date"), handleDate)
	r.Register(NewQualifiedName("time"), NewQualifiedName("temporal", "time"), handleClock)
	r.Register(NewQualifiedName("instant"), NewQualifiedName("temporal", "instant"), handleInstant)
	r.Register(NewQualifiedName("duration"), NewQualifiedName("temporal", "duration"), handleDuration)
	r.Register(NewQualifiedName("period"), NewQualifiedName("temporal", "period"), handlePeriod)
	return r
}

func temporalArg(call ConstructorCall, ctx *ResolutionContext) (string, Location, error) {
	var v Value
	if len(call.Args) == 1 {
		v = call.Args[0]
	} else if av, ok := call.Get("value"); ok {
		v = av
	} else {
		return "", call.Loc, ctx.Error(E3001, "expected a single string argument")
	}

	s, ok := v.(*StringValue)
	if !ok {
		return "", v.Location(), ctx.Error(E3001, "expected a string argument")
	}
	return s.Text, s.Loc, nil
}

func handleDate(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
	text, loc, err := temporalArg(call, ctx)
	if err != nil {
		return nil, err
	}

	m := dateRE.FindStringSubmatch(text)
	if m == nil {
		return nil, ctx.Error(E3001, "malformed date literal "+strconv.Quote(text), loc)
	}

	t, err := time.Parse("2006-01-02", text)
	if err != nil {
		return nil, ctx.Error(E3001, "invalid calendar date "+strconv.Quote(text), loc)
	}

	return &Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

func handleClock(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
	text, loc, err := temporalArg(call, ctx)
	if err != nil {
		return nil, err
	}

	m := clockRE.FindStringSubmatch(text)
	if m == nil {
		return nil, ctx.Error(E3001, "malformed time literal "+strconv.Quote(text), loc)
	}

	frac := m[4]
	if len(frac) > 9 {
		return nil, ctx.Error(E3003, "fractional seconds precision exceeds 9 digits", loc)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second, _ := strconv.Atoi(m[3])
	if hour > 23 || minute > 59 || second > 59 {
		return nil, ctx.Error(E3001, "invalid clock value "+strconv.Quote(text), loc)
	}

	return &Clock{Hour: hour, Minute: minute, Second: second, Nanosecond: fracToNanos(frac)}, nil
}

func handleInstant(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
	text, loc, err := temporalArg(call, ctx)
	if err != nil {
		return nil, err
	}

	m := instantRE.FindStringSubmatch(text)
	if m == nil {
		return nil, ctx.Error(E3001, "malformed instant literal "+strconv.Quote(text), loc)
	}

	if frac := m[7]; len(frac) > 9 {
		return nil, ctx.Error(E3003, "fractional seconds precision exceeds 9 digits", loc)
	}

	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return nil, ctx.Error(E3001, "invalid instant "+strconv.Quote(text), loc)
	}

	return &Instant{Time: t.UTC()}, nil
}

func handleDuration(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
	text, loc, err := temporalArg(call, ctx)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(text, "P") {
		return nil, ctx.Error(E3001, "duration literal must start with 'P'", loc)
	}
	body := text[1:]

	datePart := body
	timePart := ""
	hasTime := false
	if idx := strings.IndexByte(body, 'T'); idx >= 0 {
		datePart = body[:idx]
		timePart = body[idx+1:]
		hasTime = true
	}

	if durationBadDateRE.MatchString(datePart) {
		return nil, ctx.Error(E3004, "duration supports only a 'D' calendar component", loc)
	}

	dm := durationDateRE.FindStringSubmatch(datePart)
	if dm == nil {
		return nil, ctx.Error(E3001, "malformed duration literal "+strconv.Quote(text), loc)
	}

	var tm []string
	if hasTime {
		tm = durationTimeRE.FindStringSubmatch(timePart)
		if tm == nil {
			return nil, ctx.Error(E3001, "malformed duration literal "+strconv.Quote(text), loc)
		}
	}

	days := dm[1]
	hours, minutes, seconds, frac := "", "", "", ""
	if tm != nil {
		hours, minutes, seconds, frac = tm[1], tm[2], tm[3], tm[4]
	}

	hasAnyComponent := days != "" || hours != "" || minutes != "" || seconds != ""
	if !hasAnyComponent {
		return nil, ctx.Error(E3002, "duration has no components", loc)
	}

	if len(frac) > 9 {
		return nil, ctx.Error(E3001, "fractional seconds precision exceeds 9 digits", loc)
	}

	var total int64
	total += int64(atoiOr0(days)) * 86_400_000_000_000
	total += int64(atoiOr0(hours)) * 3_600_000_000_000
	total += int64(atoiOr0(minutes)) * 60_000_000_000
	total += int64(atoiOr0(seconds)) * 1_000_000_000
	total += int64(fracToNanos(frac))

	return &Duration{Nanoseconds: total}, nil
}

func handlePeriod(call ConstructorCall, ctx *ResolutionContext) (interface{}, error) {
	text, loc, err := temporalArg(call, ctx)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(text, "P") {
		return nil, ctx.Error(E3001, "period literal must start with 'P'", loc)
	}
	body := text[1:]

	if strings.ContainsRune(body, 'T') {
		return nil, ctx.Error(E3005, "period does not support a time section", loc)
	}

	m := periodRE.FindStringSubmatch(body)
	if m == nil {
		return nil, ctx.Error(E3001, "malformed period literal "+strconv.Quote(text), loc)
	}

	years, months, weeks, days := m[1], m[2], m[3], m[4]
	if years == "" && months == "" && weeks == "" && days == "" {
		return nil, ctx.Error(E3002, "period has no components", loc)
	}

	totalDays := atoiOr0(days) + atoiOr0(weeks)*7
	return &Period{Years: atoiOr0(years), Months: atoiOr0(months), Days: totalDays}, nil
}

func atoiOr0(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}

// fracToNanos right-pads a fractional-seconds digit string with zeros
// to 9 digits and parses it as nanoseconds. Caller has already validated
// len(frac) <= 9.
func fracToNanos(frac string) int {
	if frac == "" {
		return 0
	}
	padded := frac + strings.Repeat("0", 9-len(frac))
	n, _ := strconv.Atoi(padded)
	return n
}
