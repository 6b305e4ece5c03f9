package sd2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func callDate(text string) (interface{}, error) {
	reg := NewTemporalRegistry()
	_, handler, _ := reg.handlerFor(NewQualifiedName("date"))
	call := ConstructorCall{Args: []Value{&StringValue{Text: text}}}
	return handler(call, &ResolutionContext{})
}

func callTime(text string) (interface{}, error) {
	reg := NewTemporalRegistry()
	_, handler, _ := reg.handlerFor(NewQualifiedName("time"))
	call := ConstructorCall{Args: []Value{&StringValue{Text: text}}}
	return handler(call, &ResolutionContext{})
}

func callInstant(text string) (interface{}, error) {
	reg := NewTemporalRegistry()
	_, handler, _ := reg.handlerFor(NewQualifiedName("instant"))
	call := ConstructorCall{Args: []Value{&StringValue{Text: text}}}
	return handler(call, &ResolutionContext{})
}

func callDuration(text string) (interface{}, error) {
	reg := NewTemporalRegistry()
	_, handler, _ := reg.handlerFor(NewQualifiedName("duration"))
	call := ConstructorCall{Args: []Value{&StringValue{Text: text}}}
	return handler(call, &ResolutionContext{})
}

func callPeriod(text string) (interface{}, error) {
	reg := NewTemporalRegistry()
	_, handler, _ := reg.handlerFor(NewQualifiedName("period"))
	call := ConstructorCall{Args: []Value{&StringValue{Text: text}}}
	return handler(call, &ResolutionContext{})
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	rec, ok := AsErrorRecord(err)
	assert.True(t, ok)
	return rec.Code
}

func TestTemporalDate(t *testing.T) {
	payload, err := callDate("2024-03-15")
	assert.NoError(t, err)
	d := payload.(*Date)
	assert.Equal(t, &Date{Year: 2024, Month: 3, Day: 15}, d)
}

func TestTemporalDateMalformed(t *testing.T) {
	_, err := callDate("03-15-2024")
	assert.Equal(t, E3001, errCode(t, err))
}

func TestTemporalDateInvalidCalendar(t *testing.T) {
	_, err := callDate("2024-02-30")
	assert.Equal(t, E3001, errCode(t, err))
}

func TestTemporalClock(t *testing.T) {
	payload, err := callTime("14:30:00.5")
	assert.NoError(t, err)
	c := payload.(*Clock)
	assert.Equal(t, 14, c.Hour)
	assert.Equal(t, 30, c.Minute)
	assert.Equal(t, 0, c.Second)
	assert.Equal(t, 500000000, c.Nanosecond)
}

func TestTemporalClockOutOfRange(t *testing.T) {
	_, err := callTime("25:00:00")
	assert.Equal(t, E3001, errCode(t, err))
}

func TestTemporalClockExcessPrecision(t *testing.T) {
	_, err := callTime("14:30:00.1234567890")
	assert.Equal(t, E3003, errCode(t, err))
}

func TestTemporalInstant(t *testing.T) {
	payload, err := callInstant("2024-03-15T14:30:00Z")
	assert.NoError(t, err)
	i := payload.(*Instant)
	assert.Equal(t, 2024, i.Time.Year())
}

func TestTemporalInstantRequiresOffset(t *testing.T) {
	_, err := callInstant("2024-03-15T14:30:00")
	assert.Equal(t, E3001, errCode(t, err))
}

func TestTemporalInstantExcessPrecision(t *testing.T) {
	_, err := callInstant("2024-03-15T14:30:00.1234567890Z")
	assert.Equal(t, E3003, errCode(t, err))
}

func TestTemporalDurationDaysOnly(t *testing.T) {
	payload, err := callDuration("P1D")
	assert.NoError(t, err)
	d := payload.(*Duration)
	assert.Equal(t, int64(86_400_000_000_000), d.Nanoseconds)
}

func TestTemporalDurationDateAndTime(t *testing.T) {
	payload, err := callDuration("P1DT2H30M")
	assert.NoError(t, err)
	d := payload.(*Duration)
	want := int64(86_400_000_000_000 + 2*3_600_000_000_000 + 30*60_000_000_000)
	assert.Equal(t, want, d.Nanoseconds)
}

func TestTemporalDurationRejectsCalendarComponents(t *testing.T) {
	_, err := callDuration("P1Y")
	assert.Equal(t, E3004, errCode(t, err))
}

func TestTemporalDurationEmpty(t *testing.T) {
	_, err := callDuration("P")
	assert.Equal(t, E3002, errCode(t, err))
}

func TestTemporalDurationExcessPrecision(t *testing.T) {
	_, err := callDuration("PT1.1234567890S")
	assert.Equal(t, E3001, errCode(t, err))
}

func TestTemporalPeriodYearsMonthsDays(t *testing.T) {
	payload, err := callPeriod("P1Y2M3D")
	assert.NoError(t, err)
	p := payload.(*Period)
	assert.Equal(t, &Period{Years: 1, Months: 2, Days: 3}, p)
}

func TestTemporalPeriodWeeksFoldIntoDays(t *testing.T) {
	payload, err := callPeriod("P2W")
	assert.NoError(t, err)
	p := payload.(*Period)
	assert.Equal(t, 14, p.Days)
}

func TestTemporalPeriodRejectsTimeSection(t *testing.T) {
	_, err := callPeriod("P1YT2H")
	assert.Equal(t, E3005, errCode(t, err))
}

func TestTemporalPeriodEmpty(t *testing.T) {
	_, err := callPeriod("P")
	assert.Equal(t, E3002, errCode(t, err))
}
