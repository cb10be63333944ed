package schedule

import (
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
)

// Next returns the first occurrence of rule strictly after `after`, walking
// from `start`. The bound is min(rule.Until, horizon); occurrences at or
// past the bound return ok=false. Callers never need to materialize the
// whole sequence to ask for the next date.
func Next(rule model.Recurrence, start, after, horizon time.Time) (time.Time, bool) {
	if rule.IsZero() {
		return time.Time{}, false
	}
	bound := horizon
	if rule.Until != nil && rule.Until.Before(bound) {
		bound = *rule.Until
	}

	occ := start
	for !occ.After(after) {
		occ = step(rule, occ)
	}
	if !occ.Before(bound) {
		return time.Time{}, false
	}
	return occ, true
}

// NextOccurrence returns the first occurrence strictly after `after`,
// bounded only by the rule's own Until. This is the single-step advance
// used when a fired reminder schedules its successor: one occurrence at a
// time needs no lookahead cap, and capping it would cut the chain short
// for any rule whose step outruns the cap (a monthly rule in a 31-day
// month, say). The horizon bound in Next and Expand exists to keep batch
// materialization finite, nothing more.
func NextOccurrence(rule model.Recurrence, start, after time.Time) (time.Time, bool) {
	if rule.IsZero() {
		return time.Time{}, false
	}

	occ := start
	for !occ.After(after) {
		occ = step(rule, occ)
	}
	if rule.Until != nil && !occ.Before(*rule.Until) {
		return time.Time{}, false
	}
	return occ, true
}

// Expand materializes every occurrence from `start` onward, stopping
// strictly before min(rule.Until, horizon). The mandatory horizon keeps
// rules without an Until from generating unbounded sequences.
func Expand(rule model.Recurrence, start, now, horizon time.Time) []time.Time {
	if rule.IsZero() {
		return nil
	}
	bound := horizon
	if rule.Until != nil && rule.Until.Before(bound) {
		bound = *rule.Until
	}

	var out []time.Time
	for occ := start; occ.Before(bound); occ = step(rule, occ) {
		out = append(out, occ)
	}
	return out
}

// step advances one interval. Monthly stepping uses AddDate, so month-length
// overflow normalizes per Go calendar rules (Jan 31 + 1 month -> Mar 2/3).
func step(rule model.Recurrence, from time.Time) time.Time {
	interval := rule.Interval
	if interval < 1 {
		interval = 1
	}
	switch rule.Frequency {
	case model.FreqDaily:
		return from.AddDate(0, 0, interval)
	case model.FreqWeekly:
		return from.AddDate(0, 0, 7*interval)
	case model.FreqMonthly:
		return from.AddDate(0, interval, 0)
	default:
		return from.AddDate(0, 0, interval)
	}
}
