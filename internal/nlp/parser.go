// Package nlp turns free-form task text into structured fields. Parsing is
// pure: the same input and reference time always produce the same result,
// and nothing here touches storage or the network.
package nlp

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Aboubaker001/Mouin-Almojtahidin-bot/internal/model"
)

// ErrEmptyTitle is returned when no title remains after extraction.
var ErrEmptyTitle = errors.New("missing title")

// Parsed is the structured form of a task description.
type Parsed struct {
	Title       string
	Description string
	Priority    model.Priority
	Category    model.Category
	DueAt       *time.Time
	Tags        []string
}

// relativePhrase maps a fixed phrase to an offset from the reference time.
// Order matters: earlier entries win, and that order is part of the
// contract (see the keyword table tests).
type relativePhrase struct {
	phrase string
	offset func(now time.Time) time.Time
}

var relativePhrases = []relativePhrase{
	{"tomorrow", func(now time.Time) time.Time { return now.AddDate(0, 0, 1) }},
	{"غداً", func(now time.Time) time.Time { return now.AddDate(0, 0, 1) }},
	{"غدا", func(now time.Time) time.Time { return now.AddDate(0, 0, 1) }},
	{"next week", func(now time.Time) time.Time { return now.AddDate(0, 0, 7) }},
	{"الأسبوع القادم", func(now time.Time) time.Time { return now.AddDate(0, 0, 7) }},
	{"tonight", func(now time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, now.Location())
	}},
	{"الليلة", func(now time.Time) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, now.Location())
	}},
}

var (
	inDurationRe = regexp.MustCompile(`(?i)\bin (\d+) (minutes?|mins?|hours?|days?)\b`)
	arDurationRe = regexp.MustCompile(`بعد (\d+) (دقيقة|دقائق|ساعة|ساعات|يوم|أيام)`)
	clockRe      = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	dateRe       = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	tagRe        = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)
)

// keywordRule pairs a lower-cased needle with the value it selects.
type keywordRule[T any] struct {
	needle string
	value  T
}

// Matching is substring-based against the lower-cased text, in both
// languages. A keyword embedded in a longer word (or a tag) still matches;
// that looseness is intentional and covered by tests.
var priorityRules = []keywordRule[model.Priority]{
	{"urgent", model.PriorityHigh},
	{"important", model.PriorityHigh},
	{"critical", model.PriorityHigh},
	{"asap", model.PriorityHigh},
	{"عاجل", model.PriorityHigh},
	{"مهم", model.PriorityHigh},
	{"ضروري", model.PriorityHigh},
	{"low priority", model.PriorityLow},
	{"not urgent", model.PriorityLow},
	{"whenever", model.PriorityLow},
	{"غير عاجل", model.PriorityLow},
	{"منخفض", model.PriorityLow},
}

var categoryRules = []keywordRule[model.Category]{
	{"work", model.CategoryWork},
	{"meeting", model.CategoryWork},
	{"عمل", model.CategoryWork},
	{"اجتماع", model.CategoryWork},
	{"study", model.CategoryStudy},
	{"homework", model.CategoryStudy},
	{"exam", model.CategoryStudy},
	{"lecture", model.CategoryStudy},
	{"دراسة", model.CategoryStudy},
	{"واجب", model.CategoryStudy},
	{"امتحان", model.CategoryStudy},
	{"محاضرة", model.CategoryStudy},
	{"personal", model.CategoryPersonal},
	{"family", model.CategoryPersonal},
	{"شخصي", model.CategoryPersonal},
	{"عائلة", model.CategoryPersonal},
	{"buy", model.CategoryShopping},
	{"shopping", model.CategoryShopping},
	{"تسوق", model.CategoryShopping},
	{"شراء", model.CategoryShopping},
	{"remind", model.CategoryReminder},
	{"تذكير", model.CategoryReminder},
}

// separators split title from description; first hit wins.
var separators = []string{" by ", " بحلول "}

// Parse extracts structured fields from raw text. Extraction order is
// fixed: due time first (matched text removed), then priority and category
// (detected, left in place), then tags (removed), then the
// title/description split. It fails only when the remaining title is empty.
func Parse(input string, now time.Time) (Parsed, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return Parsed{}, ErrEmptyTitle
	}

	parsed := Parsed{
		Priority: model.PriorityMedium,
		Category: model.CategoryGeneral,
	}

	text, parsed.DueAt = extractTime(text, now)

	lower := strings.ToLower(text)
	for _, rule := range priorityRules {
		if strings.Contains(lower, rule.needle) {
			parsed.Priority = rule.value
			break
		}
	}
	for _, rule := range categoryRules {
		if strings.Contains(lower, rule.needle) {
			parsed.Category = rule.value
			break
		}
	}

	text, parsed.Tags = extractTags(text)

	title, description := splitTitle(text)
	if title == "" {
		return Parsed{}, ErrEmptyTitle
	}
	parsed.Title = title
	parsed.Description = description
	return parsed, nil
}

// extractTime tries the time rules in priority order: relative phrases,
// "in N units", a clock time (rolled to tomorrow when already past), then
// an explicit date. The first hit is removed from the text.
func extractTime(text string, now time.Time) (string, *time.Time) {
	lower := strings.ToLower(text)
	for _, rel := range relativePhrases {
		if idx := strings.Index(lower, rel.phrase); idx >= 0 {
			due := rel.offset(now)
			return cut(text, idx, idx+len(rel.phrase)), &due
		}
	}

	for _, re := range []*regexp.Regexp{inDurationRe, arDurationRe} {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			m := re.FindStringSubmatch(text)
			n, _ := strconv.Atoi(m[1])
			due := now.Add(durationUnit(m[2]) * time.Duration(n))
			return cut(text, loc[0], loc[1]), &due
		}
	}

	if loc := clockRe.FindStringSubmatchIndex(text); loc != nil {
		m := clockRe.FindStringSubmatch(text)
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			switch strings.ToLower(m[3]) {
			case "pm":
				if hour < 12 {
					hour += 12
				}
			case "am":
				if hour == 12 {
					hour = 0
				}
			}
			due := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if !due.After(now) {
				due = due.AddDate(0, 0, 1)
			}
			return cut(text, loc[0], loc[1]), &due
		}
	}

	if loc := dateRe.FindStringSubmatchIndex(text); loc != nil {
		m := dateRe.FindStringSubmatch(text)
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			due := time.Date(year, time.Month(month), day, 9, 0, 0, 0, now.Location())
			return cut(text, loc[0], loc[1]), &due
		}
	}

	return text, nil
}

func durationUnit(unit string) time.Duration {
	switch strings.ToLower(unit) {
	case "minute", "minutes", "min", "mins", "دقيقة", "دقائق":
		return time.Minute
	case "hour", "hours", "ساعة", "ساعات":
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

func extractTags(text string) (string, []string) {
	matches := tagRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tagRe.ReplaceAllString(text, ""), tags
}

func splitTitle(text string) (string, string) {
	lower := strings.ToLower(text)
	for _, sep := range separators {
		if idx := strings.Index(lower, sep); idx >= 0 {
			return squeeze(text[:idx]), squeeze(text[idx+len(sep):])
		}
	}
	return squeeze(text), ""
}

// cut removes text[from:to] and normalizes the surrounding whitespace.
func cut(text string, from, to int) string {
	return squeeze(text[:from] + " " + text[to:])
}

func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
