package stats

import "regexp"

// PIIPattern names one compiled detector evaluated lazily against string
// values (spec.md §4.5 "PII detector").
type PIIPattern struct {
	Name string
	re   *regexp.Regexp
	luhn bool
}

var piiPatterns = []PIIPattern{
	{Name: "email", re: regexp.MustCompile(`^[\w.+-]+@[\w-]+\.[\w.-]+$`)},
	{Name: "phone", re: regexp.MustCompile(`^\+[1-9]\d{6,14}$`)},
	{Name: "ssn", re: regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`)},
	{Name: "credit_card", re: regexp.MustCompile(`^[\d -]{12,23}$`), luhn: true},
	{Name: "date", re: regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
	{Name: "zip", re: regexp.MustCompile(`^\d{5}(-\d{4})?$`)},
}

// PIIDetector holds per-pattern hit counters for one column.
type PIIDetector struct {
	counts map[string]uint64
}

// NewPIIDetector returns a detector with all counters zeroed.
func NewPIIDetector() *PIIDetector {
	return &PIIDetector{counts: make(map[string]uint64)}
}

// Check evaluates s against each pattern in order, stopping at the first
// match (spec.md: "first pattern to match records that value's row"). It
// returns the matched pattern name, or "" if none matched.
func (d *PIIDetector) Check(s string) string {
	for _, p := range piiPatterns {
		if !p.re.MatchString(s) {
			continue
		}
		if p.luhn && !luhnValid(s) {
			continue
		}
		d.counts[p.Name]++
		return p.Name
	}
	return ""
}

// Notes returns a "potential PII: <pattern>" note per pattern with at
// least one hit, in declaration order.
func (d *PIIDetector) Notes() []string {
	var notes []string
	for _, p := range piiPatterns {
		if d.counts[p.Name] > 0 {
			notes = append(notes, "potential PII: "+p.Name)
		}
	}
	return notes
}

// luhnValid reports whether the digits in s pass the Luhn checksum,
// ignoring spaces and dashes (spec.md: "credit-card Luhn candidates").
func luhnValid(s string) bool {
	sum := 0
	alt := false
	digits := 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c == ' ' || c == '-' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
		digits++
		d := int(c - '0')
		if alt {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		alt = !alt
	}
	return digits >= 12 && sum%10 == 0
}
