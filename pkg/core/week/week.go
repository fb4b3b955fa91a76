// Package week derives and reconciles ISO week keys ("YYYY-W##").
//
// Older uploads stored bare ISO week numbers; newer ones store the canonical
// string. Both have to line up around a year turnover, so bare numbers take
// their year from the row's own date.
package week

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/rodizio/pkg/table"
)

// Column is the persisted week key column
const Column = "week_key"

// DateColumn is the persisted record date column
const DateColumn = "date"

// legacy column names written by the first generation of uploads
var (
	legacyWeekColumns = []string{"semana", "week"}
	legacyDateColumns = []string{"data"}
)

var canonicalPattern = regexp.MustCompile(`^(\d{4})-[Ww](\d{1,2})$`)

// Key returns the canonical ISO week key of a date
func Key(t time.Time) string {
	year, wk := t.ISOWeek()
	return format(year, wk)
}

func format(year, wk int) string {
	return fmt.Sprintf("%04d-W%02d", year, wk)
}

// Normalize converts a raw week value into the canonical "YYYY-W##" form.
// Bare week numbers take the ISO year of date when it parses, else the
// calendar year of now. Returns false when the value cannot be normalized.
func Normalize(raw, date string, now time.Time) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if m := canonicalPattern.FindStringSubmatch(raw); m != nil {
		year, _ := strconv.Atoi(m[1])
		wk, _ := strconv.Atoi(m[2])
		if !validWeek(wk) {
			return "", false
		}
		return format(year, wk), true
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil || num != math.Trunc(num) {
		return "", false
	}
	wk := int(num)
	if !validWeek(wk) {
		return "", false
	}

	year := now.Year()
	if d, ok := ParseDate(date); ok {
		year, _ = d.ISOWeek()
	}
	return format(year, wk), true
}

func validWeek(wk int) bool {
	return wk >= 1 && wk <= 53
}

// NormalizeTable returns a copy of t whose week_key column holds canonical
// keys. Legacy "semana"/"week" and "data" columns are read when the current
// names are absent. Rows that cannot be normalized get an empty key.
func NormalizeTable(t *table.Table, now time.Time) *table.Table {
	out := t.Clone()
	if out.IsEmpty() {
		return out
	}

	weekCol := firstPresent(out, Column, legacyWeekColumns...)
	dateCol := firstPresent(out, DateColumn, legacyDateColumns...)

	for i := range out.Rows {
		raw := out.Get(i, weekCol)
		if raw == "" {
			// Derive the key straight from the date when the week cell is blank
			if d, ok := ParseDate(out.Get(i, dateCol)); ok {
				out.Set(i, Column, Key(d))
				continue
			}
		}
		key, _ := Normalize(raw, out.Get(i, dateCol), now)
		out.Set(i, Column, key)
	}

	return out
}

func firstPresent(t *table.Table, preferred string, fallbacks ...string) string {
	if t.Has(preferred) {
		return preferred
	}
	for _, c := range fallbacks {
		if t.Has(c) {
			return c
		}
	}
	return preferred
}

// Filter returns the rows of a normalized table that belong to the given week
func Filter(t *table.Table, key string) *table.Table {
	return t.Filter(func(i int) bool {
		return key != "" && t.Get(i, Column) == key
	})
}

// Keys returns the distinct non-empty week keys of a normalized table, sorted
func Keys(t *table.Table) []string {
	seen := make(map[string]bool)
	var keys []string
	for i := range t.Rows {
		k := t.Get(i, Column)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
