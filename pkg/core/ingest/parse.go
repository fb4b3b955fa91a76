package ingest

import (
	"strings"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/week"
)

// Time-slot markers used by the operations exports
const (
	markerAMStart = "05:45"
	markerAMEnd   = "09:30"
	markerSDStart = "12:30"
	markerSDEnd   = "15:00"
)

var unavailableMarkers = []string{"not available", "pending"}

// slotOffer is the availability signal of one cell
type slotOffer struct {
	am bool
	sd bool
}

func (o slotOffer) shifts() []model.Shift {
	var out []model.Shift
	if o.am {
		out = append(out, model.ShiftAM)
	}
	if o.sd {
		out = append(out, model.ShiftSD)
	}
	return out
}

// classifyAvailability reads a free-text availability cell. "05:45-09:30" is
// AM, "12:30-15:00" is SD, both together offer both shifts. Any
// not-available or pending marker wins over time markers.
func classifyAvailability(cell string) slotOffer {
	v := strings.ToLower(cell)
	for _, m := range unavailableMarkers {
		if strings.Contains(v, m) {
			return slotOffer{}
		}
	}
	return slotOffer{
		am: strings.Contains(v, markerAMStart) || strings.Contains(v, markerAMEnd),
		sd: strings.Contains(v, markerSDStart) || strings.Contains(v, markerSDEnd),
	}
}

// classifyRefusalSlot reads the shift of a call-up time slot
func classifyRefusalSlot(slot string) model.Shift {
	switch {
	case strings.Contains(slot, markerAMStart):
		return model.ShiftAM
	case strings.Contains(slot, markerSDStart):
		return model.ShiftSD
	default:
		return model.ShiftNone
	}
}

// classifyLoadingHour maps the hour a task was created to the shift it was
// loaded for: 00-04 AM, 06-12 SD, anything else unclassified
func classifyLoadingHour(hour int) model.Shift {
	switch {
	case hour >= 0 && hour <= 4:
		return model.ShiftAM
	case hour >= 6 && hour <= 12:
		return model.ShiftSD
	default:
		return model.ShiftNone
	}
}

// ParseCompositeDriver splits a "[<id>] <name>" field.
// The id is the text inside the first bracket pair, the name is whatever
// follows the closing bracket. ok is false when there is no non-empty id.
func ParseCompositeDriver(field string) (id, name string, ok bool) {
	open := strings.Index(field, "[")
	if open < 0 {
		return "", "", false
	}
	rest := field[open+1:]
	end := strings.Index(rest, "]")
	if end < 0 {
		return "", "", false
	}
	id = model.CanonicalID(rest[:end])
	if id == "" {
		return "", "", false
	}
	name = strings.TrimSpace(rest[end+1:])
	return id, name, true
}

// parseSlotDate reads the date from the first 10 characters of a time slot
// such as "2026-01-28 12:30 - 15:00"
func parseSlotDate(slot string) (string, bool) {
	slot = strings.TrimSpace(slot)
	if len(slot) < 10 {
		return "", false
	}
	d, ok := week.ParseDate(slot[:10])
	if !ok {
		return "", false
	}
	return week.FormatDate(d), true
}

// digitsPrefix keeps the first n digits of a postal code or cluster label
func digitsPrefix(s string, n int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == n {
				break
			}
		}
	}
	return b.String()
}
