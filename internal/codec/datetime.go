// internal/codec/datetime.go
package codec

import (
	"fmt"
	"time"
)

// DatetimeWords is the number of registers holding an inverter clock value.
const DatetimeWords = 4

// DecodeError reports a register value that cannot be a valid reading.
type DecodeError struct {
	Field  string
	Words  []uint16
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s (words=%#04x)", e.Field, e.Reason, e.Words)
}

// ParseDatetime decodes the inverter clock.
//
//	word0: year
//	word1: month<<8 | day
//	word2: hour<<8  | minute
//	word3: second<<8
//
// The clock carries no zone; loc supplies it (nil means time.Local).
func ParseDatetime(words []uint16, loc *time.Location) (time.Time, error) {
	if len(words) < DatetimeWords {
		return time.Time{}, &DecodeError{
			Field:  "datetime",
			Words:  words,
			Reason: fmt.Sprintf("need %d words, got %d", DatetimeWords, len(words)),
		}
	}
	if loc == nil {
		loc = time.Local
	}

	year := int(words[0])
	month := int(words[1] >> 8)
	day := int(words[1] & 0xFF)
	hour := int(words[2] >> 8)
	minute := int(words[2] & 0xFF)
	second := int(words[3] >> 8)

	if year < 1 || year > 9999 {
		return time.Time{}, &DecodeError{Field: "datetime", Words: words[:DatetimeWords], Reason: fmt.Sprintf("year %d out of range", year)}
	}

	// time.Date normalizes overflow (month 13, day 32, hour 24 ...).
	// Any normalization means the registers did not hold a real calendar value.
	// Checked in UTC so a wall time inside a DST gap of loc stays valid.
	u := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if u.Year() != year || int(u.Month()) != month || u.Day() != day ||
		u.Hour() != hour || u.Minute() != minute || u.Second() != second {
		return time.Time{}, &DecodeError{
			Field:  "datetime",
			Words:  words[:DatetimeWords],
			Reason: fmt.Sprintf("invalid calendar value %04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, second),
		}
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)
	return t, nil
}
