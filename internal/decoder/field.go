// internal/decoder/field.go
package decoder

import (
	"errors"
	"fmt"

	"github.com/tamzrod/saj-telemetry/internal/codec"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// ErrBlockLength marks a block that did not come back with the expected
// register count. It is a soft failure: the block decodes to nothing.
var ErrBlockLength = errors.New("decoder: unexpected block length")

// Sentinel is the raw register value meaning "no reading".
const Sentinel uint16 = 0xFFFF

// Rule selects how a field is decoded from the block.
type Rule uint8

const (
	RuleU16          Rule = iota // raw unsigned word
	RuleS16                      // signed word
	RuleU32                      // hi/lo pair
	RuleS32                      // signed hi/lo pair
	RuleScaledU16                // word * 10^Exp
	RuleScaledS16                // signed word * 10^Exp
	RuleScaledU32                // hi/lo pair * 10^Exp
	RuleGuardedU16               // word, unavailable on Sentinel
	RuleGuardedScaled            // word * 10^Exp, unavailable on Sentinel
	RuleVersionText              // word * 0.001 as fixed text, unavailable on Sentinel
	RuleASCII                    // ASCII pairs over Width words, unavailable if first word is 0
)

// Field is one static offset -> key rule.
type Field struct {
	Key    string
	Offset int
	Rule   Rule
	Exp    int32 // power-of-ten scale for scaled rules
	Width  int   // word count for RuleASCII
}

// words reports how many registers the field consumes.
func (f Field) words() int {
	switch f.Rule {
	case RuleU32, RuleS32, RuleScaledU32:
		return 2
	case RuleASCII:
		return f.Width
	}
	return 1
}

func (f Field) decode(regs []uint16) telemetry.Value {
	w := regs[f.Offset]

	switch f.Rule {
	case RuleU16:
		return telemetry.Int(int64(w))
	case RuleS16:
		return telemetry.Int(int64(codec.Signed16(w)))
	case RuleU32:
		return telemetry.Int(int64(codec.Combine32(w, regs[f.Offset+1])))
	case RuleS32:
		return telemetry.Int(int64(codec.Signed32(codec.Combine32(w, regs[f.Offset+1]))))
	case RuleScaledU16:
		return scaled(int64(w), f.Exp)
	case RuleScaledS16:
		return scaled(int64(codec.Signed16(w)), f.Exp)
	case RuleScaledU32:
		return scaled(int64(codec.Combine32(w, regs[f.Offset+1])), f.Exp)
	case RuleGuardedU16:
		if w == Sentinel {
			return telemetry.Unavailable()
		}
		return telemetry.Int(int64(w))
	case RuleGuardedScaled:
		if w == Sentinel {
			return telemetry.Unavailable()
		}
		return scaled(int64(w), f.Exp)
	case RuleVersionText:
		if w == Sentinel {
			return telemetry.Unavailable()
		}
		return telemetry.Text(codec.Scaled(int64(w), -3).StringFixed(3))
	case RuleASCII:
		if w == 0 {
			return telemetry.Unavailable()
		}
		return telemetry.Text(codec.ASCIIPairs(regs[f.Offset : f.Offset+f.Width]))
	}

	panic(fmt.Sprintf("decoder: unknown rule %d for %s", f.Rule, f.Key))
}

func scaled(raw int64, exp int32) telemetry.Value {
	return telemetry.Decimal(codec.Scaled(raw, exp), -exp)
}

// decodeFields applies a field table to a block already checked for length.
func decodeFields(fields []Field, regs []uint16, out telemetry.Snapshot) {
	for _, f := range fields {
		out[f.Key] = f.decode(regs)
	}
}

func checkLength(block string, regs []uint16, want int) error {
	if len(regs) != want {
		return fmt.Errorf("%w: %s block got %d words, want %d", ErrBlockLength, block, len(regs), want)
	}
	return nil
}
