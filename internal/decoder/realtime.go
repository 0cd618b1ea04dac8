// internal/decoder/realtime.go
package decoder

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/saj-telemetry/internal/codec"
	"github.com/tamzrod/saj-telemetry/internal/fault"
	"github.com/tamzrod/saj-telemetry/internal/telemetry"
)

// Realtime block geometry.
const (
	RealtimeAddress uint16 = 0x6000
	RealtimeWords          = 99
)

// Offsets handled outside the field table.
const (
	offsetTime     = 0
	offsetReserved = 18
	offsetMPVMode  = 19
	offsetFaults   = 20
)

// ExcludedOffsets are PV temperature words kept out of the snapshot.
var ExcludedOffsets = []int{61, 62, 63, 64}

// DeviceStatuses labels the mpvmode register.
var DeviceStatuses = map[uint16]string{
	1: "Waiting",
	2: "Normal",
	3: "Fault",
}

// RealtimeFields is the realtime layout, minus time, mpvmode and faults.
var RealtimeFields = []Field{
	// cumulative counters
	{Key: "totalenergy", Offset: 4, Rule: RuleScaledU32, Exp: -2},
	{Key: "yearenergy", Offset: 6, Rule: RuleScaledU32, Exp: -2},
	{Key: "monthenergy", Offset: 8, Rule: RuleScaledU32, Exp: -2},
	{Key: "todayenergy", Offset: 10, Rule: RuleScaledU32, Exp: -2},
	{Key: "totalhour", Offset: 12, Rule: RuleScaledU32, Exp: -1},
	{Key: "todayhour", Offset: 14, Rule: RuleScaledU16, Exp: -1},

	{Key: "errorcount", Offset: 15, Rule: RuleU16},
	{Key: "errorsn", Offset: 16, Rule: RuleU16},
	{Key: "settingdatasn", Offset: 17, Rule: RuleU16},
	// 18 reserved, 19 mpvmode, 20..25 fault words
	{Key: "conntime", Offset: 26, Rule: RuleU16},

	{Key: "energy", Offset: 27, Rule: RuleScaledU32, Exp: -2},
	{Key: "power", Offset: 29, Rule: RuleU32},
	{Key: "qpower", Offset: 31, Rule: RuleS32},
	{Key: "pf", Offset: 33, Rule: RuleScaledS16, Exp: -3},

	{Key: "l1volt", Offset: 34, Rule: RuleScaledU16, Exp: -1},
	{Key: "l1curr", Offset: 35, Rule: RuleScaledU16, Exp: -2},
	{Key: "l1freq", Offset: 36, Rule: RuleScaledU16, Exp: -2},
	{Key: "l1dci", Offset: 37, Rule: RuleS16},
	{Key: "l1power", Offset: 38, Rule: RuleU16},
	{Key: "l1pf", Offset: 39, Rule: RuleScaledS16, Exp: -3},

	{Key: "l2volt", Offset: 40, Rule: RuleScaledU16, Exp: -1},
	{Key: "l2curr", Offset: 41, Rule: RuleScaledU16, Exp: -2},
	{Key: "l2freq", Offset: 42, Rule: RuleScaledU16, Exp: -2},
	{Key: "l2dci", Offset: 43, Rule: RuleS16},
	{Key: "l2power", Offset: 44, Rule: RuleU16},
	{Key: "l2pf", Offset: 45, Rule: RuleScaledS16, Exp: -3},

	{Key: "l3volt", Offset: 46, Rule: RuleScaledU16, Exp: -1},
	{Key: "l3curr", Offset: 47, Rule: RuleScaledU16, Exp: -2},
	{Key: "l3freq", Offset: 48, Rule: RuleScaledU16, Exp: -2},
	{Key: "l3dci", Offset: 49, Rule: RuleS16},
	{Key: "l3power", Offset: 50, Rule: RuleU16},
	{Key: "l3pf", Offset: 51, Rule: RuleScaledS16, Exp: -3},

	{Key: "nevolt", Offset: 52, Rule: RuleScaledU16, Exp: -1},
	{Key: "gfci", Offset: 53, Rule: RuleS16},
	{Key: "busvolt", Offset: 54, Rule: RuleScaledU16, Exp: -1},
	{Key: "busvoltm", Offset: 55, Rule: RuleScaledU16, Exp: -1},

	{Key: "invtempc1", Offset: 56, Rule: RuleScaledS16, Exp: -1},
	{Key: "invtempcl1", Offset: 57, Rule: RuleScaledS16, Exp: -1},
	{Key: "invtempcl2", Offset: 58, Rule: RuleScaledS16, Exp: -1},
	{Key: "invtempcl3", Offset: 59, Rule: RuleScaledS16, Exp: -1},
	{Key: "invtempccavity", Offset: 60, Rule: RuleScaledS16, Exp: -1},
	// 61..64 PV temperatures, not emitted

	{Key: "iso1", Offset: 65, Rule: RuleU16},
	{Key: "iso2", Offset: 66, Rule: RuleU16},
	{Key: "iso3", Offset: 67, Rule: RuleU16},
	{Key: "iso4", Offset: 68, Rule: RuleU16},

	// per-string PV channels: 0xFFFF means no string fitted
	{Key: "pv1volt", Offset: 69, Rule: RuleGuardedScaled, Exp: -1},
	{Key: "pv1curr", Offset: 70, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv1power", Offset: 71, Rule: RuleGuardedU16},
	{Key: "pv2volt", Offset: 72, Rule: RuleGuardedScaled, Exp: -1},
	{Key: "pv2curr", Offset: 73, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv2power", Offset: 74, Rule: RuleGuardedU16},
	{Key: "pv3volt", Offset: 75, Rule: RuleGuardedScaled, Exp: -1},
	{Key: "pv3curr", Offset: 76, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv3power", Offset: 77, Rule: RuleGuardedU16},
	{Key: "pv4volt", Offset: 78, Rule: RuleGuardedScaled, Exp: -1},
	{Key: "pv4curr", Offset: 79, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv4power", Offset: 80, Rule: RuleGuardedU16},
	{Key: "pv5volt", Offset: 81, Rule: RuleGuardedScaled, Exp: -1},
	{Key: "pv5curr", Offset: 82, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv5power", Offset: 83, Rule: RuleGuardedU16},
	{Key: "pv6volt", Offset: 84, Rule: RuleGuardedScaled, Exp: -1},
	{Key: "pv6curr", Offset: 85, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv6power", Offset: 86, Rule: RuleGuardedU16},

	{Key: "pv1strcurr1", Offset: 87, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv1strcurr2", Offset: 88, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv2strcurr1", Offset: 89, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv2strcurr2", Offset: 90, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv3strcurr1", Offset: 91, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv3strcurr2", Offset: 92, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv4strcurr1", Offset: 93, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv4strcurr2", Offset: 94, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv5strcurr1", Offset: 95, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv5strcurr2", Offset: 96, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv6strcurr1", Offset: 97, Rule: RuleGuardedScaled, Exp: -2},
	{Key: "pv6strcurr2", Offset: 98, Rule: RuleGuardedScaled, Exp: -2},
}

// Realtime decodes the realtime block.
type Realtime struct {
	Faults   fault.Tables
	Location *time.Location
	Log      zerolog.Logger
}

// NewRealtime returns a decoder with the built-in fault tables.
func NewRealtime(loc *time.Location, log zerolog.Logger) *Realtime {
	return &Realtime{
		Faults:   fault.DefaultTables,
		Location: loc,
		Log:      log,
	}
}

// Decode decodes one realtime block.
// Wrong length: empty snapshot and ErrBlockLength.
// Malformed clock: empty snapshot and *codec.DecodeError; the whole block
// is treated as a corrupted read.
func (d *Realtime) Decode(regs []uint16) (telemetry.Snapshot, error) {
	out := telemetry.Snapshot{}
	if err := checkLength("realtime", regs, RealtimeWords); err != nil {
		return out, err
	}

	ts, err := codec.ParseDatetime(regs[offsetTime:offsetTime+codec.DatetimeWords], d.Location)
	if err != nil {
		return telemetry.Snapshot{}, err
	}
	out["time"] = telemetry.Time(ts)

	mode := regs[offsetMPVMode]
	if label, ok := DeviceStatuses[mode]; ok {
		out["mpvmode"] = telemetry.Status(int64(mode), label)
	} else {
		out["mpvmode"] = telemetry.Unavailable()
	}

	words := [3]uint32{
		codec.Combine32(regs[offsetFaults], regs[offsetFaults+1]),
		codec.Combine32(regs[offsetFaults+2], regs[offsetFaults+3]),
		codec.Combine32(regs[offsetFaults+4], regs[offsetFaults+5]),
	}
	msgs := d.Faults.DecodeAll(words)
	out["faultmsg"] = telemetry.Text(fault.Join(msgs))
	if len(msgs) > 0 {
		d.Log.Error().Strs("faults", msgs).Msg("inverter reports faults")
	}

	decodeFields(RealtimeFields, regs, out)
	return out, nil
}
