// internal/decoder/deviceinfo.go
package decoder

import "github.com/tamzrod/saj-telemetry/internal/telemetry"

// Device info block geometry.
const (
	DeviceInfoAddress uint16 = 0x8F00
	DeviceInfoWords          = 29
)

// DeviceInfoFields is the device info layout.
var DeviceInfoFields = []Field{
	{Key: "type", Offset: 0, Rule: RuleU16},
	{Key: "subtype", Offset: 1, Rule: RuleScaledU16, Exp: -3},
	{Key: "commproversion", Offset: 2, Rule: RuleScaledU16, Exp: -3},
	{Key: "sn", Offset: 3, Rule: RuleASCII, Width: 10},
	{Key: "pc", Offset: 13, Rule: RuleASCII, Width: 10},
	{Key: "dv", Offset: 23, Rule: RuleVersionText},
	{Key: "mcv", Offset: 24, Rule: RuleVersionText},
	{Key: "scv", Offset: 25, Rule: RuleVersionText},
	{Key: "disphwversion", Offset: 26, Rule: RuleVersionText},
	{Key: "ctrlhwversion", Offset: 27, Rule: RuleVersionText},
	{Key: "powerhwversion", Offset: 28, Rule: RuleVersionText},
}

// DecodeDeviceInfo decodes the inverter identity block.
// A block of the wrong length yields an empty snapshot and ErrBlockLength.
func DecodeDeviceInfo(regs []uint16) (telemetry.Snapshot, error) {
	out := telemetry.Snapshot{}
	if err := checkLength("device info", regs, DeviceInfoWords); err != nil {
		return out, err
	}

	decodeFields(DeviceInfoFields, regs, out)
	return out, nil
}
