// internal/fault/tables.go
package fault

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultTables are the SAJ R6 fault words (0x6014..0x6019).
var DefaultTables = Tables{
	{
		{0x80000000, "Code 81: Lost Communication D<->C"},
		{0x40000000, "Code 82: DCI Error"},
		{0x20000000, "Code 83: Relay Error"},
		{0x10000000, "Code 84: ISO Error"},
		{0x08000000, "Code 85: GFCI Error"},
		{0x04000000, "Code 86: Master EEPROM Error"},
		{0x02000000, "Code 87: Slave EEPROM Error"},
		{0x01000000, "Code 88: Master Temperature Low"},
		{0x00800000, "Code 89: Master Temperature High"},
		{0x00400000, "Code 90: Master PV Voltage High"},
		{0x00200000, "Code 91: Master Bus Voltage High"},
		{0x00100000, "Code 92: Master Bus Voltage Low"},
		{0x00080000, "Code 93: Master Bus Imbalance"},
		{0x00040000, "Code 94: Master Grid Voltage High"},
		{0x00020000, "Code 95: Master Grid Voltage Low"},
		{0x00010000, "Code 96: Master Grid Frequency High"},
		{0x00008000, "Code 97: Master Grid Frequency Low"},
		{0x00004000, "Code 98: Master No Grid"},
		{0x00002000, "Code 99: Master Islanding"},
		{0x00001000, "Code 100: Master Current Sensor Error"},
		{0x00000800, "Code 101: Master DCI High"},
		{0x00000400, "Code 102: Master GFCI High"},
		{0x00000200, "Code 103: Master ISO Low"},
		{0x00000100, "Code 104: Master Over Current"},
	},
	{
		{0x80000000, "Code 33: Slave Lost Communication"},
		{0x40000000, "Code 34: Slave Grid Voltage High"},
		{0x20000000, "Code 35: Slave Grid Voltage Low"},
		{0x10000000, "Code 36: Slave Grid Frequency High"},
		{0x08000000, "Code 37: Slave Grid Frequency Low"},
		{0x04000000, "Code 38: Slave No Grid"},
		{0x02000000, "Code 39: Slave Bus Voltage High"},
		{0x01000000, "Code 40: Slave Bus Voltage Low"},
		{0x00800000, "Code 41: Slave Temperature High"},
		{0x00400000, "Code 42: Slave DCI High"},
		{0x00200000, "Code 43: Slave GFCI High"},
		{0x00100000, "Code 44: Slave ISO Low"},
		{0x00080000, "Code 45: Slave Relay Error"},
		{0x00040000, "Code 46: Slave Current Sensor Error"},
	},
	{
		{0x80000000, "Code 01: PV1 Reverse Connection"},
		{0x40000000, "Code 02: PV2 Reverse Connection"},
		{0x20000000, "Code 03: PV3 Reverse Connection"},
		{0x10000000, "Code 04: PV4 Reverse Connection"},
		{0x08000000, "Code 05: PV5 Reverse Connection"},
		{0x04000000, "Code 06: PV6 Reverse Connection"},
		{0x02000000, "Code 07: PV1 Over Current"},
		{0x01000000, "Code 08: PV2 Over Current"},
		{0x00800000, "Code 09: PV3 Over Current"},
		{0x00400000, "Code 10: PV4 Over Current"},
		{0x00200000, "Code 11: PV5 Over Current"},
		{0x00100000, "Code 12: PV6 Over Current"},
		{0x00080000, "Code 13: Fan Error"},
		{0x00040000, "Code 14: Arc Fault"},
		{0x00020000, "Code 15: Meter Lost Communication"},
	},
}

// tablesFile is the on-disk layout: a list of three lists.
type tablesFile struct {
	Words []Table `yaml:"fault_words"`
}

// LoadTables reads fault tables from a YAML file:
//
//	fault_words:
//	  - - {code: 0x80000000, message: "Code 81: ..."}
//	  - []
//	  - []
func LoadTables(path string) (Tables, error) {
	file, err := os.Open(path)
	if err != nil {
		return Tables{}, fmt.Errorf("fault tables: open %s: %w", path, err)
	}
	defer file.Close()

	var f tablesFile
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Tables{}, fmt.Errorf("fault tables: parse %s: %w", path, err)
	}
	if len(f.Words) != 3 {
		return Tables{}, fmt.Errorf("fault tables: %s: expected 3 fault words, got %d", path, len(f.Words))
	}

	var ts Tables
	for i := range ts {
		for j, e := range f.Words[i] {
			if e.Code == 0 {
				return Tables{}, fmt.Errorf("fault tables: word %d entry %d: code must be non-zero", i, j)
			}
		}
		ts[i] = f.Words[i]
	}
	return ts, nil
}
