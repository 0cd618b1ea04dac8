// internal/config/config.go
package config

type Config struct {
	Inverters  []InverterConfig `yaml:"inverters"`
	FaultsFile string           `yaml:"faults_file"` // optional; built-in tables when empty

	MQTT    MQTTConfig    `yaml:"mqtt"`
	Storage StorageConfig `yaml:"storage"`
	HTTP    HTTPConfig    `yaml:"http"`
	Log     LogConfig     `yaml:"log"`
}

// ---- INVERTER ----

type InverterConfig struct {
	ID       string       `yaml:"id"`
	Source   SourceConfig `yaml:"source"`
	Poll     PollConfig   `yaml:"poll"`
	Timezone string       `yaml:"timezone"` // inverter clock zone; empty = local
	Sticky   StickyConfig `yaml:"sticky"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Transport string       `yaml:"transport"` // tcp | rtu
	Endpoint  string       `yaml:"endpoint"`  // host:port (tcp)
	UnitID    uint8        `yaml:"unit_id"`
	TimeoutMs int          `yaml:"timeout_ms"`
	Serial    SerialConfig `yaml:"serial"` // rtu only
}

type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- STICKY ----

type StickyConfig struct {
	// ZeroAsMissing treats a 0 counter reading as "no reading", the way
	// some inverters report totals right after boot.
	ZeroAsMissing bool `yaml:"zero_as_missing"`
}

// ---- SINKS ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"` // empty disables MQTT
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	QoS         byte   `yaml:"qos"`
}

type StorageConfig struct {
	Path          string `yaml:"path"` // empty disables history
	RetentionDays int    `yaml:"retention_days"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"` // empty disables the API
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console | json
}
