package config

// Config contains all application settings
type Config struct {
	BindPort      int    `mapstructure:"PORT" yaml:"port"`
	BindHost      string `mapstructure:"HOST" yaml:"host"`
	DatabaseURL   string `mapstructure:"DATABASE_URL" yaml:"database_url"`
	NATSServerURL string `mapstructure:"NATS_URL" yaml:"nats_url"`
	StorageDriver string `mapstructure:"STORAGE_DRIVER" yaml:"storage_driver"`
	LogLevel      string `mapstructure:"LOG_LEVEL" yaml:"log_level"`

	// Device channel settings. The prefix is used by the identity resolver
	// to tolerate operator-entered short device IDs.
	DeviceIDPrefix string `mapstructure:"DEVICE_ID_PREFIX" yaml:"device_id_prefix"`
	SessionTimeout int    `mapstructure:"SESSION_TIMEOUT" yaml:"session_timeout"`
	PingInterval   int    `mapstructure:"PING_INTERVAL" yaml:"ping_interval"`

	// Liveness sweeper cadence. The stale threshold is coarser than the
	// transport keep-alive and covers silent failures the transport's own
	// timeout missed.
	SweepInterval  int `mapstructure:"SWEEP_INTERVAL" yaml:"sweep_interval"`
	StaleThreshold int `mapstructure:"STALE_THRESHOLD" yaml:"stale_threshold"`

	// Dispatch settings
	DefaultPulseMs int `mapstructure:"DEFAULT_PULSE_MS" yaml:"default_pulse_ms"`
	LogPageSize    int `mapstructure:"LOG_PAGE_SIZE" yaml:"log_page_size"`

	// Version
	BuildVersion string `yaml:"-"`
	BuildHash    string `yaml:"-"`
	BuildTime    string `yaml:"-"`
}
