package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// FileName is the settings file inside the config directory.
	FileName = "guardflash.toml"
	// Section is the single table the settings live under.
	Section = "Settings"
	// EnvPrefix is prepended to environment overrides,
	// e.g. GUARDFLASH_SETTINGS_SERIAL_PORT.
	EnvPrefix = "GUARDFLASH"
)

// Persisted key names.
const (
	KeyToolPath     = "STM32_DIR"
	KeyFirmwarePath = "ELF_FILE"
	KeySerialPort   = "SERIAL_PORT"
)

// Config holds the operator's three settings.
type Config struct {
	ToolPath     string `toml:"STM32_DIR"`
	FirmwarePath string `toml:"ELF_FILE"`
	SerialPort   string `toml:"SERIAL_PORT"`
}

type file struct {
	Settings Config `toml:"Settings"`
}

// DefaultDir returns the per-user config directory, or "." when the
// platform has none.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "guardflash")
	}
	return "."
}

// Path returns the settings file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the settings in dir. A missing or unreadable file yields
// empty values; environment overrides apply either way.
func Load(dir string) Config {
	v := viper.New()
	v.SetConfigFile(Path(dir))
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	return Config{
		ToolPath:     v.GetString(key(KeyToolPath)),
		FirmwarePath: v.GetString(key(KeyFirmwarePath)),
		SerialPort:   v.GetString(key(KeySerialPort)),
	}
}

// Save overwrites the settings file in dir with exactly cfg.
func Save(cfg Config, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(file{Settings: cfg})
	if err != nil {
		return err
	}

	return os.WriteFile(Path(dir), data, 0o644)
}

func key(name string) string {
	return strings.ToLower(Section + "." + name)
}
