// Package config describes one export: its root path on the host file
// system, the umask applied to newly created objects, the owning uid/gid
// used when a creating operation doesn't specify one, and which optional
// capabilities are turned on. Values are read with viper and bound to
// pflag/cobra flags so a flag, an environment variable or a YAML file can
// each supply them, the same layering gcsfuse's cfg package uses for its
// mount configuration.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the decode target for one export's settings.
type Config struct {
	RootPath string `mapstructure:"root-path" yaml:"root-path"`
	Umask    Octal  `mapstructure:"umask" yaml:"umask"`
	UID      int    `mapstructure:"uid" yaml:"uid"`
	GID      int    `mapstructure:"gid" yaml:"gid"`

	Capabilities CapabilityConfig `mapstructure:"capabilities" yaml:"capabilities"`
	Logging      LogConfig        `mapstructure:"logging" yaml:"logging"`
}

// LogConfig controls where fsal-exportd's log output goes. An empty
// FilePath keeps logging on stderr; otherwise output is routed through a
// rotating file sink sized by the remaining fields.
type LogConfig struct {
	FilePath   string `mapstructure:"file-path" yaml:"file-path"`
	MaxSizeMB  int    `mapstructure:"max-size-mb" yaml:"max-size-mb"`
	MaxBackups int    `mapstructure:"max-backups" yaml:"max-backups"`
	MaxAgeDays int    `mapstructure:"max-age-days" yaml:"max-age-days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// CapabilityConfig toggles the optional capabilities an export advertises.
type CapabilityConfig struct {
	LinkSupport     bool `mapstructure:"link-support" yaml:"link-support"`
	SymlinkSupport  bool `mapstructure:"symlink-support" yaml:"symlink-support"`
	ChownRestricted bool `mapstructure:"chown-restricted" yaml:"chown-restricted"`
}

// Octal is a file mode read from a string such as "0755" rather than a
// plain decimal, matching the on-disk notation admins actually write.
type Octal uint32

func (o Octal) String() string {
	return fmt.Sprintf("%04o", uint32(o))
}

// YAML renders cfg the same shape a --config-file would have been read
// from, for operators who started from flags/env and want to save the
// resolved settings back to a file.
func (cfg Config) YAML() (string, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// BindFlags registers the command-line surface for Config and wires each
// flag into viper under the same key BindFlags uses to bind it, so
// flag > env > file precedence falls out of viper's own resolution order.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.String("root-path", "", "Absolute path to the directory this export serves.")
	flagSet.String("umask", "0022", "Octal umask applied to newly created objects.")
	flagSet.Int("uid", 0, "Default owning uid for creating operations that don't specify one.")
	flagSet.Int("gid", 0, "Default owning gid for creating operations that don't specify one.")
	flagSet.Bool("capabilities.link-support", false, "Advertise support for link().")
	flagSet.Bool("capabilities.symlink-support", true, "Advertise support for symlink()/readlink().")
	flagSet.Bool("capabilities.chown-restricted", true, "Restrict ownership changes to root.")
	flagSet.String("logging.file-path", "", "Path to a rotating log file. Empty logs to stderr.")
	flagSet.Int("logging.max-size-mb", 100, "Log file size in megabytes before it is rotated.")
	flagSet.Int("logging.max-backups", 5, "Number of rotated log files to retain.")
	flagSet.Int("logging.max-age-days", 28, "Days to retain rotated log files.")
	flagSet.Bool("logging.compress", true, "Gzip rotated log files.")

	for _, name := range []string{
		"root-path", "umask", "uid", "gid",
		"capabilities.link-support", "capabilities.symlink-support", "capabilities.chown-restricted",
		"logging.file-path", "logging.max-size-mb", "logging.max-backups", "logging.max-age-days", "logging.compress",
	} {
		if err := viper.BindPFlag(name, flagSet.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// Decode builds a Config from viper's current state, applying the
// Octal-from-string decode hook so "umask: \"0022\"" in a YAML file
// parses as base-8 rather than base-10.
func Decode() (Config, error) {
	var cfg Config
	decodeHook := decodeOctalHook()
	err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHook))
	return cfg, err
}
