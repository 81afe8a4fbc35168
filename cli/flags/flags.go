package flags

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	Config          = "config"
	LogFormat       = "log-format"
	LogLevel        = "log-level"
	LogSource       = "log-source"
	NumNodes        = "num-nodes"
	Hostname        = "hostname"
	SSHUser         = "ssh-user"
	SSHPort         = "ssh-port"
	SSHIdentityFile = "ssh-identity-file"
)

func Register(flags *flag.FlagSet) {
	flags.String(Config, "", "configuration file (json, yaml, toml)")
	flags.String(LogFormat, "text", "log format (json, text)")
	flags.String(LogLevel, "WARN", "minimum log level")
	flags.Bool(LogSource, false, "add source code location to logs")
	flags.Int(NumNodes, 0, "number of slots in the cluster (0 for unlimited)")
	flags.String(Hostname, "localhost", "hostname every slot points to")
	flags.String(SSHUser, "", "ssh username of the slots (defaults to the current user)")
	flags.Int(SSHPort, 22, "ssh port of the slots")
	flags.String(SSHIdentityFile, "", "ssh private key used to reach the slots")
}

// Bind makes every flag available through viper, overridable with HOSTPOOL_* environment
// variables and the configuration file.
func Bind(flags *flag.FlagSet) error {
	viper.SetEnvPrefix("hostpool")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := viper.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if file := viper.GetString(Config); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file '%s': %w", file, err)
		}
	}
	return nil
}
