package localhost

import (
	"fmt"
	"log/slog"

	"github.com/gammadia/hostpool/remoteaccount"
)

type Config struct {
	// Logger to use
	Logger *slog.Logger `json:"-"`
	// Number of slots in the cluster, unlimited when nil
	NumNodes *int `json:"num-nodes,omitempty"`
	// Hostname every slot account points to
	Hostname string `json:"hostname"`
	// SSH port of every slot account
	Port int `json:"port"`
	// SSH user of every slot account, the current user when empty
	User         string `json:"user,omitempty"`
	IdentityFile string `json:"identity-file,omitempty"`
	// AccountFactory builds the account of each slot, LinuxAccounts when nil
	AccountFactory remoteaccount.Factory `json:"-"`
}

func DefaultConfig() Config {
	return Config{
		Hostname: "localhost",
		Port:     remoteaccount.DefaultSSHPort,
	}
}

func Validate(config Config) error {
	if config.NumNodes != nil && *config.NumNodes < 1 {
		return fmt.Errorf("num-nodes must be greater than 0")
	}
	if config.Hostname == "" {
		return fmt.Errorf("hostname must not be empty")
	}
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
