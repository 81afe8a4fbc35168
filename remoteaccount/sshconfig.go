package remoteaccount

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
)

const DefaultSSHPort = 22

// SSHConfig describes how to reach an account, mirroring the relevant ssh_config keywords.
type SSHConfig struct {
	// Host is the alias the account is known by (ssh_config "Host")
	Host string `json:"host" yaml:"host"`
	// Hostname is the address actually dialed
	Hostname     string `json:"hostname" yaml:"hostname"`
	User         string `json:"user,omitempty" yaml:"user,omitempty"`
	Port         int    `json:"port" yaml:"port"`
	IdentityFile string `json:"identity-file,omitempty" yaml:"identity-file,omitempty"`
}

func (c SSHConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultSSHPort
	}
	return net.JoinHostPort(c.Hostname, strconv.Itoa(port))
}

// String renders the config as an ssh_config Host block.
func (c SSHConfig) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Host %s\n", c.Host)
	fmt.Fprintf(&b, "  Hostname %s\n", c.Hostname)
	if c.User != "" {
		fmt.Fprintf(&b, "  User %s\n", c.User)
	}
	fmt.Fprintf(&b, "  Port %d\n", c.portOrDefault())
	if c.IdentityFile != "" {
		fmt.Fprintf(&b, "  IdentityFile %s\n", c.IdentityFile)
	}
	return b.String()
}

// Command returns the argv of an ssh invocation running args on the account.
func (c SSHConfig) Command(args ...string) []string {
	target := c.Hostname
	if c.User != "" {
		target = fmt.Sprintf("%s@%s", c.User, c.Hostname)
	}

	argv := []string{"ssh", target, "-p", strconv.Itoa(c.portOrDefault()), "-o", "BatchMode=yes"}
	if c.IdentityFile != "" {
		argv = append(argv, "-i", c.IdentityFile)
	}
	if len(args) > 0 {
		argv = append(argv, "--")
		argv = append(argv, args...)
	}
	return argv
}

// CommandLine is Command rendered as a shell-escaped string.
func (c SSHConfig) CommandLine(args ...string) string {
	return shellescape.QuoteCommand(c.Command(args...))
}

func (c SSHConfig) portOrDefault() int {
	if c.Port == 0 {
		return DefaultSSHPort
	}
	return c.Port
}
