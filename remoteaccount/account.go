// Package remoteaccount models an account on a machine reachable over SSH.
package remoteaccount

import "errors"

var ErrAccountClosed = errors.New("account is closed")

// RemoteAccount is an account on a reachable machine. Implementations own their
// connection resources until Close is called; the account must not be used afterwards.
type RemoteAccount interface {
	Name() string
	OS() OS
	SSHConfig() SSHConfig
	Close() error
}

// Factory builds an account for the given config.
type Factory func(SSHConfig) (RemoteAccount, error)
