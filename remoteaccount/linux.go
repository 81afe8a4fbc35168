package remoteaccount

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammadia/hostpool/remoteaccount/internal"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

const (
	dialTimeout       = 5 * time.Second
	keepaliveInterval = 30 * time.Second
)

// LinuxAccount is an account on a Linux machine. The SSH connection is only
// established on the first call to Client.
type LinuxAccount struct {
	config    SSHConfig
	backoff   internal.Backoff
	keepalive time.Duration
	log       *slog.Logger

	closed atomic.Bool
	done   chan struct{}
	mutex  sync.Mutex
	ssh    *ssh.Client
}

// LinuxAccount implements RemoteAccount
var _ RemoteAccount = (*LinuxAccount)(nil)

func NewLinuxAccount(config SSHConfig, logger *slog.Logger) *LinuxAccount {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LinuxAccount{
		config:    config,
		backoff:   internal.DefaultBackoff,
		keepalive: keepaliveInterval,
		log:       logger.With("account", config.Host),
		done:      make(chan struct{}),
	}
}

// LinuxFactory returns a Factory building LinuxAccounts logging to logger.
func LinuxFactory(logger *slog.Logger) Factory {
	return func(config SSHConfig) (RemoteAccount, error) {
		return NewLinuxAccount(config, logger), nil
	}
}

func (a *LinuxAccount) Name() string {
	return a.config.Host
}

func (*LinuxAccount) OS() OS {
	return Linux
}

func (a *LinuxAccount) SSHConfig() SSHConfig {
	return a.config
}

func (a *LinuxAccount) String() string {
	return fmt.Sprintf("%s (%s)", a.config.Host, a.config.Addr())
}

// Client returns the SSH client of the account, connecting first if needed.
// The connection is dialed without holding the account lock, so Close never
// waits for a dial in progress; it cancels it instead.
func (a *LinuxAccount) Client(ctx context.Context) (*ssh.Client, error) {
	if client, err := a.current(); client != nil || err != nil {
		return client, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-a.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	client, err := a.dial(ctx)
	if err != nil {
		if a.closed.Load() {
			return nil, ErrAccountClosed
		}
		return nil, fmt.Errorf("failed to connect to '%s': %w", a.config.Addr(), err)
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()

	switch {
	case a.closed.Load():
		_ = client.Close()
		return nil, ErrAccountClosed
	case a.ssh != nil:
		// Another caller connected first
		_ = client.Close()
		return a.ssh, nil
	}

	a.ssh = client
	go a.keepaliveLoop(client)

	a.log.Debug("Connected to account", "address", a.config.Addr())
	return client, nil
}

func (a *LinuxAccount) current() (*ssh.Client, error) {
	if a.closed.Load() {
		return nil, ErrAccountClosed
	}

	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.ssh, nil
}

func (a *LinuxAccount) dial(ctx context.Context) (*ssh.Client, error) {
	clientConfig, agentConn, err := a.clientConfig()
	if err != nil {
		return nil, err
	}
	if agentConn != nil {
		// Agent signers are only needed during the handshake
		defer agentConn.Close()
	}

	return internal.RetryResult(ctx, a.backoff, func(attempt int) (*ssh.Client, error) {
		client, err := dialContext(ctx, a.config.Addr(), clientConfig)
		if err != nil {
			a.log.Debug("Connection to account refused", "attempt", attempt, "error", err)
		}
		return client, err
	})
}

func (a *LinuxAccount) clientConfig() (*ssh.ClientConfig, net.Conn, error) {
	var auth []ssh.AuthMethod

	if a.config.IdentityFile != "" {
		key, err := os.ReadFile(a.config.IdentityFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read identity file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse identity file '%s': %w", a.config.IdentityFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}

	var agentConn net.Conn
	if socket := os.Getenv("SSH_AUTH_SOCK"); socket != "" {
		if conn, err := net.Dial("unix", socket); err != nil {
			a.log.Debug("Unable to reach ssh-agent", "error", err)
		} else {
			agentConn = conn
			auth = append(auth, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	user := a.config.User
	if user == "" {
		user = os.Getenv("USER")
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		Timeout:         dialTimeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}, agentConn, nil
}

func dialContext(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// keepaliveLoop pings the server until the account is closed or a ping fails.
func (a *LinuxAccount) keepaliveLoop(client *ssh.Client) {
	ticker := time.NewTicker(a.keepalive)
	defer ticker.Stop()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.C:
			if _, _, err := client.SendRequest("keepalive@hostpool", true, nil); err != nil {
				a.log.Warn("SSH keepalive failed", "error", err)
				return
			}
		}
	}
}

// Close tears down the SSH connection, if any. It is safe to call more than once.
func (a *LinuxAccount) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(a.done)

	a.mutex.Lock()
	defer a.mutex.Unlock()

	var err error
	if a.ssh != nil {
		err = a.ssh.Close()
		a.ssh = nil
	}

	a.log.Debug("Closed account")
	return err
}
