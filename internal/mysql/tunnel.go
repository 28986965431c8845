package mysql

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/mysqlschema/mysqlschema/internal/logger"
)

const defaultSSHPort = 22

// SSHConfig describes the bastion host used to reach the database
type SSHConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	// KeyFile is a private key in OpenSSH or PEM format
	KeyFile       string
	KeyPassphrase string
	// KnownHostsFile verifies the bastion's host key. Empty falls back to
	// ~/.ssh/known_hosts, and accepts any key only when that file does not exist.
	KnownHostsFile string
}

// tunnels holds the open ssh clients per registered network name. The newest
// client of a network serves new database connections.
var (
	tunnelsMu sync.Mutex
	tunnels   = map[string][]*ssh.Client{}
)

func (c *SSHConfig) addr() string {
	port := c.Port
	if port == 0 {
		port = defaultSSHPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// clientConfig builds the ssh client settings. At least one of Password and KeyFile is required.
func (c *SSHConfig) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if c.KeyFile != "" {
		key, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read ssh key %s: %w", c.KeyFile, err)
		}
		signer, err := parseSigner(key, c.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ssh key %s: %w", c.KeyFile, err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}
	if len(auth) == 0 {
		return nil, fmt.Errorf("ssh tunnel to %s needs a password or a key file", c.Host)
	}

	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
	}, nil
}

func (c *SSHConfig) hostKeyCallback() (ssh.HostKeyCallback, error) {
	file := c.KnownHostsFile
	if file == "" {
		file = defaultKnownHostsFile()
	}
	if file == "" {
		logger.Get().Warn("No known_hosts file found, ssh host key of the bastion is not verified", "host", c.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	cb, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts %s: %w", file, err)
	}
	return cb, nil
}

// defaultKnownHostsFile returns ~/.ssh/known_hosts when it exists
func defaultKnownHostsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".ssh", "known_hosts")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// networkName is the go-sql-driver network that dials through the bastion of c.
// Connections through the same bastion as the same user share one name.
func (c *SSHConfig) networkName() string {
	return "mysqlschema+ssh://" + c.User + "@" + c.addr()
}

func parseSigner(key []byte, passphrase string) (ssh.Signer, error) {
	if passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	}
	return ssh.ParsePrivateKey(key)
}

// openTunnel connects to the bastion. The returned client must be closed by the caller.
func openTunnel(ctx context.Context, c *SSHConfig) (*ssh.Client, error) {
	clientConfig, err := c.clientConfig()
	if err != nil {
		return nil, err
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return nil, fmt.Errorf("failed to reach ssh host %s: %w", c.addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, c.addr(), clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", c.addr(), err)
	}
	// Clear the handshake deadline; the tunnel lives as long as the driver
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// registerTunnel makes the ssh client available to go-sql-driver under the network
// name of c and returns that name. The dial function is registered once per name.
func registerTunnel(c *SSHConfig, client *ssh.Client) string {
	network := c.networkName()

	tunnelsMu.Lock()
	_, registered := tunnels[network]
	tunnels[network] = append(tunnels[network], client)
	tunnelsMu.Unlock()

	if !registered {
		gomysql.RegisterDialContext(network, func(ctx context.Context, addr string) (net.Conn, error) {
			client := activeTunnel(network)
			if client == nil {
				return nil, fmt.Errorf("ssh tunnel %s is closed", network)
			}
			return client.DialContext(ctx, "tcp", addr)
		})
	}
	return network
}

// unregisterTunnel removes client from its network. The network name stays
// registered with the driver and fails to dial until a new tunnel is opened.
func unregisterTunnel(network string, client *ssh.Client) {
	tunnelsMu.Lock()
	defer tunnelsMu.Unlock()

	clients := tunnels[network]
	for i, cl := range clients {
		if cl == client {
			tunnels[network] = append(clients[:i:i], clients[i+1:]...)
			return
		}
	}
}

func activeTunnel(network string) *ssh.Client {
	tunnelsMu.Lock()
	defer tunnelsMu.Unlock()

	clients := tunnels[network]
	if len(clients) == 0 {
		return nil
	}
	return clients[len(clients)-1]
}
