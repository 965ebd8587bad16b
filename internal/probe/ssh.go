package probe

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/crypto/ssh"
	"topomon/internal/domain"
	"topomon/internal/inventory"
)

// Commands issued on each device. Output formats are parsed in ssh_parse.go.
const (
	cmdLLDPNeighbors = "lldpcli show neighbors -f keyvalue"
	cmdIPNeighbors   = "ip neighbor show"
	cmdIPRoutes      = "ip route show"
)

// SSHCredentials holds authentication material for the SSH probe.
// Either PrivateKey or Password must be set; PrivateKey wins when both are.
type SSHCredentials struct {
	Username   string
	Password   string
	PrivateKey string
	Passphrase string
}

// SSHProbe logs into devices and reads their neighbor and routing tables.
// LLDP adjacencies become layer-2 records; ARP entries and routes become
// layer-3 records.
type SSHProbe struct {
	creds   SSHCredentials
	port    int
	timeout time.Duration
}

// NewSSHProbe creates an SSH neighbor-table probe
func NewSSHProbe(creds SSHCredentials, port int, timeout time.Duration) (*SSHProbe, error) {
	if creds.Username == "" {
		return nil, fmt.Errorf("ssh probe requires a username")
	}
	if creds.Password == "" && creds.PrivateKey == "" {
		return nil, fmt.Errorf("ssh probe requires a password or private key")
	}
	if port <= 0 {
		port = 22
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SSHProbe{creds: creds, port: port, timeout: timeout}, nil
}

// Name returns the probe identifier
func (p *SSHProbe) Name() string {
	return "ssh"
}

// Neighbors connects to the device and collects its adjacency tables
func (p *SSHProbe) Neighbors(ctx context.Context, device inventory.Device) ([]domain.NeighborRecord, error) {
	client, err := p.connect(ctx, device.Key)
	if err != nil {
		return nil, fmt.Errorf("ssh connect to %s: %w", device.Key, err)
	}
	defer client.Close()

	var records []domain.NeighborRecord

	// LLDP is optional on hosts; a failed command is not a failed probe
	if out, err := p.runCommand(ctx, client, cmdLLDPNeighbors); err == nil {
		records = append(records, parseLLDPNeighbors(device.Key, out)...)
	}

	out, err := p.runCommand(ctx, client, cmdIPNeighbors)
	if err != nil {
		return nil, fmt.Errorf("read neighbor table on %s: %w", device.Key, err)
	}
	records = append(records, parseIPNeighbors(device.Key, out)...)

	out, err = p.runCommand(ctx, client, cmdIPRoutes)
	if err != nil {
		return nil, fmt.Errorf("read routing table on %s: %w", device.Key, err)
	}
	records = append(records, parseIPRoutes(device.Key, out)...)

	return records, nil
}

// connect establishes the SSH connection with context-aware dialing
func (p *SSHProbe) connect(ctx context.Context, host string) (*ssh.Client, error) {
	config, err := p.buildSSHConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build SSH config: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", host, p.port)
	dialer := &net.Dialer{Timeout: p.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to establish SSH connection: %w", err)
	}

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// buildSSHConfig creates the client config from the probe credentials
func (p *SSHProbe) buildSSHConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod

	if p.creds.PrivateKey != "" {
		var signer ssh.Signer
		var err error
		if p.creds.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(p.creds.PrivateKey), []byte(p.creds.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(p.creds.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	} else {
		auth = append(auth, ssh.Password(p.creds.Password))
	}

	return &ssh.ClientConfig{
		User:            p.creds.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         p.timeout,
	}, nil
}

// runCommand executes a command over SSH and returns its output.
// A non-zero exit status still returns whatever the command printed.
func (p *SSHProbe) runCommand(ctx context.Context, client *ssh.Client, cmd string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	done := make(chan error, 1)
	var output []byte

	go func() {
		output, err = session.CombinedOutput(cmd)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			if _, ok := err.(*ssh.ExitError); ok {
				return string(output), nil
			}
			return "", fmt.Errorf("command failed: %w", err)
		}
		return string(output), nil
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return "", fmt.Errorf("command timeout")
	}
}
