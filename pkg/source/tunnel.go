package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Tunnel is an SSH connection to a route server host. It runs RIB commands
// and can forward a local TCP port to an address reachable from the host,
// which is how APPL_DB inside a SONiC container is read.
type Tunnel struct {
	client *ssh.Client

	mu       sync.Mutex
	listener net.Listener
	target   string
	done     chan struct{}
	wg       sync.WaitGroup
}

// DialTunnel connects to host (port 22 unless given) with password auth.
// The dial honours ctx; the handshake is bounded by the same deadline.
func DialTunnel(ctx context.Context, host, user, pass string) (*Tunnel, error) {
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(strings.Trim(host, "[]"), "22")
	}

	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.Password(pass),
		},
		// Digital twin route servers are rebuilt freely, host keys churn.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("SSH dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("SSH handshake %s: %w", addr, err)
	}
	conn.SetDeadline(time.Time{})

	return &Tunnel{client: ssh.NewClient(c, chans, reqs)}, nil
}

// ExecCommand runs a command on the remote host and returns the combined output.
// The SSH session is created per-call (stateless). Cancelling ctx closes the
// session.
func (t *Tunnel) ExecCommand(ctx context.Context, cmd string) (string, error) {
	session, err := t.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	type result struct {
		out []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(cmd)
		ch <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		session.Close()
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return string(r.out), fmt.Errorf("SSH exec '%s': %w", cmd, r.err)
		}
		return string(r.out), nil
	}
}

// Forward opens a local listener on a random port whose connections are
// forwarded to target as seen from the remote host. It returns the local
// address. A tunnel forwards to one target at a time.
func (t *Tunnel) Forward(target string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.listener != nil {
		return "", fmt.Errorf("tunnel already forwarding to %s", t.target)
	}
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("local listen: %w", err)
	}
	t.listener = listener
	t.target = target
	t.done = make(chan struct{})

	t.wg.Add(1)
	go t.acceptLoop()

	return listener.Addr().String(), nil
}

// Close stops forwarding, closes the SSH connection, and waits for
// all forwarding goroutines to finish.
func (t *Tunnel) Close() error {
	t.mu.Lock()
	if t.listener != nil {
		close(t.done)
		t.listener.Close()
	}
	t.mu.Unlock()
	t.wg.Wait()
	return t.client.Close()
}

func (t *Tunnel) acceptLoop() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		t.wg.Add(1)
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer t.wg.Done()
	defer local.Close()

	remote, err := t.client.Dial("tcp", t.target)
	if err != nil {
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}
