// Package chain observes the certificate chain a remote TLS endpoint
// presents, without validating it, and identifies the chain's root.
package chain

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/druarnfield/rootprobe/internal/truststore"
)

const (
	// DefaultPort is the TLS port dialed when the host carries none.
	DefaultPort = 443

	// DefaultTimeout bounds connect plus handshake.
	DefaultTimeout = 10 * time.Second
)

// Resolver captures presented certificate chains over a raw TLS
// connection. Verification is deliberately disabled: the operation
// exists to retrieve exactly the certificates a default validator
// would reject.
type Resolver struct {
	Port    int
	Timeout time.Duration
}

// New returns a Resolver with default port and timeout.
func New() *Resolver {
	return &Resolver{Port: DefaultPort, Timeout: DefaultTimeout}
}

// CleanHost reduces a user-supplied target to a bare hostname by
// stripping any scheme prefix and path suffix.
func CleanHost(target string) string {
	host := strings.TrimSpace(target)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return host
}

// ResolveRoot connects to the target host, captures the presented
// certificate chain, and returns a record for its terminal certificate.
// The chain is taken exactly as presented; the last element is treated
// as the root even if the server sends an incomplete or reordered
// chain, since the demonstration only needs a stable identity to
// compare against the store. Every failure maps to a result record
// rather than an error.
func (r *Resolver) ResolveRoot(ctx context.Context, target string) truststore.Record {
	host := CleanHost(target)
	if host == "" {
		return failure("no hostname in target")
	}

	port := r.Port
	if port == 0 {
		port = DefaultPort
	}
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return failure(fmt.Sprintf("connecting to %s: %v", host, err))
	}
	defer rawConn.Close()

	// skip verification: the chain must be captured even (especially)
	// when the root is untrusted.
	conn := tls.Client(rawConn, &tls.Config{
		ServerName:         host,
		InsecureSkipVerify: true,
	})
	defer conn.Close()

	if err := conn.HandshakeContext(ctx); err != nil {
		return failure(fmt.Sprintf("TLS handshake with %s: %v", host, err))
	}

	chain := conn.ConnectionState().PeerCertificates
	if len(chain) == 0 {
		return failure(fmt.Sprintf("%s presented an empty certificate chain", host))
	}

	root := chain[len(chain)-1]
	return truststore.NewRecord(root, false,
		fmt.Sprintf("root certificate from chain of %d presented by %s", len(chain), host))
}

func failure(message string) truststore.Record {
	return truststore.Record{
		Installed: false,
		Message:   "chain resolution failed: " + message,
	}
}
