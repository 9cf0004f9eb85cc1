package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"sermonbench/internal/config"
	"sermonbench/internal/logging"
)

// FileSource supplies test file contents to upload workers.
type FileSource interface {
	ReadFile(ctx context.Context, remotePath string) ([]byte, error)
}

// SourcePool is a FileSource backed by independent SSH+SFTP connections, one
// per checkout. Workers reading large WAVs in parallel each get their own TCP
// stream instead of contending for a single session.
type SourcePool struct {
	conns  chan *poolConn
	all    []*poolConn
	logger *slog.Logger
}

type poolConn struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

// OpenSourcePool dials size independent connections to the recording host.
// Size values below one are clamped to one.
func OpenSourcePool(cfg config.Remote, size int, logger *slog.Logger) (*SourcePool, error) {
	if size < 1 {
		size = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With(slog.String(logging.FieldComponent, "catalog"))

	pool := &SourcePool{
		conns:  make(chan *poolConn, size),
		logger: logger,
	}

	for i := 0; i < size; i++ {
		sshConn, err := dial(cfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("%w: pool connection %d: %v", ErrConnection, i+1, err)
		}
		sftpConn, err := sftp.NewClient(sshConn)
		if err != nil {
			_ = sshConn.Close()
			pool.Close()
			return nil, fmt.Errorf("%w: open sftp %d: %v", ErrConnection, i+1, err)
		}
		conn := &poolConn{ssh: sshConn, sftp: sftpConn}
		pool.all = append(pool.all, conn)
		pool.conns <- conn
	}

	logger.Info("opened sftp source pool", slog.Int("connections", size))
	return pool, nil
}

// ReadFile checks out a connection, reads the full file, and returns the
// connection to the pool. Waiting for a free connection honors ctx; a read
// already in flight is not interrupted.
func (p *SourcePool) ReadFile(ctx context.Context, remotePath string) ([]byte, error) {
	var conn *poolConn
	select {
	case conn = <-p.conns:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { p.conns <- conn }()

	file, err := conn.sftp.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", remotePath, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", remotePath, err)
	}
	return data, nil
}

// Close tears down every pooled connection.
func (p *SourcePool) Close() error {
	var firstErr error
	for _, conn := range p.all {
		if conn.sftp != nil {
			if err := conn.sftp.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if conn.ssh != nil {
			if err := conn.ssh.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	p.all = nil
	return firstErr
}
