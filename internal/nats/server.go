package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mark3labs/census/internal/logger"
)

// StartEmbeddedNATS starts an embedded NATS server with JetStream enabled,
// storing its files under dataDir. The server accepts in-process
// connections only.
func StartEmbeddedNATS(dataDir string) (*server.Server, error) {
	logger.Debug("Starting embedded NATS server with data dir: %s", dataDir)

	opts := &server.Options{
		JetStream:  true,
		StoreDir:   dataDir,
		DontListen: true,
		NoSigs:     true,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		logger.Error("Failed to create NATS server: %v", err)
		return nil, err
	}

	go ns.Start()

	if !ns.ReadyForConnections(4 * time.Second) {
		logger.Error("NATS server failed to start within 4s timeout")
		ns.Shutdown()
		return nil, errors.New("nats server failed to start within timeout")
	}

	logger.Debug("NATS server ready for connections")
	return ns, nil
}

// ConnectInProcess creates an in-process connection to the embedded server.
func ConnectInProcess(ns *server.Server) (*nats.Conn, error) {
	conn, err := nats.Connect("", nats.InProcessServer(ns))
	if err != nil {
		logger.Error("Failed to connect to NATS in-process: %v", err)
		return nil, err
	}
	return conn, nil
}

// CreateJetStream creates a JetStream context from a NATS connection.
func CreateJetStream(nc *nats.Conn) (jetstream.JetStream, error) {
	return jetstream.New(nc)
}

// Bus bundles the embedded server with the journal stream and the client
// key-value bucket.
type Bus struct {
	Server *server.Server
	Conn   *nats.Conn
	JS     jetstream.JetStream
	Stream jetstream.Stream
	KV     jetstream.KeyValue
}

// Open starts the embedded server under dataDir and sets up the stream and
// bucket. Close releases everything.
func Open(ctx context.Context, dataDir string) (*Bus, error) {
	ns, err := StartEmbeddedNATS(dataDir)
	if err != nil {
		return nil, fmt.Errorf("starting nats: %w", err)
	}
	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}
	b := &Bus{Server: ns, Conn: nc}

	if b.JS, err = CreateJetStream(nc); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("creating jetstream: %w", err)
	}
	if b.Stream, err = SetupStream(ctx, b.JS); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("setting up stream: %w", err)
	}
	if b.KV, err = SetupKV(ctx, b.JS); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("setting up key-value bucket: %w", err)
	}
	return b, nil
}

// Close drains the connection and stops the server.
func (b *Bus) Close() error {
	return Shutdown(b.Conn, b.Server)
}

// Shutdown drains and closes the connection, then stops the server. Both
// steps are bounded so a wedged server cannot hang the process.
func Shutdown(nc *nats.Conn, ns *server.Server) error {
	if nc != nil {
		drainDone := make(chan error, 1)
		go func() {
			drainDone <- nc.Drain()
		}()

		select {
		case err := <-drainDone:
			if err != nil {
				logger.Warn("NATS drain failed, forcing close: %v", err)
				nc.Close()
			}
		case <-time.After(2 * time.Second):
			logger.Warn("NATS drain timed out after 2s, forcing close")
			nc.Close()
		}
	}

	if ns != nil {
		ns.Shutdown()

		shutdownDone := make(chan struct{})
		go func() {
			ns.WaitForShutdown()
			close(shutdownDone)
		}()

		select {
		case <-shutdownDone:
			logger.Debug("NATS server shut down cleanly")
		case <-time.After(5 * time.Second):
			logger.Error("NATS server shutdown timed out after 5s")
			return errors.New("NATS server shutdown timed out")
		}
	}
	return nil
}
