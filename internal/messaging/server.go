// Package messaging carries game events between the simulation and
// connected clients over an embedded NATS broker. Players subscribe to
// their own subject; room broadcasts fan out through the Publisher.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// NatsServer embeds a NATS broker in-process and holds one internal
// client connection for the simulation side.
type NatsServer struct {
	srv  *server.Server
	conn *nats.Conn

	readyTimeout time.Duration
	host         string
	port         int
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	n := &NatsServer{
		readyTimeout: 10 * time.Second,
		host:         "127.0.0.1",
	}
	for _, opt := range opts {
		opt(n)
	}

	srv, err := server.NewServer(&server.Options{
		Host: n.host,
		Port: n.port,
		// Signals are owned by the service runner.
		NoSigs: true,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring nats: %w", err)
	}
	n.srv = srv

	return n, nil
}

// Start brings the broker up, connects the internal client, and blocks
// until the context is cancelled.
func (n *NatsServer) Start(ctx context.Context) error {
	n.srv.Start()
	if !n.srv.ReadyForConnections(n.readyTimeout) {
		return fmt.Errorf("nats not accepting connections after %s", n.readyTimeout)
	}

	conn, err := nats.Connect(fmt.Sprintf("nats://%s:%d", n.host, n.port))
	if err != nil {
		return fmt.Errorf("connecting internal client: %w", err)
	}
	n.conn = conn

	slog.InfoContext(ctx, "message bus listening", "addr", n.srv.Addr())

	<-ctx.Done()

	n.conn.Close()
	n.srv.Shutdown()
	n.srv.WaitForShutdown()
	return nil
}

// Subscribe registers a handler for a subject and returns the
// unsubscribe function. Fails until Start has connected the client.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if n.conn == nil {
		return nil, fmt.Errorf("bus not connected")
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { sub.Unsubscribe() }, nil
}

// Publish sends one message to a subject.
func (n *NatsServer) Publish(subject string, data []byte) error {
	if n.conn == nil {
		return fmt.Errorf("bus not connected")
	}
	return n.conn.Publish(subject, data)
}
