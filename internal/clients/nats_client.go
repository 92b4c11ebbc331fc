package clients

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/backend/internal/config"
)

// NATSClient publishes pipeline events to the message bus. Publication is
// fire-and-forget from the pipeline's point of view; a broken bus never
// fails a verification call.
type NATSClient struct {
	conn   *nats.Conn
	logger *logrus.Logger
}

// NewNATSClient connects to the configured NATS server.
func NewNATSClient(cfg config.NATSConfig, logger *logrus.Logger) (*NATSClient, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("NATS URL not configured")
	}

	opts := []nats.Option{
		nats.Timeout(time.Duration(cfg.Timeout) * time.Second),
		nats.ReconnectWait(time.Duration(cfg.ReconnectWait) * time.Second),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.WithField("url", cfg.URL).Info("NATS connected")
	return &NATSClient{conn: conn, logger: logger}, nil
}

// Publish marshals payload and publishes it on subject.
func (c *NATSClient) Publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains and closes the connection.
func (c *NATSClient) Close() {
	if c.conn != nil {
		_ = c.conn.Drain()
	}
}
