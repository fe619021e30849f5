package middleware

import (
	"fmt"
	"os"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ConnectionConfig holds configuration for RabbitMQ connections
type ConnectionConfig struct {
	URL      string
	Username string
	Password string
	Host     string
	Port     int
	VHost    string

	// ConnectRetries and RetryInterval bound WaitForConnection at startup.
	ConnectRetries int
	RetryInterval  time.Duration
}

// DefaultConnectionConfig returns a default configuration for local RabbitMQ
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		Username: "guest",
		Password: "guest",
		Host:     "localhost",
		Port:     5672,
		VHost:    "/",

		ConnectRetries: 30,
		RetryInterval:  time.Second,
	}
}

// LoadConnectionConfig reads RABBITMQ_URL or RABBITMQ_HOST/PORT/USER/PASS/VHOST,
// plus RABBITMQ_CONNECT_RETRIES and RABBITMQ_RETRY_INTERVAL, falling back to
// DefaultConnectionConfig for anything unset.
func LoadConnectionConfig() (*ConnectionConfig, error) {
	config := DefaultConnectionConfig()
	config.URL = os.Getenv("RABBITMQ_URL")

	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		config.Host = host
	}
	if portStr := os.Getenv("RABBITMQ_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return nil, fmt.Errorf("invalid RABBITMQ_PORT %q", portStr)
		}
		config.Port = port
	}
	if user := os.Getenv("RABBITMQ_USER"); user != "" {
		config.Username = user
	}
	if pass := os.Getenv("RABBITMQ_PASS"); pass != "" {
		config.Password = pass
	}
	if vhost := os.Getenv("RABBITMQ_VHOST"); vhost != "" {
		config.VHost = vhost
	}
	if retriesStr := os.Getenv("RABBITMQ_CONNECT_RETRIES"); retriesStr != "" {
		retries, err := strconv.Atoi(retriesStr)
		if err != nil || retries <= 0 {
			return nil, fmt.Errorf("invalid RABBITMQ_CONNECT_RETRIES %q", retriesStr)
		}
		config.ConnectRetries = retries
	}
	if intervalStr := os.Getenv("RABBITMQ_RETRY_INTERVAL"); intervalStr != "" {
		interval, err := time.ParseDuration(intervalStr)
		if err != nil || interval < 0 {
			return nil, fmt.Errorf("invalid RABBITMQ_RETRY_INTERVAL %q", intervalStr)
		}
		config.RetryInterval = interval
	}
	return config, nil
}

// BuildURL constructs a RabbitMQ URL from the configuration
func (c *ConnectionConfig) BuildURL() string {
	if c.URL != "" {
		return c.URL
	}
	vhost := c.VHost
	if vhost == "" {
		vhost = "/"
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.Username, c.Password, c.Host, c.Port, vhost)
}

// WaitForConnection waits for RabbitMQ to be available with retries
func WaitForConnection(config *ConnectionConfig, maxRetries int, retryInterval time.Duration) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := amqp.Dial(config.BuildURL())
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err
		LogDebug("Middleware", "RabbitMQ not ready (attempt %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryInterval)
		}
	}
	return fmt.Errorf("failed to connect to RabbitMQ after %d retries: %w", maxRetries, lastErr)
}

// CreateMiddlewareChannel dials RabbitMQ and opens a channel with prefetch 1.
// The caller owns both and must close the connection when done.
func CreateMiddlewareChannel(config *ConnectionConfig) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(config.BuildURL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create RabbitMQ connection: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to create channel: %w", err)
	}

	// One unacked delivery at a time keeps batches in publish order and
	// bounds the reducer's memory to a single batch.
	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	return conn, ch, nil
}
