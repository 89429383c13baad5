// Package mqtt publishes solved schedules to an MQTT broker so home
// automation controllers can pick them up.
package mqtt

import (
	"bytes"
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mlaoire/pvdispatch/core/model"
	"github.com/mlaoire/pvdispatch/infra/logger"
	"github.com/mlaoire/pvdispatch/pkg/export"
)

// Config defines the connection parameters for the publisher.
type Config struct {
	Enabled   bool   `json:"enabled"`
	Broker    string `json:"broker"`
	ClientID  string `json:"client_id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Topic     string `json:"topic"`
	QoS       byte   `json:"qos"`
	Retain    bool   `json:"retain"`
	TimeoutMS int    `json:"timeout_ms"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher pushes schedules to a broker topic.
type Publisher struct {
	cli     pahoClient
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
	log     logger.Logger
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("mqtt: topic is required")
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	log := logger.New("mqtt-publisher")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); !token.WaitTimeout(timeout) || token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", tokenErr(token))
	}
	return &Publisher{cli: cli, topic: cfg.Topic, qos: cfg.QoS, retain: cfg.Retain, timeout: timeout, log: log}, nil
}

// RecordResult publishes the schedule as a JSON payload. It satisfies the
// sink interface so the run treats the broker like any other destination.
func (p *Publisher) RecordResult(ctx context.Context, res *model.Result) error {
	payload, err := schedulePayload(res)
	if err != nil {
		return err
	}
	token := p.cli.Publish(p.topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt publish: timeout after %s", p.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}
	p.log.Infof("schedule %s published to %s", res.RunID, p.topic)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

func schedulePayload(res *model.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := export.WriteJSON(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func tokenErr(t paho.Token) error {
	if err := t.Error(); err != nil {
		return err
	}
	return fmt.Errorf("timeout")
}
