package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second

	// Milliseconds granted to in-flight messages on disconnect.
	mqttDisconnectQuiesce = 1000
)

var (
	errMQTTConnectionFailed = errors.New("mqtt connection failed")
	errMQTTNotConnected     = errors.New("mqtt not connected")
	errMQTTPublishFailed    = errors.New("mqtt publish failed")
)

// Publisher is the daemon's outbound MQTT surface. Telemetry goes to
// <prefix>/<serial>/data, poll failures to <prefix>/<serial>/error and
// the daemon's own availability to <prefix>/status. The availability
// topic is retained and backed by a last-will message, so subscribers
// can tell a crashed daemon from a silent one.
type Publisher struct {
	client mqtt.Client
	cfg    MQTTConfig
	prefix string
}

// ConnectPublisher connects to the broker and announces the daemon as
// online. The returned Publisher must be Closed to announce a graceful
// shutdown.
func ConnectPublisher(cfg MQTTConfig) (*Publisher, error) {
	p := &Publisher{cfg: cfg, prefix: strings.TrimSuffix(cfg.TopicPrefix, "/")}
	p.client = mqtt.NewClient(p.clientOptions())

	token := p.client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", errMQTTConnectionFailed, mqttConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", errMQTTConnectionFailed, err)
	}

	p.publishRetained(p.StatusTopic(), onlinePayload(cfg.ClientID))
	return p, nil
}

func (p *Publisher) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", p.cfg.Host, p.cfg.Port))
	opts.SetClientID(p.cfg.ClientID)
	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetWill(p.StatusTopic(), offlinePayload(p.cfg.ClientID, "connection_lost"), byte(p.cfg.QoS), true)
	return opts
}

// DataTopic returns the telemetry topic for a device serial.
func (p *Publisher) DataTopic(serial string) string {
	return p.prefix + "/" + serial + "/data"
}

// ErrorTopic returns the poll-failure topic for a device serial.
func (p *Publisher) ErrorTopic(serial string) string {
	return p.prefix + "/" + serial + "/error"
}

// StatusTopic returns the daemon availability topic.
func (p *Publisher) StatusTopic() string {
	return p.prefix + "/status"
}

// Publish sends a payload at the configured QoS and waits for broker
// acknowledgement.
func (p *Publisher) Publish(topic string, payload []byte) error {
	if p.client == nil || !p.client.IsConnected() {
		return errMQTTNotConnected
	}
	token := p.client.Publish(topic, byte(p.cfg.QoS), false, payload)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", errMQTTPublishFailed, mqttPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", errMQTTPublishFailed, err)
	}
	return nil
}

func (p *Publisher) publishRetained(topic, payload string) {
	token := p.client.Publish(topic, byte(p.cfg.QoS), true, payload)
	token.WaitTimeout(mqttPublishTimeout)
}

// Close publishes a graceful offline status, distinct from the last-will
// crash status, and disconnects.
func (p *Publisher) Close() {
	if p.client == nil {
		return
	}
	if p.client.IsConnected() {
		p.publishRetained(p.StatusTopic(), offlinePayload(p.cfg.ClientID, "shutdown"))
	}
	p.client.Disconnect(mqttDisconnectQuiesce)
}

func onlinePayload(clientID string) string {
	return fmt.Sprintf(`{"status":"online","client_id":%q,"timestamp":%q}`,
		clientID, time.Now().UTC().Format(time.RFC3339))
}

func offlinePayload(clientID, reason string) string {
	return fmt.Sprintf(`{"status":"offline","client_id":%q,"reason":%q,"timestamp":%q}`,
		clientID, reason, time.Now().UTC().Format(time.RFC3339))
}
