package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"HelmetMonitorAPI/internal/config"
	"HelmetMonitorAPI/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client wraps the paho client with the subscription bookkeeping the
// ingestion path needs.
type Client struct {
	client    mqtt.Client
	cfg       *config.MQTTConfig
	log       *logger.Logger
	handlers  map[string]MessageHandler
	mu        sync.RWMutex
	connected bool
}

type MessageHandler func(topic string, payload []byte) error

func NewClient(cfg *config.MQTTConfig, log *logger.Logger) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	c := &Client{
		cfg:      cfg,
		log:      log,
		handlers: make(map[string]MessageHandler),
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetConnectTimeout(cfg.ConnectTimeout)
	opts.SetAutoReconnect(cfg.AutoReconnect)
	opts.SetCleanSession(true)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)

	c.client = mqtt.NewClient(opts)

	return c, nil
}

func (c *Client) Connect() error {
	c.log.Info("Connecting to MQTT broker: %s:%d", c.cfg.Broker, c.cfg.Port)

	token := c.client.Connect()
	if !token.WaitTimeout(c.cfg.ConnectTimeout) {
		return fmt.Errorf("connection timeout after %v", c.cfg.ConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()

	c.log.Info("Connected to MQTT broker")
	return nil
}

func (c *Client) Disconnect() error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	c.client.Disconnect(250)
	c.log.Info("Disconnected from MQTT broker")
	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// Health satisfies the health probe checker.
func (c *Client) Health(_ context.Context) error {
	if !c.IsConnected() {
		return fmt.Errorf("not connected to broker")
	}
	return nil
}

func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	if !c.IsConnected() {
		return fmt.Errorf("not connected to broker")
	}

	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()

	token := c.client.Subscribe(topic, c.cfg.QoS, func(client mqtt.Client, msg mqtt.Message) {
		c.handleMessage(msg)
	})

	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic: %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe failed for topic %s: %w", topic, err)
	}

	c.log.Info("Subscribed to topic: %s", topic)
	return nil
}

func (c *Client) handleMessage(msg mqtt.Message) {
	c.mu.RLock()
	handler, ok := c.matchHandler(msg.Topic())
	c.mu.RUnlock()

	if !ok {
		c.log.Warn("No handler for topic: %s", msg.Topic())
		return
	}

	if err := handler(msg.Topic(), msg.Payload()); err != nil {
		c.log.Error("Handler failed for topic %s: %v", msg.Topic(), err)
	}
}

// matchHandler resolves the registered handler for a concrete topic,
// honoring single-level (+) wildcards in registrations. Caller holds
// the read lock.
func (c *Client) matchHandler(topic string) (MessageHandler, bool) {
	if handler, ok := c.handlers[topic]; ok {
		return handler, true
	}

	for pattern, handler := range c.handlers {
		if topicMatches(pattern, topic) {
			return handler, true
		}
	}
	return nil, false
}

func topicMatches(pattern, topic string) bool {
	pp := splitTopic(pattern)
	tp := splitTopic(topic)

	if len(pp) != len(tp) {
		return false
	}
	for i := range pp {
		if pp[i] != "+" && pp[i] != tp[i] {
			return false
		}
	}
	return true
}

func splitTopic(topic string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(topic); i++ {
		if i == len(topic) || topic[i] == '/' {
			parts = append(parts, topic[start:i])
			start = i + 1
		}
	}
	return parts
}

func (c *Client) onConnect(_ mqtt.Client) {
	c.log.Info("MQTT connection established")
}

func (c *Client) onConnectionLost(_ mqtt.Client, err error) {
	c.log.Warn("MQTT connection lost: %v", err)
}
