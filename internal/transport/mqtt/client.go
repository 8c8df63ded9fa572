package mqtt

import (
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MessageHandler receives one inbound message. It runs on the paho callback
// goroutine and must not block.
type MessageHandler func(topic string, payload []byte)

type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string

	// OnConnectionChange is invoked with true on (re)connect and false on
	// connection loss. Optional.
	OnConnectionChange func(connected bool)
}

type subscription struct {
	qos     byte
	handler MessageHandler
}

// Client wraps the paho client with auto-reconnect and re-subscription of
// known topics after a reconnect.
type Client struct {
	client paho.Client
	log    *zap.Logger

	mu   sync.Mutex
	subs map[string]subscription
}

func NewClient(opts Options, log *zap.Logger) (*Client, error) {
	c := &Client{
		log:  log,
		subs: make(map[string]subscription),
	}

	pahoOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(4 * time.Second)

	if opts.Username != "" {
		pahoOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		pahoOpts.SetPassword(opts.Password)
	}

	pahoOpts.SetOnConnectHandler(func(paho.Client) {
		log.Info("mqtt connected", zap.String("broker", opts.Broker))
		if opts.OnConnectionChange != nil {
			opts.OnConnectionChange(true)
		}
		c.resubscribe()
	})
	pahoOpts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.Warn("mqtt connection lost", zap.Error(err))
		if opts.OnConnectionChange != nil {
			opts.OnConnectionChange(false)
		}
	})

	c.client = paho.NewClient(pahoOpts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}
	return c, nil
}

func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = subscription{qos: qos, handler: handler}
	c.mu.Unlock()

	return c.subscribe(topic, qos, handler)
}

func (c *Client) subscribe(topic string, qos byte, handler MessageHandler) error {
	token := c.client.Subscribe(topic, qos, func(_ paho.Client, msg paho.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}
	return nil
}

// resubscribe re-issues subscriptions after a reconnect; with a clean
// session the broker forgets them.
func (c *Client) resubscribe() {
	c.mu.Lock()
	subs := make(map[string]subscription, len(c.subs))
	for topic, sub := range c.subs {
		subs[topic] = sub
	}
	c.mu.Unlock()

	for topic, sub := range subs {
		if err := c.subscribe(topic, sub.qos, sub.handler); err != nil {
			c.log.Error("resubscribe failed", zap.String("topic", topic), zap.Error(err))
		}
	}
}

func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := c.client.Publish(topic, qos, retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}
	return nil
}

func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

func (c *Client) Disconnect() {
	c.client.Disconnect(250)
}
