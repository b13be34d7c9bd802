// Package mqtt publishes link traffic to an MQTT broker for monitoring.
package mqtt

import (
	"net/url"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// Queue wraps an MQTT client with a fixed topic prefix.
type Queue struct {
	Client      paho.Client
	TopicPrefix string
}

// ClientOptionsFromURL creates ClientOptions from a URL of the form
// mqtt://host:port/prefix?client-id=name.
func ClientOptionsFromURL(serverURL string) (*paho.ClientOptions, string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, "", err
	}
	server := u.Scheme
	if server == "" || server == "mqtt" {
		server = "tcp"
	}
	server += "://" + u.Host

	topicPrefix := strings.TrimPrefix(u.Path, "/")
	if topicPrefix != "" && !strings.HasSuffix(topicPrefix, "/") {
		topicPrefix += "/"
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(server).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		opts.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			opts.SetPassword(pwd)
		}
	}
	if clientID := u.Query().Get("client-id"); clientID != "" {
		opts.SetClientID(clientID)
	}
	return opts, topicPrefix, nil
}

// NewQueueFromURL creates a Queue from a URL.
func NewQueueFromURL(serverURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(serverURL)
	if err != nil {
		return nil, err
	}
	q := &Queue{TopicPrefix: topicPrefix}
	opts.SetOnConnectHandler(func(paho.Client) {
		glog.Info("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		glog.Warningf("mqtt connection lost: %v", err)
	})
	q.Client = paho.NewClient(opts)
	return q, nil
}

// Connect connects the client and waits for the result.
func (q *Queue) Connect() error {
	token := q.Client.Connect()
	token.Wait()
	return token.Error()
}

// Pub publishes payload under the prefixed topic.
func (q *Queue) Pub(topic string, payload []byte) error {
	key := q.TopicPrefix + topic
	if glog.V(2) {
		glog.Infof("PUB %q %d bytes", key, len(payload))
	}
	token := q.Client.Publish(key, 0, false, payload)
	token.Wait()
	return token.Error()
}

// Sub subscribes to the prefixed topic.
func (q *Queue) Sub(topic string, handler Handler) error {
	key := q.TopicPrefix + topic
	if glog.V(2) {
		glog.Infof("SUB %q", key)
	}
	token := q.Client.Subscribe(key, 0, func(_ paho.Client, msg paho.Message) {
		handler(strings.TrimPrefix(msg.Topic(), q.TopicPrefix), msg.Payload())
	})
	token.Wait()
	return token.Error()
}

// Close disconnects the client.
func (q *Queue) Close() {
	q.Client.Disconnect(250)
}
