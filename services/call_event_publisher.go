package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dependify/DemoeCRM/config"
	"github.com/dependify/DemoeCRM/models"
)

// Topic layout for call status events
const callStatusTopicFormat = "voice-agent/calls/%s/status"

// CallEvent is the message published on every call status change
type CallEvent struct {
	CallID    string                 `json:"call_id"`
	ConvertID uint                   `json:"convert_id"`
	Status    models.VoiceCallStatus `json:"status"`
	Event     string                 `json:"event"`
	Timestamp int64                  `json:"timestamp"`
}

// InterfaceCallEventPublisher publishes voice-call status changes to the
// message broker. Publishing is best effort: the call workflow must not
// fail because the broker is down.
type InterfaceCallEventPublisher interface {
	Connect() error
	Disconnect()
	PublishCallEvent(call *models.VoiceCall, event string)
}

// CallEventPublisher publishes call events over MQTT
type CallEventPublisher struct {
	Config         *config.Config
	Client         mqtt.Client
	IsConnected    bool
	connectedMutex sync.RWMutex
	publishMutex   sync.Mutex
}

// NewCallEventPublisher creates an MQTT-backed call event publisher
func NewCallEventPublisher(cfg *config.Config) InterfaceCallEventPublisher {
	p := &CallEventPublisher{Config: cfg}
	p.setupClient()
	return p
}

func (p *CallEventPublisher) setupClient() {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(p.Config.MQTTBrokerURL)
	// Unique client id so multiple instances never collide
	opts.SetClientID(fmt.Sprintf("%s-%s", p.Config.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)

	if p.Config.MQTTUsername != "" {
		opts.SetUsername(p.Config.MQTTUsername)
		opts.SetPassword(p.Config.MQTTPassword)
	}

	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		config.Warning("mqtt connection lost", zap.Error(err))
		p.connectedMutex.Lock()
		p.IsConnected = false
		p.connectedMutex.Unlock()
	})
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		config.Info("mqtt connected", zap.String("broker", p.Config.MQTTBrokerURL))
		p.connectedMutex.Lock()
		p.IsConnected = true
		p.connectedMutex.Unlock()
	})

	p.Client = mqtt.NewClient(opts)
}

// Connect dials the broker. A failure is logged and reported but the
// publisher remains usable; publishes are dropped until reconnect.
func (p *CallEventPublisher) Connect() error {
	p.publishMutex.Lock()
	defer p.publishMutex.Unlock()

	p.connectedMutex.RLock()
	connected := p.IsConnected && p.Client.IsConnected()
	p.connectedMutex.RUnlock()
	if connected {
		return nil
	}

	token := p.Client.Connect()
	if token.WaitTimeout(5*time.Second) && token.Error() == nil {
		p.connectedMutex.Lock()
		p.IsConnected = true
		p.connectedMutex.Unlock()
		return nil
	}
	err := token.Error()
	if err == nil {
		err = fmt.Errorf("mqtt connect timed out")
	}
	config.Warning("mqtt connect failed", zap.Error(err))
	return err
}

// Disconnect closes the broker connection
func (p *CallEventPublisher) Disconnect() {
	if p.Client != nil && p.Client.IsConnected() {
		p.Client.Disconnect(250)
	}
	p.connectedMutex.Lock()
	p.IsConnected = false
	p.connectedMutex.Unlock()
}

// PublishCallEvent emits a status-change event for a call
func (p *CallEventPublisher) PublishCallEvent(call *models.VoiceCall, event string) {
	p.connectedMutex.RLock()
	connected := p.IsConnected && p.Client.IsConnected()
	p.connectedMutex.RUnlock()
	if !connected {
		config.Warning("mqtt not connected, dropping call event",
			zap.String("call_id", call.CallID), zap.String("event", event))
		return
	}

	payload, err := json.Marshal(CallEvent{
		CallID:    call.CallID,
		ConvertID: call.ConvertID,
		Status:    call.Status,
		Event:     event,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		config.Error("marshal call event", zap.Error(err))
		return
	}

	topic := fmt.Sprintf(callStatusTopicFormat, call.CallID)

	p.publishMutex.Lock()
	token := p.Client.Publish(topic, 1, false, payload)
	p.publishMutex.Unlock()

	if token.WaitTimeout(3*time.Second) && token.Error() != nil {
		config.Warning("publish call event failed",
			zap.String("topic", topic), zap.Error(token.Error()))
	}
}

// noopCallEventPublisher drops every event, used in tests and when the
// broker is disabled
type noopCallEventPublisher struct{}

// NewNoopCallEventPublisher creates a publisher that drops every event
func NewNoopCallEventPublisher() InterfaceCallEventPublisher {
	return noopCallEventPublisher{}
}

func (noopCallEventPublisher) Connect() error { return nil }
func (noopCallEventPublisher) Disconnect()    {}
func (noopCallEventPublisher) PublishCallEvent(call *models.VoiceCall, event string) {
}
