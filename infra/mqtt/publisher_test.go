package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/mlaoire/pvdispatch/core/model"
)

type mockToken struct {
	err error
}

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *mockToken) Error() error { return t.err }

type mockClient struct {
	connected  bool
	connectErr error
	publishErr error
	topic      string
	payload    []byte
}

func (m *mockClient) IsConnected() bool { return m.connected }
func (m *mockClient) Connect() paho.Token {
	if m.connectErr == nil {
		m.connected = true
	}
	return &mockToken{err: m.connectErr}
}
func (m *mockClient) Disconnect(uint) { m.connected = false }
func (m *mockClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	m.topic = topic
	m.payload = payload.([]byte)
	return &mockToken{err: m.publishErr}
}

func withMockClient(t *testing.T, mock *mockClient) {
	t.Helper()
	old := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return mock }
	t.Cleanup(func() { newMQTTClient = old })
}

func testResult() *model.Result {
	return &model.Result{
		RunID:            "run-42",
		Times:            []time.Time{time.Date(2023, 6, 21, 12, 0, 0, 0, time.UTC)},
		Solar:            []float64{1500},
		Load:             []float64{1000},
		SolarHousehold:   []float64{1000},
		SolarBattery:     []float64{0},
		SolarGrid:        []float64{500},
		BatteryHousehold: []float64{0},
		GridBattery:      []float64{0},
		GridHousehold:    []float64{0},
		StoredEnergy:     []float64{0},
		SoCPercent:       []float64{0},
		Charging:         []bool{false},
		Discharging:      []bool{false},
		FromGrid:         []bool{false},
		TotalCost:        -0.008,
	}
}

func TestPublisher_PublishesSchedule(t *testing.T) {
	mock := &mockClient{}
	withMockClient(t, mock)

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", Topic: "pvdispatch/schedule", QoS: 1})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer pub.Close()

	if err := pub.RecordResult(context.Background(), testResult()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if mock.topic != "pvdispatch/schedule" {
		t.Errorf("published to %q", mock.topic)
	}

	var decoded struct {
		RunID string `json:"run_id"`
		Steps []any  `json:"steps"`
	}
	if err := json.Unmarshal(mock.payload, &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-42" || len(decoded.Steps) != 1 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestPublisher_ConfigValidation(t *testing.T) {
	if _, err := NewPublisher(Config{Topic: "x"}); err == nil {
		t.Error("expected error for missing broker")
	}
	if _, err := NewPublisher(Config{Broker: "tcp://localhost:1883"}); err == nil {
		t.Error("expected error for missing topic")
	}
}

func TestPublisher_Close(t *testing.T) {
	mock := &mockClient{}
	withMockClient(t, mock)

	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", Topic: "t"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	pub.Close()
	if mock.connected {
		t.Error("client should be disconnected")
	}
}
