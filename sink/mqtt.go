// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sink

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/touch/axs15231b"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/fxamacker/cbor/v2"
)

// Format is the payload encoding of MQTT messages.
type Format int

const (
	JSON Format = iota
	CBOR
)

// ParseFormat parses "json" or "cbor".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return JSON, nil
	case "cbor":
		return CBOR, nil
	default:
		return 0, fmt.Errorf("sink: unknown format %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Publisher is the part of mqtt.Client used by MQTT.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

const (
	connectTimeout = 5 * time.Second
	publishTimeout = time.Second
)

// cborMode keeps the sub-second part of timestamps.
var cborMode cbor.EncMode

func init() {
	var err error
	if cborMode, err = (cbor.EncOptions{Time: cbor.TimeRFC3339Nano}).EncMode(); err != nil {
		panic(err)
	}
}

// MQTT publishes a Message per touch with QoS 0.
type MQTT struct {
	pub    Publisher
	topic  string
	format Format
	// client is set when the connection is owned.
	client mqtt.Client
}

// DialMQTT connects to broker, e.g. tcp://localhost:1883.
func DialMQTT(broker, clientID, topic string, f Format) (*MQTT, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("sink: connecting to %s timed out", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	m := NewMQTT(c, topic, f)
	m.client = c
	return m, nil
}

// NewMQTT returns an MQTT sink publishing through pub. Close leaves pub
// alone.
func NewMQTT(pub Publisher, topic string, f Format) *MQTT {
	return &MQTT{pub: pub, topic: topic, format: f}
}

// Encode returns the payload for t.
func (m *MQTT) Encode(t axs15231b.Touch) ([]byte, error) {
	msg := NewMessage(t)
	switch m.format {
	case JSON:
		return json.Marshal(msg)
	case CBOR:
		return cborMode.Marshal(msg)
	default:
		return nil, fmt.Errorf("sink: unknown format %s", m.format)
	}
}

// Send implements Sink.
func (m *MQTT) Send(t axs15231b.Touch) error {
	b, err := m.Encode(t)
	if err != nil {
		return err
	}
	tok := m.pub.Publish(m.topic, 0, false, b)
	if !tok.WaitTimeout(publishTimeout) {
		return errors.New("sink: mqtt publish timed out")
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("sink: mqtt: %w", err)
	}
	return nil
}

// Close implements Sink.
func (m *MQTT) Close() error {
	if m.client != nil {
		m.client.Disconnect(250)
	}
	return nil
}
