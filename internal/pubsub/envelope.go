// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package pubsub

import (
	"encoding/json"

	"github.com/wandsdn/helix/internal/errors"
)

// Envelope is the wire shape every message on the control channel carries:
// a routing key plus an opaque, topic-specific payload.
type Envelope struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals env's payload into v.
func (env Envelope) Decode(v any) error {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return errors.Wrapf(err, errors.KindUnpickleFailed, "pubsub: decode payload for topic %s", env.Topic)
	}
	return nil
}

// Encode builds the wire bytes for a message on topic carrying payload.
func Encode(topic string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal payload for topic %s", topic)
	}
	data, err := json.Marshal(Envelope{Topic: topic, Payload: raw})
	if err != nil {
		return nil, errors.Wrapf(err, errors.KindPubSubSendFailed, "pubsub: marshal envelope for topic %s", topic)
	}
	return data, nil
}
