package probe

import "github.com/vmihailenco/msgpack/v5"

// Data channel message types.
const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

// Message is the msgpack envelope for every probe data channel frame.
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// PingPayload is sent by the caller. SentAt is the caller's clock in Unix
// nanoseconds and is echoed back unchanged.
type PingPayload struct {
	Seq    uint32 `msgpack:"seq"`
	SentAt int64  `msgpack:"sentAt"`
}

// PongPayload answers a ping.
type PongPayload struct {
	Seq        uint32 `msgpack:"seq"`
	SentAt     int64  `msgpack:"sentAt"`
	ReceivedAt int64  `msgpack:"receivedAt"`
}

// Encode builds the wire form of a message with the given type and payload.
func Encode(t string, payload any) ([]byte, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(Message{Type: t, Payload: b})
}

// Decode parses a wire frame into its envelope.
func Decode(data []byte) (Message, error) {
	var m Message
	err := msgpack.Unmarshal(data, &m)
	return m, err
}

// DecodePayload decodes the message payload into v.
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}
