//go:generate go run go.uber.org/mock/mockgen -source=delivery.go -destination=../mocks/mock_delivery.go -package=mocks

package signaling

import "github.com/woundlink/callcore/internal/protocol"

// Delivery pushes outbound messages to connected participants. Delivery is
// best-effort: implementations log and skip participants they cannot reach.
type Delivery interface {
	SendTo(participantID string, msg *protocol.Message)
	BroadcastToRoomExcept(roomID, senderID string, msg *protocol.Message)
}
