package domain

// ConnectionStatus is the state of the realtime channel as seen by a session.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
)

// Session identifies one chat conversation. A new ID is generated for every
// controller start and is never reused.
type Session struct {
	ID            string
	Authenticated bool
	Status        ConnectionStatus
}
