package client

type ConnectionState uint8

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateError:
		return "Error"
	}
	return "Unknown"
}

// ClientId identifies this client to the server for the lifetime of one
// connection. A new one is drawn on every Connect.
type ClientId string

func (id ClientId) String() string {
	return string(id)
}
