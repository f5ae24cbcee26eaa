package types

import "fmt"

// ConnectionChannel represents the medium of a contact attempt
type ConnectionChannel string

const (
	ChannelCall         ConnectionChannel = "CALL"
	ChannelChat         ConnectionChannel = "CHAT"
	ChannelMessagingApp ConnectionChannel = "MESSAGING_APP"
)

// AllConnectionChannels returns all valid connection channels
func AllConnectionChannels() []ConnectionChannel {
	return []ConnectionChannel{ChannelCall, ChannelChat, ChannelMessagingApp}
}

// IsValid checks if the connection channel is valid
func (c ConnectionChannel) IsValid() bool {
	switch c {
	case ChannelCall, ChannelChat, ChannelMessagingApp:
		return true
	default:
		return false
	}
}

// String returns the string representation of the connection channel
func (c ConnectionChannel) String() string {
	return string(c)
}

// ParseConnectionChannel parses a string into a ConnectionChannel
func ParseConnectionChannel(s string) (ConnectionChannel, error) {
	c := ConnectionChannel(s)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid connection channel: %s", s)
	}
	return c, nil
}

// ConnectionOutcome represents how a contact attempt concluded
type ConnectionOutcome string

const (
	OutcomeResolved     ConnectionOutcome = "RESOLVED"
	OutcomeEscalated    ConnectionOutcome = "ESCALATED"
	OutcomeDisconnected ConnectionOutcome = "DISCONNECTED"
)

// AllConnectionOutcomes returns all valid connection outcomes
func AllConnectionOutcomes() []ConnectionOutcome {
	return []ConnectionOutcome{OutcomeResolved, OutcomeEscalated, OutcomeDisconnected}
}

// IsValid checks if the connection outcome is valid
func (o ConnectionOutcome) IsValid() bool {
	switch o {
	case OutcomeResolved, OutcomeEscalated, OutcomeDisconnected:
		return true
	default:
		return false
	}
}

// String returns the string representation of the connection outcome
func (o ConnectionOutcome) String() string {
	return string(o)
}
