package model

// LiveEvent is the push envelope. Message holds a JSON-encoded Message.
type LiveEvent struct {
	Topic   string `mapstructure:"topic"`
	Message string `mapstructure:"message"`
}

// Directive is sent to the push server to manage topic subscriptions.
type Directive struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
}

const (
	SubscribeDirective   = "subscribe"
	UnsubscribeDirective = "unsubscribe"
)
