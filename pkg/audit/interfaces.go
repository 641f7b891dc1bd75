package audit

import "context"

// Sink delivers audit events to a downstream system (SQS, SNS, webhook, etc).
type Sink interface {
	ID() string
	Type() string
	Send(ctx context.Context, evt Event) error
}
