package events

// Topics emitted by the checkout service.
const (
	TopicCheckoutCompleted = "checkout.completed"
	TopicCheckoutFailed    = "checkout.failed"
)
