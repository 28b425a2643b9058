package model

import "time"

// Known MercadoPago notification topics. Anything else is recorded in the
// ledger but skipped by reconciliation.
const (
	TopicSubscriptionPreapproval = "subscription_preapproval"
	TopicSubscriptionAuthPayment = "subscription_authorized_payment"
	TopicPayment                 = "payment"
)

// WebhookEvent is the ledger record of one inbound notification, keyed by
// (topic, resource id). The processed flag flips to true only after
// reconciliation completed without error; rows are never deleted.
type WebhookEvent struct {
	ID         int64
	Topic      string
	ResourceID string
	Payload    []byte // raw request body, JSON
	ReceivedAt time.Time
	Processed  bool
}
