//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"strings"
	"time"
)

// RecentSubscriberLimit is the number of subscribers returned by the stats endpoint.
const RecentSubscriberLimit = 5

// Subscriber is a newsletter subscription.
type Subscriber struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SubscribeRequest is the newsletter form payload.
type SubscribeRequest struct {
	Email string `json:"email"`
}

// Validate normalizes the email and checks it contains an @.
func (r *SubscribeRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return requestError("Valid email address is required", "email")
	}
	return nil
}

// RecentSubscriber is the public projection used in subscriber stats.
type RecentSubscriber struct {
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// SubscriberStats summarises the newsletter list.
type SubscriberStats struct {
	TotalSubscribers  int                `json:"totalSubscribers"`
	RecentSubscribers []RecentSubscriber `json:"recentSubscribers"`
}
