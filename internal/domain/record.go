package domain

import "time"

// PhoneSubscriptionRecord is the per-phone-number container of all of that
// user's price watches. PhoneNumber doubles as the store partition key.
// A record with zero subscriptions is deleted, never kept empty.
type PhoneSubscriptionRecord struct {
	ID            string
	PhoneNumber   string
	Subscriptions []Subscription
	// NextSubscriptionID is a strictly increasing per-record counter, so a
	// removed subscription's id is never re-issued to a later one.
	NextSubscriptionID int
	// Version guards whole-record replace/delete against concurrent writers.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Append assigns the next id to sub and adds it to the record.
func (r *PhoneSubscriptionRecord) Append(sub Subscription) Subscription {
	sub.ID = r.NextSubscriptionID
	r.NextSubscriptionID++
	r.Subscriptions = append(r.Subscriptions, sub)
	return sub
}

// Remove filters out the subscription with the given id and reports whether
// it was present. Removing an unknown id is a no-op.
func (r *PhoneSubscriptionRecord) Remove(subscriptionID int) bool {
	kept := r.Subscriptions[:0]
	removed := false
	for _, sub := range r.Subscriptions {
		if sub.ID == subscriptionID {
			removed = true
			continue
		}
		kept = append(kept, sub)
	}
	r.Subscriptions = kept
	return removed
}

func (r *PhoneSubscriptionRecord) Empty() bool {
	return len(r.Subscriptions) == 0
}
