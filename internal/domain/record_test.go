package domain

import "testing"

func TestRecordAppendAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	record := &PhoneSubscriptionRecord{PhoneNumber: "+15551234567"}

	first := record.Append(Subscription{FlyFrom: "NYC", FlyTo: "LAX"})
	second := record.Append(Subscription{FlyFrom: "NYC", FlyTo: "SFO"})

	if first.ID != 0 {
		t.Fatalf("first id = %d, want 0", first.ID)
	}
	if second.ID != 1 {
		t.Fatalf("second id = %d, want 1", second.ID)
	}
	if record.NextSubscriptionID != 2 {
		t.Fatalf("next id = %d, want 2", record.NextSubscriptionID)
	}
}

func TestRecordRemoveDoesNotReuseIDs(t *testing.T) {
	t.Parallel()

	record := &PhoneSubscriptionRecord{PhoneNumber: "+15551234567"}
	record.Append(Subscription{FlyFrom: "NYC", FlyTo: "LAX"})
	record.Append(Subscription{FlyFrom: "NYC", FlyTo: "SFO"})

	if !record.Remove(0) {
		t.Fatal("Remove(0) should report the subscription was present")
	}
	if len(record.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(record.Subscriptions))
	}
	if record.Subscriptions[0].ID != 1 {
		t.Fatalf("surviving id = %d, want 1", record.Subscriptions[0].ID)
	}

	// A later append must not collide with an id that was already issued.
	third := record.Append(Subscription{FlyFrom: "NYC", FlyTo: "MIA"})
	if third.ID != 2 {
		t.Fatalf("third id = %d, want 2", third.ID)
	}
}

func TestRecordRemoveUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	record := &PhoneSubscriptionRecord{PhoneNumber: "+15551234567"}
	record.Append(Subscription{FlyFrom: "NYC", FlyTo: "LAX"})

	if record.Remove(42) {
		t.Fatal("Remove(42) should report nothing was removed")
	}
	if len(record.Subscriptions) != 1 {
		t.Fatalf("subscriptions = %d, want 1", len(record.Subscriptions))
	}
}

func TestRecordEmpty(t *testing.T) {
	t.Parallel()

	record := &PhoneSubscriptionRecord{PhoneNumber: "+15551234567"}
	if !record.Empty() {
		t.Fatal("new record should be empty")
	}

	record.Append(Subscription{FlyFrom: "NYC", FlyTo: "LAX"})
	if record.Empty() {
		t.Fatal("record with a subscription should not be empty")
	}

	record.Remove(0)
	if !record.Empty() {
		t.Fatal("record should be empty after removing its only subscription")
	}
}
