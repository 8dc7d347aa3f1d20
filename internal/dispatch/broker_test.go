package dispatch_test

import (
	"testing"

	"github.com/ankitx1357-boop/infralith-architecture/internal/dispatch"
)

func TestBrokerSingleSubscriber(t *testing.T) {
	b := dispatch.NewBroker()
	ch, unsub := b.Subscribe("sess_1")
	defer unsub()

	events := []dispatch.Event{
		{Tag: "PLANNER", Msg: "plan drafted"},
		{Tag: "CODER", Msg: "implementing"},
		{Tag: "SYSTEM", Msg: "done"},
	}
	for _, ev := range events {
		b.Publish("sess_1", ev)
	}
	b.Close("sess_1")

	var got []dispatch.Event
	for ev := range ch {
		got = append(got, ev)
	}

	if len(got) != len(events) {
		t.Fatalf("got %d events, want %d", len(got), len(events))
	}
	for i, ev := range got {
		if ev != events[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, ev, events[i])
		}
	}
}

func TestBrokerMultipleSubscribers(t *testing.T) {
	b := dispatch.NewBroker()
	ch1, unsub1 := b.Subscribe("job_1")
	defer unsub1()
	ch2, unsub2 := b.Subscribe("job_1")
	defer unsub2()

	b.Publish("job_1", dispatch.Event{Tag: "LOADING_ASSETS", Msg: "5"})
	b.Close("job_1")

	var got1, got2 []dispatch.Event
	for ev := range ch1 {
		got1 = append(got1, ev)
	}
	for ev := range ch2 {
		got2 = append(got2, ev)
	}

	if len(got1) != 1 || got1[0].Msg != "5" {
		t.Errorf("subscriber 1 got %v", got1)
	}
	if len(got2) != 1 || got2[0].Msg != "5" {
		t.Errorf("subscriber 2 got %v", got2)
	}
}

func TestBrokerLateSubscriberGetsClosed(t *testing.T) {
	b := dispatch.NewBroker()
	b.Publish("sess_1", dispatch.Event{Tag: "PLANNER", Msg: "early"})
	b.Close("sess_1")

	ch, unsub := b.Subscribe("sess_1")
	defer unsub()

	if _, ok := <-ch; ok {
		t.Error("late subscriber should get a closed channel")
	}
}

func TestBrokerUnsubscribeStopsDelivery(t *testing.T) {
	b := dispatch.NewBroker()
	ch, unsub := b.Subscribe("sess_1")
	unsub()

	b.Publish("sess_1", dispatch.Event{Tag: "PLANNER", Msg: "after unsub"})
	b.Close("sess_1")

	select {
	case ev, ok := <-ch:
		if ok {
			t.Errorf("got unexpected event %+v after unsubscribe", ev)
		}
	default:
		// No data — expected.
	}
}

func TestBrokerReopenAllowsRepublish(t *testing.T) {
	b := dispatch.NewBroker()
	b.Publish("sess_1", dispatch.Event{Tag: "PLANNER", Msg: "first run"})
	b.Close("sess_1")
	b.Reopen("sess_1")

	ch, unsub := b.Subscribe("sess_1")
	defer unsub()

	b.Publish("sess_1", dispatch.Event{Tag: "PLANNER", Msg: "second run"})
	b.Close("sess_1")

	var got []dispatch.Event
	for ev := range ch {
		got = append(got, ev)
	}
	if len(got) != 1 || got[0].Msg != "second run" {
		t.Errorf("got %v, want only the second-run event", got)
	}
}

func TestBrokerPublishToUnknownEntityIsNoop(t *testing.T) {
	b := dispatch.NewBroker()
	// Should not panic.
	b.Publish("sess_nonexistent", dispatch.Event{Tag: "PLANNER", Msg: "line"})
	b.Close("sess_nonexistent")
}
