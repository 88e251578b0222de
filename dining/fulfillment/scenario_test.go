package fulfillment

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	"github.com/tanpawarit/dining-concierge/dining/dialog"
	"github.com/tanpawarit/dining-concierge/dining/queue"
	statex "github.com/tanpawarit/dining-concierge/dining/state"
)

func TestDialogToNotificationScenario(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	q, err := queue.NewRedisQueue(client, queue.WithRedisLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewRedisQueue() error = %v", err)
	}

	now := time.Date(2024, 4, 30, 10, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	controller, err := dialog.New(q, dialog.Config{},
		dialog.WithLogger(zerolog.Nop()),
		dialog.WithClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("dialog.New() error = %v", err)
	}

	slots := statex.NewSlotSet()
	slots.Set(statex.SlotCuisine, "Italian")
	slots.Set(statex.SlotLocation, "New York")
	slots.Set(statex.SlotPartySize, "4")
	slots.Set(statex.SlotDate, "2024-05-01")
	slots.Set(statex.SlotTime, "19:00")
	slots.Set(statex.SlotEmail, "x@y.com")

	resp, err := controller.HandleTurn(context.Background(), contractx.Turn{
		SessionID:        "s-1",
		InvocationSource: contractx.SourceFulfillmentCodeHook,
		Slots:            slots,
	})
	if err != nil {
		t.Fatalf("HandleTurn() error = %v", err)
	}
	if resp.IntentState != contractx.IntentFulfilled || resp.DialogAction.Type != contractx.ActionClose {
		t.Fatalf("unexpected response: %+v", resp)
	}
	for _, want := range []string{"Italian", "New York", "4", "2024-05-01", "19:00"} {
		if !strings.Contains(resp.Messages[0], want) {
			t.Fatalf("confirmation %q missing %q", resp.Messages[0], want)
		}
	}

	search := &fakeSearch{results: map[string][]contractx.Candidate{
		"italian|new york": {{ID: "r1"}, {ID: "r2"}},
	}}
	notifier := &fakeNotifier{}
	w, err := New(q, search, defaultDetails(), notifier, Config{WaitTime: 0}, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	report, err := w.ProcessBatch(context.Background())
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if len(report.Items) != 1 || report.Items[0].Outcome != OutcomeNotified {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(notifier.sent))
	}
	email := notifier.sent[0]
	if email.recipient != "x@y.com" {
		t.Fatalf("recipient = %s", email.recipient)
	}
	for _, want := range []string{
		"Location: New York",
		"Cuisine: Italian",
		"Date/Time: 2024-05-01 19:00",
		"Party Size: 4",
		"- Lilia, located at 567 Union Ave\n- Carbone, located at 181 Thompson St",
	} {
		if !strings.Contains(email.body, want) {
			t.Fatalf("email body missing %q:\n%s", want, email.body)
		}
	}

	// The message was deleted, so nothing is left to redeliver.
	again, err := q.Receive(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected empty queue, got %+v", again)
	}
}

func TestFulfillmentPayloadTimestampIsUTC(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 4, 30, 22, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	req := dialog.NewFulfillmentRequest(statex.SlotSet{statex.SlotCuisine: "korean"}, now)

	payload, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"timestamp":"2024-05-01T05:30:00"`) {
		t.Fatalf("payload = %s", payload)
	}
}
