package lex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
	statex "github.com/tanpawarit/dining-concierge/dining/state"
)

const (
	contentTypePlainText = "PlainText"
	maxEventSizeBytes    = 1 << 20
)

// DecodeEvent reads one code hook event.
func DecodeEvent(r io.Reader) (CodeHookEvent, error) {
	var event CodeHookEvent
	dec := json.NewDecoder(io.LimitReader(r, maxEventSizeBytes))
	if err := dec.Decode(&event); err != nil {
		return CodeHookEvent{}, fmt.Errorf("%w: decode code hook event: %v", contractx.ErrValidation, err)
	}
	if event.SessionState.Intent.Slots == nil {
		event.SessionState.Intent.Slots = map[string]json.RawMessage{}
	}
	return event, nil
}

// Turn converts an event into the controller's input.
func (e CodeHookEvent) Turn() contractx.Turn {
	return contractx.Turn{
		SessionID:        e.SessionID,
		InvocationSource: contractx.InvocationSource(e.InvocationSource),
		IntentName:       e.SessionState.Intent.Name,
		Slots:            NormalizeSlots(e.SessionState.Intent.Slots),
	}
}

// NormalizeSlots flattens each slot to its interpreted value, falling back to the
// original value, then to a bare string. Null, unreadable or unknown slots are
// absent; Response still echoes them untouched.
func NormalizeSlots(raw map[string]json.RawMessage) statex.SlotSet {
	slots := statex.NewSlotSet()
	for name, msg := range raw {
		if !statex.IsKnownSlot(name) {
			continue
		}
		if v, ok := slotString(msg); ok {
			slots.Set(name, v)
		}
	}
	return slots
}

func slotString(msg json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", false
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", false
		}
		return s, s != ""
	}

	var parsed slot
	if err := json.Unmarshal(trimmed, &parsed); err != nil || parsed.Value == nil {
		return "", false
	}
	if iv := parsed.Value.InterpretedValue; iv != nil && *iv != "" {
		return *iv, true
	}
	return parsed.Value.OriginalValue, parsed.Value.OriginalValue != ""
}

// Response builds the code hook reply, echoing the event's slots and session attributes.
func Response(event CodeHookEvent, resp contractx.TurnResponse) CodeHookResponse {
	slots := event.SessionState.Intent.Slots
	if slots == nil {
		slots = map[string]json.RawMessage{}
	}

	action := &DialogAction{Type: string(resp.DialogAction.Type)}
	if resp.DialogAction.Type == contractx.ActionElicitSlot {
		action.SlotToElicit = resp.DialogAction.SlotToElicit
	}

	out := CodeHookResponse{
		SessionState: SessionState{
			DialogAction: action,
			Intent: Intent{
				Name:  resp.IntentName,
				Slots: slots,
				State: string(resp.IntentState),
			},
			SessionAttributes: event.SessionState.SessionAttributes,
		},
	}
	for _, m := range resp.Messages {
		if m == "" {
			continue
		}
		out.Messages = append(out.Messages, Message{ContentType: contentTypePlainText, Content: m})
	}
	return out
}
