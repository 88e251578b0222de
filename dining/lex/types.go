// Package lex maps the dialog engine's code hook payloads to and from dialog turns.
package lex

import "encoding/json"

type CodeHookEvent struct {
	InvocationSource string       `json:"invocationSource"`
	SessionID        string       `json:"sessionId"`
	InputTranscript  string       `json:"inputTranscript,omitempty"`
	SessionState     SessionState `json:"sessionState"`
}

type SessionState struct {
	DialogAction      *DialogAction     `json:"dialogAction,omitempty"`
	Intent            Intent            `json:"intent"`
	SessionAttributes map[string]string `json:"sessionAttributes,omitempty"`
}

// Intent keeps slots raw so they can be echoed back untouched.
type Intent struct {
	Name              string                     `json:"name"`
	Slots             map[string]json.RawMessage `json:"slots"`
	State             string                     `json:"state,omitempty"`
	ConfirmationState string                     `json:"confirmationState,omitempty"`
}

type DialogAction struct {
	Type         string `json:"type"`
	SlotToElicit string `json:"slotToElicit,omitempty"`
}

type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type CodeHookResponse struct {
	SessionState SessionState `json:"sessionState"`
	Messages     []Message    `json:"messages,omitempty"`
}

type slot struct {
	Value *slotValue `json:"value"`
}

type slotValue struct {
	OriginalValue    string  `json:"originalValue"`
	InterpretedValue *string `json:"interpretedValue"`
}
