package contract

import "github.com/tanpawarit/dining-concierge/dining/state"

type InvocationSource string

const (
	SourceDialogCodeHook      InvocationSource = "DialogCodeHook"
	SourceFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

type DialogActionType string

const (
	ActionElicitSlot DialogActionType = "ElicitSlot"
	ActionDelegate   DialogActionType = "Delegate"
	ActionClose      DialogActionType = "Close"
)

type IntentState string

const (
	IntentInProgress IntentState = "InProgress"
	IntentFulfilled  IntentState = "Fulfilled"
	IntentFailed     IntentState = "Failed"
)

// Turn is one dialog-engine invocation after slot normalisation.
type Turn struct {
	SessionID        string
	InvocationSource InvocationSource
	IntentName       string
	Slots            state.SlotSet
}

type DialogAction struct {
	Type         DialogActionType
	SlotToElicit string
}

type TurnResponse struct {
	DialogAction DialogAction
	IntentName   string
	IntentState  IntentState
	Messages     []string
}

// FulfillmentRequest is the queue payload written once a dialog completes.
type FulfillmentRequest struct {
	Cuisine   string `json:"Cuisine" validate:"required"`
	Location  string `json:"Location" validate:"required"`
	PartySize string `json:"PartySize" validate:"required,numeric,partysize"`
	Date      string `json:"Date" validate:"required"`
	Time      string `json:"Time" validate:"required"`
	Email     string `json:"Email" validate:"required,basicemail"`
	Timestamp string `json:"timestamp" validate:"required"`
}

type QueueMessage struct {
	ID            string
	ReceiptHandle string
	Body          string
}

type Candidate struct {
	ID      string `json:"restaurantId"`
	Cuisine string `json:"cuisine"`
	City    string `json:"city"`
}

type Detail struct {
	ID      string
	Name    string
	Address string
}

type BatchItemFailure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

// BatchResponse is the partial-batch-failure shape returned by a worker invocation.
type BatchResponse struct {
	BatchItemFailures []BatchItemFailure `json:"batchItemFailures"`
}

// TimestampLayout is ISO-8601 UTC without offset, e.g. 2024-01-01T12:00:00.
const TimestampLayout = "2006-01-02T15:04:05"
