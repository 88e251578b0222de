package notify

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	contractx "github.com/tanpawarit/dining-concierge/dining/contract"
)

const (
	SubjectSuggestions = "Dining Concierge Chatbot - Dining Suggestions"
	SubjectNoMatch     = "Dining Concierge Chatbot - No matches found"
)

//go:embed template/*.txt
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "template/*.txt"))

// Message is a composed plain-text email.
type Message struct {
	Subject string
	Body    string
}

type suggestionsView struct {
	contractx.FulfillmentRequest
	Restaurants []contractx.Detail
}

// Suggestions renders the picks email. Restaurants are listed in the given order.
func Suggestions(req contractx.FulfillmentRequest, restaurants []contractx.Detail) (Message, error) {
	body, err := render("suggestions.txt", suggestionsView{FulfillmentRequest: req, Restaurants: restaurants})
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: SubjectSuggestions, Body: body}, nil
}

func NoMatch(req contractx.FulfillmentRequest) (Message, error) {
	body, err := render("no_match.txt", req)
	if err != nil {
		return Message{}, err
	}
	return Message{Subject: SubjectNoMatch, Body: body}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	// Template files end with a newline that is not part of the body.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
