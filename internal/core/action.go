package core

import (
	"errors"
	"fmt"
	"strings"
)

// Due actions the assistant may propose. Proposals are never executed
// directly — the user confirms them first.
const (
	ActionSettle = "settle"
	ActionReopen = "reopen"
)

// DueActionProposal is the AI-generated proposal to transition a due.
type DueActionProposal struct {
	Action        string  `json:"action" jsonschema_description:"The due transition to perform: 'settle' (mark as paid/received) or 'reopen' (back to pending)"`
	DueID         string  `json:"due_id" jsonschema_description:"The exact id of the due from the provided due list"`
	PaymentMethod string  `json:"payment_method,omitempty" jsonschema_description:"Optional payment method mentioned by the user (e.g. 'PIX', 'boleto', 'cartão')"`
	Observations  string  `json:"observations,omitempty" jsonschema_description:"Optional note to attach to the settlement"`
	Confidence    float64 `json:"confidence" jsonschema_description:"Confidence score between 0.0 and 1.0"`
	Reasoning     string  `json:"reasoning" jsonschema_description:"Explanation for the proposed transition"`
}

// DueActionResponse wraps the AI output to branch between a proposal, a plain
// answer, or a clarifying question. Exactly one branch is populated.
type DueActionResponse struct {
	IsQuestion bool               `json:"is_question" jsonschema_description:"Set to true ONLY if you lack enough information to propose a transition or answer"`
	Question   string             `json:"question,omitempty" jsonschema_description:"Required if is_question is true: what to ask the user"`
	Answer     string             `json:"answer,omitempty" jsonschema_description:"A direct answer when the user asked about their dues rather than requesting a transition"`
	Proposal   *DueActionProposal `json:"proposal,omitempty" jsonschema_description:"Required when the user requested a due transition"`
}

// Normalize cleans up common formatting issues in LLM output.
func (p *DueActionProposal) Normalize() {
	p.Action = strings.ToLower(strings.TrimSpace(p.Action))
	p.DueID = strings.TrimSpace(p.DueID)
	if strings.ToLower(p.DueID) == "null" {
		p.DueID = ""
	}
}

// Validate enforces the action contract before anything is shown to the user.
func (p *DueActionProposal) Validate() error {
	if p.Action != ActionSettle && p.Action != ActionReopen {
		return fmt.Errorf("unknown action %q", p.Action)
	}
	if p.DueID == "" {
		return errors.New("proposal must reference a due id")
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0, 1], got %v", p.Confidence)
	}
	return nil
}
