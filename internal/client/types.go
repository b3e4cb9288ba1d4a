// ABOUTME: Request and response shapes for the leasing agent chat API
// ABOUTME: JSON field names match the agent's /api/v1/chat endpoints

package client

import (
	"errors"
	"fmt"
	"strings"
)

// Community is one leasing community offered in the pre-chat form.
type Community struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
}

// Lead identifies the prospective resident.
type Lead struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

// Preferences carries the unit search the lead asked for.
type Preferences struct {
	Bedrooms int    `json:"bedrooms"`
	MoveIn   string `json:"move_in"` // YYYY-MM-DD
}

// StartRequest is the body of POST /api/v1/chat/start.
type StartRequest struct {
	Lead        Lead        `json:"lead"`
	Preferences Preferences `json:"preferences"`
	CommunityID string      `json:"community_id"`
}

// StartResponse is returned by a successful start call. Message is the
// agent's welcome text.
type StartResponse struct {
	LeadID         string `json:"lead_id"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ReplyRequest is the body of POST /api/v1/chat/reply.
type ReplyRequest struct {
	LeadID         string `json:"lead_id"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ErrInvalidRequest is wrapped by validation failures.
var ErrInvalidRequest = errors.New("invalid request")

// Validate checks the fields the agent requires before a conversation can
// start.
func (r StartRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.Lead.Name) == "":
		return fmt.Errorf("%w: lead name is required", ErrInvalidRequest)
	case strings.TrimSpace(r.Lead.Email) == "":
		return fmt.Errorf("%w: lead email is required", ErrInvalidRequest)
	case !strings.Contains(r.Lead.Email, "@"):
		return fmt.Errorf("%w: lead email %q is not an address", ErrInvalidRequest, r.Lead.Email)
	case r.CommunityID == "":
		return fmt.Errorf("%w: community_id is required", ErrInvalidRequest)
	case r.Preferences.Bedrooms < 1:
		return fmt.Errorf("%w: bedrooms must be at least 1", ErrInvalidRequest)
	case r.Preferences.MoveIn == "":
		return fmt.Errorf("%w: move_in is required", ErrInvalidRequest)
	}
	return nil
}

// Validate checks that the reply targets an established conversation.
func (r ReplyRequest) Validate() error {
	if r.LeadID == "" || r.ConversationID == "" {
		return fmt.Errorf("%w: lead_id and conversation_id are required", ErrInvalidRequest)
	}
	return nil
}
