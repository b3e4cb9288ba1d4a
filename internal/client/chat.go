// ABOUTME: Chat endpoints: community listing, conversation start and streamed reply
// ABOUTME: Reply hands back the raw event stream body for the caller to decode

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// ListCommunities returns the communities a lead can choose from.
func (c *Client) ListCommunities(ctx context.Context) ([]Community, error) {
	var out []Community
	if err := c.doJSON(ctx, http.MethodGet, communitiesPath, nil, &out); err != nil {
		return nil, fmt.Errorf("listing communities: %w", err)
	}
	return out, nil
}

// StartChat creates the lead and conversation and returns the agent's
// welcome message.
func (c *Client) StartChat(ctx context.Context, req StartRequest) (*StartResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out StartResponse
	if err := c.doJSON(ctx, http.MethodPost, startPath, req, &out); err != nil {
		return nil, fmt.Errorf("starting chat: %w", err)
	}
	if out.LeadID == "" || out.ConversationID == "" {
		return nil, fmt.Errorf("starting chat: response missing lead_id or conversation_id")
	}

	c.logger.Debug("chat started", "lead_id", out.LeadID, "conversation_id", out.ConversationID)
	return &out, nil
}

// Reply posts a user message and returns the response body once the agent
// has accepted it with 200. The body carries the event stream and must be
// closed by the caller. ctx governs the whole stream, not just the request;
// no request timeout applies here.
func (c *Client) Reply(ctx context.Context, req ReplyRequest) (io.ReadCloser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, replyPath, req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending reply: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("sending reply: %w", handleErrorResponse(resp))
	}

	c.logger.Debug("reply stream opened", "conversation_id", req.ConversationID)
	return resp.Body, nil
}
