// ABOUTME: HTML export of a conversation transcript
// ABOUTME: Message bodies are rendered as markdown with goldmark; raw HTML is dropped

package transcript

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/2389/leasing-chat/internal/conversation"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

var page = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Conversation {{.ConversationID}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 42rem; margin: 2rem auto; }
.msg { border-radius: 0.5rem; padding: 0.25rem 1rem; margin: 0.75rem 0; }
.user { background: #e8f5e9; }
.agent { background: #e3f2fd; }
.meta { color: #777; font-size: 0.8rem; }
</style>
</head>
<body>
<h1>Conversation {{.ConversationID}}</h1>
<p class="meta">Lead {{.LeadID}} &middot; exported {{.Exported}}</p>
{{range .Messages}}<div class="msg {{.Sender}}">
<p class="meta">{{.Sender}} &middot; {{.Time}}{{if .Streaming}} &middot; still streaming{{end}}</p>
{{.Body}}</div>
{{end}}</body>
</html>
`))

type htmlMessage struct {
	Sender    string
	Time      string
	Streaming bool
	Body      template.HTML
}

// RenderHTML renders conv as a standalone HTML page. Message content is
// treated as markdown.
func RenderHTML(conv conversation.Conversation) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, conv, time.Now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHTML writes the HTML page for conv to w, stamped with exported.
func WriteHTML(w io.Writer, conv conversation.Conversation, exported time.Time) error {
	msgs := make([]htmlMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		var body bytes.Buffer
		if err := markdown.Convert([]byte(m.Content), &body); err != nil {
			return fmt.Errorf("rendering message %s: %w", m.ID, err)
		}
		msgs = append(msgs, htmlMessage{
			Sender:    string(m.Sender),
			Time:      m.CreatedAt.Format("2006-01-02 15:04"),
			Streaming: m.Streaming,
			// goldmark escapes text and omits raw HTML unless WithUnsafe is set.
			Body: template.HTML(body.String()),
		})
	}

	data := struct {
		ConversationID string
		LeadID         string
		Exported       string
		Messages       []htmlMessage
	}{
		ConversationID: conv.ConversationID,
		LeadID:         conv.LeadID,
		Exported:       exported.Format(time.RFC1123),
		Messages:       msgs,
	}

	if err := page.Execute(w, data); err != nil {
		return fmt.Errorf("rendering transcript: %w", err)
	}
	return nil
}
