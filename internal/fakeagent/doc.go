// Package fakeagent is an in-memory leasing agent for demos and end-to-end
// tests. It speaks the same /api/v1/chat endpoints as the real agent and
// chooses each streamed reply from keywords in the user's message; see
// ScriptFor.
package fakeagent
