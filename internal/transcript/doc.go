// Package transcript turns conversation snapshots into something people
// read: a live terminal view (Printer) and an HTML export (RenderHTML).
// Both only ever see deep copies handed out by the conversation package.
package transcript
