// Package telemetry provides conversation.Observer implementations.
//
//   - LogObserver: structured slog output
//   - Recorder: persists to the store's observation ledger
//   - Bus: publishes JSON Records over a watermill publisher (an in-process
//     GoChannel by default); Listen consumes them
//   - Multi: fan-out to several observers
//
// Observers run on the reply read loop and must return quickly. Failures to
// record or publish are logged and never reach the conversation.
package telemetry
