// Package store provides the observation ledger using SQLite.
//
// # Scope
//
// Only telemetry is stored: actions the agent determined, agent errors,
// unknown frames, stream failures and how each reply was finalized. The
// conversation transcript itself lives in memory and is never persisted.
//
// # Implementations
//
//   - SQLiteStore: modernc.org/sqlite (pure Go), WAL mode, schema created on
//     open and additive column migrations applied automatically
//   - MockStore: in-memory, for tests
//
// # Usage
//
//	s, err := store.NewSQLiteStore(cfg.Telemetry.DatabasePath)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	obs, err := s.ListObservations(ctx, conversationID, 50)
package store
