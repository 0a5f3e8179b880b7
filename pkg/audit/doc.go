// Package audit records security relevant catalog operations.
//
// Events are written as RFC5424 syslog lines and, when
// SEEK_AUDIT_DATABASE_URL is set, persisted to the audit_messages table.
// Store.History reads an item's trail back and Store.Prune drops old rows.
//
// # Event Types
//
//   - Session events (sign in success/failure)
//   - Search events
//   - Create, update and delete of catalog items
//   - Content blob downloads
//   - Authorization checks that were denied
//   - Programme activation and rejection
//   - Publication exports
//
// # Usage
//
//	audit.Log(audit.ChangeEvent{
//		User:      "user:quentin",
//		ClientIP:  r.RemoteAddr,
//		ItemType:  "Investigation",
//		ItemID:    "12",
//		Operation: audit.OperationCreate,
//		Success:   true,
//	})
package audit
