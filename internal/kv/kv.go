// Package kv provides the durable key-value persistence boundary used by the
// entity stores: whole-value reads and overwrites of JSON-serialized
// collections under store-specific keys. Three backends are provided — local
// files, Redis and the relational backend via GORM — selected by
// configuration at startup.
//
// Keys are typed constants collected here rather than ad hoc strings, so a
// collision between two stores is a compile-visible mistake instead of a
// silent naming accident.
package kv

import "context"

// Key identifies one durable slot. Every entity store owns exactly one Key;
// attachment binary content lives under BlobKey-derived keys.
type Key string

// Durable keys of the entity stores.
const (
	KeyStudents    Key = "school/students"
	KeyEnrollments Key = "school/enrollments"
	KeyAttendance  Key = "school/attendance"
	KeyLessonPlans Key = "school/lesson-plans"
	KeyOccurrences Key = "school/occurrences"
	KeyProtocols   Key = "school/protocols"
	KeyQueue       Key = "school/service-queue"
	KeyTransfers   Key = "school/transfers"
	KeyAttachments Key = "school/attachments"
	KeyNews        Key = "school/news"
	KeyCalendar    Key = "school/calendar"
)

// BlobKey derives the durable key holding one attachment's binary content.
func BlobKey(id string) Key { return Key("blob/" + id) }

// Store is the persistence contract consumed by the entity stores.
//
// Semantics:
//   - Get returns (value, true, nil) when the key holds a value and
//     (nil, false, nil) when it is absent; errors are backend failures only.
//   - Set overwrites the whole value; there are no partial writes.
//   - Delete is a no-op for absent keys.
//
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
}
