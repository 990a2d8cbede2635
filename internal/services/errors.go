// Package services defines the business logic layered over the entity
// stores and the relational repositories. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrDocumentNotFound indicates that the requested issued document
	// does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrSettingNotFound indicates that the requested setting key does
	// not exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrProtocolNotFound indicates that the requested protocol does not
	// exist.
	ErrProtocolNotFound = errors.New("protocol not found")

	// ErrEmptySubject is returned when a protocol is opened without a
	// subject line.
	ErrEmptySubject = errors.New("subject is empty")

	// ErrEmptyTitle is returned when a document is issued without a title.
	ErrEmptyTitle = errors.New("title is empty")
)
