// Package audit emits structured forensic chain-of-custody events: every
// evidence file access, hash verification outcome, export, and security
// event is logged with enough context to reconstruct what happened to an
// acquisition during a session.
//
// Grounded on the reference implementation's common/audit.rs, translated
// from tracing spans/events to log/slog records under a fixed
// "forensic_audit" component tag.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/forensiccase/containerctl/internal/forensiclog"
)

var log = forensiclog.Component("forensic_audit")

// LogEvidenceAccess records that path was opened for operation (e.g.
// "open", "info", "info_fast").
func LogEvidenceAccess(operation, path string, fileType string, fileSize int64) {
	log.Info("evidence file accessed",
		"operation", operation,
		"path", path,
		"file_type", fileType,
		"file_size", fileSize,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// LogHashVerification records the outcome of comparing a computed digest
// against an optional expected one. verified is nil when no stored hash
// was available to compare against (status = "computed").
func LogHashVerification(path, algorithm, computedHash string, expectedHash string, verified *bool) {
	status := "COMPUTED"
	if verified != nil {
		if *verified {
			status = "VERIFIED"
		} else {
			status = "MISMATCH"
		}
	}
	if expectedHash == "" {
		expectedHash = "none"
	}
	log.Info("hash verification completed",
		"operation", "hash_verification",
		"path", path,
		"algorithm", algorithm,
		"computed_hash", computedHash,
		"expected_hash", expectedHash,
		"status", status,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// LogContainerOpened records that an acquisition of containerType was
// opened with the given number of segments.
func LogContainerOpened(path, containerType string, segmentCount int) {
	log.Info("evidence container opened",
		"operation", "container_open",
		"path", path,
		"container_type", containerType,
		"segments", segmentCount,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// LogDataExport records an extract operation writing bytesExported bytes
// from source into destination.
func LogDataExport(source, destination string, bytesExported int64) {
	log.Info("evidence data exported",
		"operation", "data_export",
		"source", source,
		"destination", destination,
		"bytes_exported", bytesExported,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// LogSecurityEvent records a blocked or suspicious operation, such as a
// path-traversal attempt during extract.
func LogSecurityEvent(eventType, description, path string) {
	log.Warn("security event",
		"event_type", "security",
		"security_event", eventType,
		"description", description,
		"path", path,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// SessionContext tracks one open-to-close evidence session and logs its
// duration on Close, mirroring the reference implementation's
// Drop-scoped EvidenceAuditContext with an explicit Close call (Go has
// no destructors).
type SessionContext struct {
	EvidenceID string
	Path       string
	openedAt   time.Time
}

// NewSessionContext opens a new audit session, logging session_start
// immediately, and returns a context whose Close MUST be deferred by the
// caller to log session_end with duration.
func NewSessionContext(path string) *SessionContext {
	ctx := &SessionContext{
		EvidenceID: uuid.NewString(),
		Path:       path,
		openedAt:   time.Now().UTC(),
	}
	log.Info("evidence audit session started",
		"operation", "session_start",
		"evidence_id", ctx.EvidenceID,
		"path", ctx.Path,
		"timestamp", ctx.openedAt.Format(time.RFC3339),
	)
	return ctx
}

// LogOperation records one operation-level detail line within the
// session.
func (c *SessionContext) LogOperation(operation, details string) {
	log.Info("evidence operation",
		"evidence_id", c.EvidenceID,
		"operation", operation,
		"details", details,
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}

// Close logs session_end with the elapsed duration. Callers should
// `defer ctx.Close()` immediately after NewSessionContext.
func (c *SessionContext) Close() {
	duration := time.Since(c.openedAt)
	log.Info("evidence audit session ended",
		"operation", "session_end",
		"evidence_id", c.EvidenceID,
		"path", c.Path,
		"duration_secs", duration.Seconds(),
		"timestamp", time.Now().UTC().Format(time.RFC3339),
	)
}
