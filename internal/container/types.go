// Package container is the top-level façade over every supported
// forensic evidence container format: it detects which parser a path
// belongs to and dispatches info/info_fast/verify/extract to the
// matching per-format session (ad1, ewf, raw, ufed), attaching
// companion-log cross-check results and archive-detection metadata
// where relevant.
package container

import (
	"github.com/forensiccase/containerctl/internal/ad1"
	"github.com/forensiccase/containerctl/internal/archivedetect"
	"github.com/forensiccase/containerctl/internal/companionlog"
	"github.com/forensiccase/containerctl/internal/ewf"
	"github.com/forensiccase/containerctl/internal/raw"
	"github.com/forensiccase/containerctl/internal/ufed"
)

// Kind identifies which per-format parser a path belongs to.
type Kind string

const (
	KindAD1        Kind = "AD1"
	KindEWF        Kind = "EWF"
	KindEWFLogical Kind = "EWF_LOGICAL"
	KindRaw        Kind = "RAW"
	KindUFED       Kind = "UFED"
	KindArchive    Kind = "ARCHIVE"
)

// Info is the fully aggregated descriptor returned by Info/InfoFast,
// carrying exactly one of the format-specific payloads plus whatever
// cross-cutting metadata applies to every container.
type Info struct {
	Path string
	Kind Kind

	AD1     *ad1.Info
	EWF     *ewf.Info
	Raw     *raw.Info
	UFED    *ufed.Info
	Archive *archivedetect.Info

	CompanionLog *companionlog.CompanionLog
}

// VerifyEntry is one hash-verification result, normalized across every
// format: AD1 emits one per file item, EWF emits one per chunk (in
// verify_chunks mode) or a single whole-image entry, RAW always emits a
// single whole-image entry.
type VerifyEntry struct {
	Path      string // empty for whole-image entries
	Status    string // ok|nok|computed|no_hash
	Algorithm string
	Computed  string
	Stored    string
	Size      uint64
}

// ProgressFunc reports (processed, total) bytes/items during a long
// verify or extract call; callers may pass nil.
type ProgressFunc func(processed, total uint64)
