package container

import (
	"fmt"
	"os"

	"github.com/forensiccase/containerctl/internal/ad1"
	"github.com/forensiccase/containerctl/internal/archivedetect"
	"github.com/forensiccase/containerctl/internal/audit"
	"github.com/forensiccase/containerctl/internal/companionlog"
	"github.com/forensiccase/containerctl/internal/config"
	"github.com/forensiccase/containerctl/internal/ewf"
	"github.com/forensiccase/containerctl/internal/hashing"
	"github.com/forensiccase/containerctl/internal/pathsec"
	"github.com/forensiccase/containerctl/internal/pathutil"
	"github.com/forensiccase/containerctl/internal/raw"
	"github.com/forensiccase/containerctl/internal/ufed"
)

// resolveConfig returns cfg, or config.Default() when the caller passed
// nil, so every façade entry point works without requiring every call
// site to construct a Config by hand.
func resolveConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

func ad1Options(cfg *config.Config) ad1.Options {
	return ad1.Options{
		ItemCapacity:           cfg.Cache.ItemCapacity,
		ParallelChunkThreshold: cfg.Cache.ParallelChunkThreshold,
	}
}

// discoverCompanionAsync starts companion-log discovery for path on its
// own goroutine and returns a channel carrying the result (nil on
// failure), letting the caller proceed with the heavier format-specific
// open in parallel rather than serializing the two.
func discoverCompanionAsync(path string) <-chan *companionlog.CompanionLog {
	out := make(chan *companionlog.CompanionLog, 1)
	go func() {
		found, err := companionlog.Discover(path)
		if err != nil {
			out <- nil
			return
		}
		out <- found
	}()
	return out
}

// Info opens path strictly — every segment of a multi-segment
// acquisition MUST be present — and returns its fully aggregated
// descriptor, including the item tree for AD1 when includeTree is set.
// cfg supplies the AD1 decompression cache/concurrency tuning; pass nil
// to use config.Default().
func Info(path string, includeTree bool, cfg *config.Config) (*Info, error) {
	cfg = resolveConfig(cfg)
	kind, err := Detect(path)
	if err != nil {
		return nil, err
	}

	companionCh := discoverCompanionAsync(path)
	info := &Info{Path: path, Kind: kind}

	switch kind {
	case KindAD1:
		d, err := ad1.GetInfo(path, includeTree, ad1Options(cfg))
		if err != nil {
			return nil, err
		}
		info.AD1 = d
		audit.LogContainerOpened(path, string(kind), len(d.SegmentFiles))
	case KindEWF, KindEWFLogical:
		d, err := ewf.GetInfo(path)
		if err != nil {
			return nil, err
		}
		info.EWF = d
		audit.LogContainerOpened(path, string(kind), d.SegmentCount)
	case KindRaw:
		d, err := raw.GetInfo(path)
		if err != nil {
			return nil, err
		}
		info.Raw = d
		audit.LogContainerOpened(path, string(kind), len(d.SegmentFiles))
	case KindUFED:
		d, err := ufed.GetInfo(path)
		if err != nil {
			return nil, err
		}
		info.UFED = d
		audit.LogContainerOpened(path, string(kind), 1)
	case KindArchive:
		d, err := archivedetect.Detect(path)
		if err != nil {
			return nil, err
		}
		info.Archive = d
		audit.LogContainerOpened(path, string(kind), 1)
	}

	info.CompanionLog = <-companionCh
	log.Debug("container info assembled", "path", path, "kind", kind, "companion_log", info.CompanionLog != nil)
	return info, nil
}

// InfoFast opens only path's headers, tolerating missing non-first
// segments, and enumerates whichever segments it does find. AD1 and EWF
// have a dedicated header-only path; RAW, UFED, and archive detection
// are already header-only by construction.
func InfoFast(path string) (*Info, error) {
	kind, err := Detect(path)
	if err != nil {
		return nil, err
	}

	companionCh := discoverCompanionAsync(path)
	info := &Info{Path: path, Kind: kind}

	switch kind {
	case KindAD1:
		d, err := ad1.InfoFast(path)
		if err != nil {
			return nil, err
		}
		info.AD1 = d
	case KindEWF, KindEWFLogical:
		d, err := ewf.QuickInfo(path)
		if err != nil {
			return nil, err
		}
		info.EWF = d
	case KindRaw:
		d, err := raw.GetInfo(path)
		if err != nil {
			return nil, err
		}
		info.Raw = d
	case KindUFED:
		d, err := ufed.GetInfo(path)
		if err != nil {
			return nil, err
		}
		info.UFED = d
	case KindArchive:
		d, err := archivedetect.Detect(path)
		if err != nil {
			return nil, err
		}
		info.Archive = d
	}

	info.CompanionLog = <-companionCh
	audit.LogEvidenceAccess("info_fast", path, string(kind), fileSizeOrZero(path))
	return info, nil
}

func fileSizeOrZero(path string) int64 {
	st, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return st.Size()
}

// Verify streams the virtual image (or per-item payloads for AD1) under
// algoName and returns one verification entry per item (AD1), a single
// whole-image entry (EWF, RAW); formats that carry no verifiable payload
// (UFED, archive) return an error. cfg supplies the AD1 decompression
// cache/concurrency tuning; pass nil to use config.Default().
func Verify(path string, algoName string, cfg *config.Config) ([]VerifyEntry, error) {
	cfg = resolveConfig(cfg)
	kind, err := Detect(path)
	if err != nil {
		return nil, err
	}
	algo, err := hashing.ParseAlgorithm(algoName)
	if err != nil {
		return nil, err
	}

	var out []VerifyEntry
	switch kind {
	case KindAD1:
		entries, err := ad1.Verify(path, algo, ad1Options(cfg))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			out = append(out, VerifyEntry{
				Path: e.Path, Status: e.Status, Algorithm: e.Algorithm,
				Computed: e.Computed, Stored: e.Stored, Size: e.Size,
			})
			logVerifyAudit(path, e.Algorithm, e.Computed, e.Stored)
		}
	case KindEWF, KindEWFLogical:
		s, err := ewf.Open(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		e, err := s.Verify(algo)
		if err != nil {
			return nil, err
		}
		out = append(out, VerifyEntry{Status: e.Status, Algorithm: e.Algorithm, Computed: e.Computed, Stored: e.Stored, Size: e.Size})
		logVerifyAudit(path, e.Algorithm, e.Computed, e.Stored)
	case KindRaw:
		e, err := raw.Verify(path, algo, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, VerifyEntry{Status: "computed", Algorithm: e.Algorithm, Computed: e.Computed, Size: uint64(e.Size)})
		logVerifyAudit(path, e.Algorithm, e.Computed, "")
	default:
		return nil, fmt.Errorf("container: %s has no verifiable payload for kind %s", path, kind)
	}
	return out, nil
}

// VerifyChunks runs EWF's per-chunk verify mode, for locating damaged
// regions of a physical/logical image. It is only meaningful for EWF.
func VerifyChunks(path string, algoName string) ([]VerifyEntry, error) {
	kind, err := Detect(path)
	if err != nil {
		return nil, err
	}
	if kind != KindEWF && kind != KindEWFLogical {
		return nil, fmt.Errorf("container: verify_chunks is only supported for EWF containers, got %s", kind)
	}
	algo, err := hashing.ParseAlgorithm(algoName)
	if err != nil {
		return nil, err
	}
	s, err := ewf.Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	chunks, err := s.VerifyChunks(algo)
	if err != nil {
		return nil, err
	}
	out := make([]VerifyEntry, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, VerifyEntry{
			Status: c.Status, Algorithm: c.Algorithm, Computed: c.Computed, Size: c.Size,
		})
	}
	return out, nil
}

func logVerifyAudit(path, algorithm, computed, stored string) {
	var verified *bool
	if stored != "" {
		ok := hashing.HashesMatch(computed, stored)
		verified = &ok
	}
	audit.LogHashVerification(path, algorithm, computed, stored, verified)
}

// Extract writes path's payload to outputDir: AD1's full item tree
// preserving subtree layout and recovered timestamps, or EWF/RAW as a
// reconstructed raw image. An empty outputDir falls back to
// cfg.Output.BaseDir. outputDir is validated against path traversal
// before any write occurs, unless cfg.Security.AllowOutsideBase disables
// that guard. cfg may be nil to use config.Default().
func Extract(path, outputDir string, cfg *config.Config) error {
	cfg = resolveConfig(cfg)
	kind, err := Detect(path)
	if err != nil {
		return err
	}

	if outputDir == "" {
		outputDir = cfg.Output.BaseDir
	}

	if cfg.Security.AllowOutsideBase {
		log.Warn("path traversal guard disabled by configuration", "output_dir", outputDir)
	} else if !pathsec.IsSafePath(outputDir) {
		audit.LogSecurityEvent("path_traversal", "rejected extract output directory", outputDir)
		return fmt.Errorf("container: %w: %q", pathsec.ErrTraversal, outputDir)
	}
	if err := pathutil.CheckDirectoryWritable(outputDir); err != nil {
		return fmt.Errorf("container: extract destination: %w", err)
	}

	switch kind {
	case KindAD1:
		if err := ad1.Extract(path, outputDir, ad1Options(cfg)); err != nil {
			return err
		}
	case KindEWF, KindEWFLogical:
		if err := ewf.Extract(path, outputDir); err != nil {
			return err
		}
	case KindRaw:
		if err := raw.Extract(path, outputDir, nil); err != nil {
			return err
		}
	default:
		return fmt.Errorf("container: %s has no extract operation for kind %s", path, kind)
	}

	size := fileSizeOrZero(path)
	audit.LogDataExport(path, outputDir, size)
	return nil
}
