package raw

import (
	"fmt"

	"github.com/edsrzf/mmap-go"

	"github.com/forensiccase/containerctl/internal/hashing"
)

// mmapThreshold is the segment size below which mmap'ing a segment isn't
// worth the syscall overhead; smaller segments fall back to a plain read.
const mmapThreshold = 64 * 1024 * 1024

const pipelineBufferSize = 16 * 1024 * 1024
const pipelineChannelDepth = 2

// ProgressFunc reports (bytes_processed, total_bytes) at buffer or
// segment boundaries.
type ProgressFunc func(processed, total int64)

// Verify streams the whole virtual image through algo and returns a
// single whole-image entry. BLAKE3 and XXH3 take the mmap fast path;
// every other algorithm uses the producer-consumer pipeline.
func (s *Session) Verify(algo hashing.Algorithm, progress ProgressFunc) (VerifyEntry, error) {
	hasher, err := hashing.New(algo)
	if err != nil {
		return VerifyEntry{}, err
	}

	switch algo {
	case hashing.BLAKE3, hashing.XXH3:
		if err := s.verifyMmap(hasher, progress); err != nil {
			return VerifyEntry{}, err
		}
	default:
		if err := s.verifyPipelined(hasher, progress); err != nil {
			return VerifyEntry{}, err
		}
	}

	return VerifyEntry{Algorithm: string(algo), Computed: hasher.Finalize(), Size: s.TotalSize}, nil
}

// VerifyChunks iterates segments independently, hashing each one and
// reporting a per-segment entry — useful for locating which segment a
// damaged region falls in, since a whole-image verify only tells the
// caller the acquisition as a whole failed.
func (s *Session) VerifyChunks(algo hashing.Algorithm) ([]ChunkVerifyEntry, error) {
	entries := make([]ChunkVerifyEntry, 0, len(s.segs))
	for _, seg := range s.segs {
		hasher, err := hashing.New(algo)
		if err != nil {
			return nil, err
		}
		if err := hashSegmentSequential(seg, hasher); err != nil {
			return nil, err
		}
		entries = append(entries, ChunkVerifyEntry{
			SegmentPath: seg.path,
			SegmentSize: seg.size,
			Computed:    hasher.Finalize(),
		})
	}
	return entries, nil
}

// verifyMmap memory-maps each segment in order and updates hasher
// directly over the mapped bytes; segments under mmapThreshold are read
// into memory instead, since mapping small files isn't worth the
// syscalls.
func (s *Session) verifyMmap(hasher hashing.StreamingHasher, progress ProgressFunc) error {
	var processed int64
	for _, seg := range s.segs {
		if seg.size == 0 {
			continue
		}
		if seg.size < mmapThreshold {
			if err := hashSegmentSequential(seg, hasher); err != nil {
				return err
			}
		} else {
			mm, err := mmap.Map(seg.file, mmap.RDONLY, 0)
			if err != nil {
				return fmt.Errorf("raw: mmap %s: %w", seg.path, err)
			}
			_, werr := hasher.Update(mm)
			unmapErr := mm.Unmap()
			if werr != nil {
				return fmt.Errorf("raw: hash mmap %s: %w", seg.path, werr)
			}
			if unmapErr != nil {
				return fmt.Errorf("raw: unmap %s: %w", seg.path, unmapErr)
			}
		}
		processed += seg.size
		if progress != nil {
			progress(processed, s.TotalSize)
		}
	}
	return nil
}

type pipelineBuffer struct {
	data []byte
	err  error
}

// verifyPipelined runs a single-producer/single-consumer pipeline: one
// goroutine reads fixed-size buffers sequentially across segments and
// pushes them onto a bounded channel; this goroutine pops buffers and
// feeds the streaming hasher, so I/O and hashing overlap.
func (s *Session) verifyPipelined(hasher hashing.StreamingHasher, progress ProgressFunc) error {
	ch := make(chan pipelineBuffer, pipelineChannelDepth)

	go func() {
		defer close(ch)
		var offset int64
		for offset < s.TotalSize {
			n := pipelineBufferSize
			if remaining := s.TotalSize - offset; int64(n) > remaining {
				n = int(remaining)
			}
			chunk := make([]byte, n)
			read, err := s.ReadAt(chunk, offset)
			if err != nil {
				ch <- pipelineBuffer{err: err}
				return
			}
			ch <- pipelineBuffer{data: chunk[:read]}
			offset += int64(read)
			if read == 0 {
				return
			}
		}
	}()

	var processed int64
	for buffer := range ch {
		if buffer.err != nil {
			return buffer.err
		}
		if _, err := hasher.Update(buffer.data); err != nil {
			return fmt.Errorf("raw: hash update: %w", err)
		}
		processed += int64(len(buffer.data))
		if progress != nil {
			progress(processed, s.TotalSize)
		}
	}
	return nil
}

func hashSegmentSequential(seg segmentHandle, hasher hashing.StreamingHasher) error {
	buf := make([]byte, pipelineBufferSize)
	var offset int64
	for offset < seg.size {
		want := len(buf)
		if remaining := seg.size - offset; int64(want) > remaining {
			want = int(remaining)
		}
		n, err := seg.file.ReadAt(buf[:want], offset)
		if n > 0 {
			if _, werr := hasher.Update(buf[:n]); werr != nil {
				return fmt.Errorf("raw: hash update: %w", werr)
			}
			offset += int64(n)
		}
		if err != nil {
			if offset >= seg.size {
				break
			}
			return fmt.Errorf("raw: read segment %s: %w", seg.path, err)
		}
	}
	return nil
}
