package ad1

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sort"

	"github.com/forensiccase/containerctl/internal/cerrors"
	"github.com/sourcegraph/conc/pool"
)

type compressedChunk struct {
	index int
	data  []byte
}

// readFileData returns the decompressed payload of item, using the
// session's FIFO cache to avoid re-inflating previously read items.
func (s *Session) readFileData(item Item) ([]byte, error) {
	if item.DecompressedSize == 0 {
		return nil, nil
	}
	if cached, ok := s.cache.get(item.ID); ok {
		return cached, nil
	}
	if item.ZlibMetadataAddr == 0 {
		return nil, fmt.Errorf("ad1: item %q missing zlib metadata address", item.Name)
	}

	chunkCount, err := s.readU64(item.ZlibMetadataAddr)
	if err != nil {
		return nil, err
	}
	addresses := make([]uint64, 0, chunkCount+1)
	for i := uint64(0); i <= chunkCount; i++ {
		addr, err := s.readU64(item.ZlibMetadataAddr + (i+1)*8)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}

	var data []byte
	if chunkCount < uint64(s.opts.ParallelChunkThreshold) {
		data, err = s.decompressSequential(addresses, int(item.DecompressedSize))
	} else {
		data, err = s.decompressParallel(addresses, int(item.DecompressedSize))
	}
	if err != nil {
		return nil, err
	}

	s.cache.put(item.ID, data)
	return data, nil
}

func inflate(compressed []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("ad1: %w: zlib reader: %v", cerrors.ErrDecompressionFailed, err)
	}
	defer zr.Close()
	chunk, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("ad1: %w: zlib inflate: %v", cerrors.ErrDecompressionFailed, err)
	}
	return chunk, nil
}

// decompressSequential handles small files (fewer chunks than the
// session's parallel threshold) with straight-line inflate-and-copy.
func (s *Session) decompressSequential(addresses []uint64, decompressedSize int) ([]byte, error) {
	chunkCount := len(addresses) - 1
	output := make([]byte, decompressedSize)
	dataIndex := 0

	for i := 0; i < chunkCount; i++ {
		start, end := addresses[i], addresses[i+1]
		if end <= start {
			continue
		}
		compressed, err := s.readBytes(start, int(end-start))
		if err != nil {
			return nil, err
		}
		chunk, err := inflate(compressed)
		if err != nil {
			return nil, err
		}
		endIndex := dataIndex + len(chunk)
		if endIndex > len(output) {
			endIndex = len(output)
		}
		copy(output[dataIndex:endIndex], chunk[:endIndex-dataIndex])
		dataIndex = endIndex
	}
	return output, nil
}

// decompressParallel pre-reads every compressed chunk sequentially (I/O
// bound) then inflates them concurrently (CPU bound) for larger files.
func (s *Session) decompressParallel(addresses []uint64, decompressedSize int) ([]byte, error) {
	chunkCount := len(addresses) - 1

	var chunks []compressedChunk
	for i := 0; i < chunkCount; i++ {
		start, end := addresses[i], addresses[i+1]
		if end <= start {
			continue
		}
		compressed, err := s.readBytes(start, int(end-start))
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, compressedChunk{index: i, data: compressed})
	}

	type chunkResult struct {
		compressedChunk
		err error
	}

	results := pool.NewWithResults[chunkResult]().WithMaxGoroutines(8)
	for _, c := range chunks {
		c := c
		results.Go(func() chunkResult {
			inflated, err := inflate(c.data)
			if err != nil {
				return chunkResult{compressedChunk: compressedChunk{index: c.index}, err: err}
			}
			return chunkResult{compressedChunk: compressedChunk{index: c.index, data: inflated}}
		})
	}
	decoded := results.Wait()
	sort.Slice(decoded, func(i, j int) bool { return decoded[i].index < decoded[j].index })

	// Results are sorted back into chunk-index order before assembly
	// (the pool returns them in completion order), so the first error in
	// index order is reported; this matches decompressSequential's
	// fail-fast behavior on a corrupt zlib stream.
	output := make([]byte, decompressedSize)
	dataIndex := 0
	for _, chunk := range decoded {
		if chunk.err != nil {
			return nil, chunk.err
		}
		endIndex := dataIndex + len(chunk.data)
		if endIndex > len(output) {
			endIndex = len(output)
		}
		copy(output[dataIndex:endIndex], chunk.data[:endIndex-dataIndex])
		dataIndex = endIndex
	}
	return output, nil
}
