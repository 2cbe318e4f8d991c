package shmseg

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sharedbox/sharedbox/lib/engine"
	"github.com/sharedbox/sharedbox/lib/engine/engines/shmseg/internal"
	"github.com/sharedbox/sharedbox/lib/engine/util"
)

// Snapshot file format identifiers.
const (
	magicNum        = "SBXSEG\x00"
	snapshotVersion = 1
)

// Handle implements engine.Snapshotter.
var _ engine.Snapshotter = (*Handle)(nil)

// Save persists the segment to the writer.
//
// Thread-safety: Save may run concurrently with reads and writes; it
// snapshots each entry individually, so entries written mid-save may or may
// not be included.
func (h *Handle) Save(w io.Writer) error {
	if h.closed.Load() {
		return engine.ErrClosed
	}

	bw := bufio.NewWriterSize(w, 1024*1024) // 1 MB buffer

	// Collect entry copies from all shards
	var entries []internal.Entry
	for _, shard := range h.seg.shards {
		shard.Data.Range(func(_ util.UintKey, entry internal.Entry) bool {
			valueCopy := make([]byte, len(entry.Value))
			copy(valueCopy, entry.Value)
			entries = append(entries, internal.Entry{Key: entry.Key, Value: valueCopy})
			return true
		})
	}

	// File header
	if _, err := bw.WriteString(magicNum); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint8(snapshotVersion)); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}

	// Entries
	for _, entry := range entries {
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(entry.Key))); err != nil {
			return err
		}
		if _, err := bw.WriteString(entry.Key); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint64(len(entry.Value))); err != nil {
			return err
		}
		if _, err := bw.Write(entry.Value); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Load restores entries from a snapshot produced by Save. Existing entries
// with the same keys are overwritten; capacity limits apply as for Set.
func (h *Handle) Load(r io.Reader) error {
	if h.closed.Load() {
		return engine.ErrClosed
	}

	br := bufio.NewReaderSize(r, 1024*1024)

	// File header
	magic := make([]byte, len(magicNum))
	if _, err := io.ReadFull(br, magic); err != nil {
		return fmt.Errorf("shmseg: reading snapshot magic: %w", err)
	}
	if string(magic) != magicNum {
		return fmt.Errorf("shmseg: invalid snapshot magic")
	}

	var version uint8
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("shmseg: reading snapshot version: %w", err)
	}
	if version != snapshotVersion {
		return fmt.Errorf("shmseg: unsupported snapshot version %d", version)
	}

	var numEntries uint64
	if err := binary.Read(br, binary.LittleEndian, &numEntries); err != nil {
		return fmt.Errorf("shmseg: reading entry count: %w", err)
	}

	// Length fields are untrusted input: an entry larger than the segment
	// capacity could never have been stored, so reject it before sizing any
	// allocation from it.
	maxEntryBytes := uint64(h.seg.sizeBytes)

	// Entries
	for i := uint64(0); i < numEntries; i++ {
		var keyLen uint32
		if err := binary.Read(br, binary.LittleEndian, &keyLen); err != nil {
			return fmt.Errorf("shmseg: reading key length: %w", err)
		}
		if uint64(keyLen) > maxEntryBytes {
			return fmt.Errorf("shmseg: corrupt snapshot: entry %d key length %d exceeds segment capacity %d",
				i, keyLen, maxEntryBytes)
		}
		key := make([]byte, keyLen)
		if _, err := io.ReadFull(br, key); err != nil {
			return fmt.Errorf("shmseg: reading key: %w", err)
		}

		var valueLen uint64
		if err := binary.Read(br, binary.LittleEndian, &valueLen); err != nil {
			return fmt.Errorf("shmseg: reading value length: %w", err)
		}
		if valueLen > maxEntryBytes {
			return fmt.Errorf("shmseg: corrupt snapshot: entry %d value length %d exceeds segment capacity %d",
				i, valueLen, maxEntryBytes)
		}
		value := make([]byte, valueLen)
		if _, err := io.ReadFull(br, value); err != nil {
			return fmt.Errorf("shmseg: reading value: %w", err)
		}

		if err := h.Set(string(key), value); err != nil {
			return fmt.Errorf("shmseg: restoring entry %d: %w", i, err)
		}
	}

	return nil
}
