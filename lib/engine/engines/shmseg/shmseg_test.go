package shmseg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sharedbox/sharedbox/lib/engine"
	enginetesting "github.com/sharedbox/sharedbox/lib/engine/testing"
)

// segCounter makes segment names unique across tests in this package.
var segCounter atomic.Int64

func uniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, segCounter.Add(1))
}

func mustOpen(t *testing.T, cfg engine.Config) engine.Engine {
	t.Helper()
	eng, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return eng
}

func TestEngineConformance(t *testing.T) {
	enginetesting.RunEngineTests(t, "shmseg", func() engine.Engine {
		eng, err := Open(engine.Config{Name: uniqueName("conformance")})
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		return eng
	})
}

func TestCreateConflict(t *testing.T) {
	name := uniqueName("conflict")

	eng := mustOpen(t, engine.Config{Name: name})
	defer func() { _ = eng.Close() }()

	if _, err := Open(engine.Config{Name: name}); !errors.Is(err, engine.ErrSegmentExists) {
		t.Errorf("Expected ErrSegmentExists on duplicate create, got %v", err)
	}
}

func TestAttach(t *testing.T) {
	name := uniqueName("attach")

	if _, err := Open(engine.Config{Name: name, Attach: true}); !errors.Is(err, engine.ErrSegmentNotFound) {
		t.Errorf("Expected ErrSegmentNotFound when attaching to a missing segment, got %v", err)
	}

	creator := mustOpen(t, engine.Config{Name: name})
	if err := creator.Set("shared", []byte("data")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	attacher := mustOpen(t, engine.Config{Name: name, Attach: true})

	// both handles see the same data
	value, ok := attacher.Get("shared")
	if !ok || !bytes.Equal(value, []byte("data")) {
		t.Errorf("Expected attached handle to see %q, got %q (found=%v)", "data", value, ok)
	}

	if h, ok := creator.(*Handle); !ok || !h.Created() {
		t.Errorf("Expected creating handle to report Created=true")
	}
	if h, ok := attacher.(*Handle); !ok || h.Created() {
		t.Errorf("Expected attaching handle to report Created=false")
	}

	// closing the creator must not affect the attacher
	if err := creator.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, ok := attacher.Get("shared"); !ok {
		t.Errorf("Expected attached handle to survive the creator closing")
	}

	_ = attacher.Close()
}

func TestUnlinkDestroysSegment(t *testing.T) {
	name := uniqueName("unlink")

	eng := mustOpen(t, engine.Config{Name: name})
	if err := eng.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := eng.Unlink(); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}

	// the name can be reused after unlink
	if _, err := Open(engine.Config{Name: name, Attach: true}); !errors.Is(err, engine.ErrSegmentNotFound) {
		t.Errorf("Expected segment to be gone after Unlink, got %v", err)
	}

	fresh := mustOpen(t, engine.Config{Name: name})
	if fresh.Size() != 0 {
		t.Errorf("Expected a recreated segment to start empty, got %d keys", fresh.Size())
	}
	_ = fresh.Close()
}

func TestMaxKeysEnforcement(t *testing.T) {
	eng := mustOpen(t, engine.Config{Name: uniqueName("maxkeys"), MaxKeys: 2})
	defer func() { _ = eng.Close() }()

	if err := eng.Set("a", []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := eng.Set("b", []byte("2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := eng.Set("c", []byte("3")); !errors.Is(err, engine.ErrTooManyKeys) {
		t.Errorf("Expected ErrTooManyKeys for the third key, got %v", err)
	}

	// overwriting an existing key is always admitted
	if err := eng.Set("a", []byte("new")); err != nil {
		t.Errorf("Expected overwrite within the key limit to succeed, got %v", err)
	}

	// erasing frees a slot
	eng.Erase("b")
	if err := eng.Set("c", []byte("3")); err != nil {
		t.Errorf("Expected Set to succeed after Erase freed a slot, got %v", err)
	}
}

func TestByteCapacityEnforcement(t *testing.T) {
	// room for one small entry plus overhead, but not two
	eng := mustOpen(t, engine.Config{Name: uniqueName("capacity"), SizeBytes: 3 * entryOverheadBytes})
	defer func() { _ = eng.Close() }()

	if err := eng.Set("a", make([]byte, 16)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := eng.Set("b", make([]byte, 64)); !errors.Is(err, engine.ErrSegmentFull) {
		t.Errorf("Expected ErrSegmentFull, got %v", err)
	}

	// a shrinking overwrite is always admitted
	if err := eng.Set("a", make([]byte, 8)); err != nil {
		t.Errorf("Expected shrinking overwrite to succeed, got %v", err)
	}

	// erasing returns capacity
	eng.Erase("a")
	if err := eng.Set("b", make([]byte, 64)); err != nil {
		t.Errorf("Expected Set to succeed after Erase freed capacity, got %v", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := mustOpen(t, engine.Config{Name: uniqueName("snap-src")})
	defer func() { _ = src.Close() }()

	entries := map[string][]byte{
		"empty":  {},
		"small":  []byte("value"),
		"binary": {0x00, 0x01, 0xFF, 0xFE},
	}
	for k, v := range entries {
		if err := src.Set(k, v); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := src.(*Handle).Save(&buf); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	dst := mustOpen(t, engine.Config{Name: uniqueName("snap-dst")})
	defer func() { _ = dst.Close() }()

	if err := dst.(*Handle).Load(&buf); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if dst.Size() != len(entries) {
		t.Fatalf("Expected %d restored entries, got %d", len(entries), dst.Size())
	}
	for k, want := range entries {
		got, ok := dst.Get(k)
		if !ok || !bytes.Equal(got, want) {
			t.Errorf("Expected restored %q=%v, got %v (found=%v)", k, want, got, ok)
		}
	}
}

func TestSnapshotRejectsGarbage(t *testing.T) {
	eng := mustOpen(t, engine.Config{Name: uniqueName("snap-garbage")})
	defer func() { _ = eng.Close() }()

	if err := eng.(*Handle).Load(bytes.NewReader([]byte("not a snapshot"))); err == nil {
		t.Errorf("Expected Load to reject a malformed snapshot")
	}
}

// A snapshot with a valid header but an entry length far beyond the segment
// capacity must fail with an error, not size an allocation from the bogus
// length.
func TestSnapshotRejectsOversizedLengths(t *testing.T) {
	buildSnapshot := func(keyLen uint32, key []byte, valueLen uint64, value []byte) []byte {
		var buf bytes.Buffer
		buf.WriteString(magicNum)
		_ = binary.Write(&buf, binary.LittleEndian, uint8(snapshotVersion))
		_ = binary.Write(&buf, binary.LittleEndian, uint64(1)) // entry count
		_ = binary.Write(&buf, binary.LittleEndian, keyLen)
		buf.Write(key)
		_ = binary.Write(&buf, binary.LittleEndian, valueLen)
		buf.Write(value)
		return buf.Bytes()
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"huge value length", buildSnapshot(1, []byte("k"), 1<<62, nil)},
		{"huge key length", buildSnapshot(1<<31, nil, 0, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := mustOpen(t, engine.Config{Name: uniqueName("snap-oversized")})
			defer func() { _ = eng.Close() }()

			err := eng.(*Handle).Load(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatalf("Expected Load to reject an oversized length field")
			}
			if !strings.Contains(err.Error(), "corrupt snapshot") {
				t.Errorf("Expected a corrupt snapshot error, got %v", err)
			}
		})
	}
}
