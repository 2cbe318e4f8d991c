package testing

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/sharedbox/sharedbox/lib/engine"
)

// EngineFactory is a function that creates a new, empty engine instance.
type EngineFactory func() engine.Engine

// RunEngineTests runs a comprehensive test suite for an engine
// implementation. The factory must return a fresh, empty engine on every
// call.
func RunEngineTests(t *testing.T, name string, factory EngineFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Set&Get", func(t *testing.T) {
			testSetGet(t, factory())
		})

		t.Run("Contains", func(t *testing.T) {
			testContains(t, factory())
		})

		t.Run("Erase", func(t *testing.T) {
			testErase(t, factory())
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})

		t.Run("Size", func(t *testing.T) {
			testSize(t, factory())
		})

		t.Run("Lifecycle", func(t *testing.T) {
			testLifecycle(t, factory())
		})

		t.Run("ConcurrentWriters", func(t *testing.T) {
			testConcurrentWriters(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSetGet(t *testing.T, eng engine.Engine) {
	defer func() { _ = eng.Close() }()

	testKey := "test-key"
	testValue1 := []byte("test-value1")
	testValue2 := []byte("test-value2")

	if err := eng.Set(testKey, testValue1); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists := eng.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after Set", testKey)
	}
	if !bytes.Equal(result, testValue1) {
		t.Errorf("Expected value %s, got %s", testValue1, result)
	}

	if err := eng.Set(testKey, testValue2); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	result, exists = eng.Get(testKey)
	if !exists {
		t.Errorf("Expected key %s to exist after overwrite", testKey)
	}
	if !bytes.Equal(result, testValue2) {
		t.Errorf("Expected value %s, got %s", testValue2, result)
	}

	_, exists = eng.Get("nonexistent-key")
	if exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}

	// Get must return a copy, not a reference to the stored value
	retrievedValue, _ := eng.Get(testKey)
	retrievedValue[0] = 'X'

	originalValue, _ := eng.Get(testKey)
	if bytes.Equal(retrievedValue, originalValue) {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	// Set must store a copy, not a reference to the caller's slice
	mutated := []byte("mutate-me")
	if err := eng.Set("copy-key", mutated); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	mutated[0] = 'X'

	stored, _ := eng.Get("copy-key")
	if bytes.Equal(stored, mutated) {
		t.Errorf("Set should store a copy, not a reference to the caller's slice")
	}
}

func testContains(t *testing.T, eng engine.Engine) {
	defer func() { _ = eng.Close() }()

	if eng.Contains("missing") {
		t.Errorf("Expected Contains to be false for a never-written key")
	}

	if err := eng.Set("present", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !eng.Contains("present") {
		t.Errorf("Expected Contains to be true immediately after Set")
	}

	if !eng.Erase("present") {
		t.Fatalf("Erase failed for existing key")
	}

	if eng.Contains("present") {
		t.Errorf("Expected Contains to be false immediately after Erase")
	}
}

func testErase(t *testing.T, eng engine.Engine) {
	defer func() { _ = eng.Close() }()

	if eng.Erase("missing") {
		t.Errorf("Expected Erase to return false for a never-written key")
	}

	if err := eng.Set("doomed", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !eng.Erase("doomed") {
		t.Errorf("Expected Erase to return true for an existing key")
	}

	if _, exists := eng.Get("doomed"); exists {
		t.Errorf("Expected key to be gone after Erase")
	}

	if eng.Erase("doomed") {
		t.Errorf("Expected repeated Erase to return false")
	}
}

func testKeys(t *testing.T, eng engine.Engine) {
	defer func() { _ = eng.Close() }()

	if keys := eng.Keys(); len(keys) != 0 {
		t.Errorf("Expected no keys on a fresh engine, got %v", keys)
	}

	want := []string{"alpha", "beta", "gamma", "delta"}
	for _, k := range want {
		if err := eng.Set(k, []byte(k)); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	got := eng.Keys()
	if len(got) != len(want) {
		t.Fatalf("Expected %d keys, got %d: %v", len(want), len(got), got)
	}

	// order is unspecified, compare sorted
	sortedWant := append([]string(nil), want...)
	sort.Strings(sortedWant)
	sort.Strings(got)
	for i := range sortedWant {
		if got[i] != sortedWant[i] {
			t.Errorf("Expected keys %v, got %v", sortedWant, got)
			break
		}
	}
}

func testSize(t *testing.T, eng engine.Engine) {
	defer func() { _ = eng.Close() }()

	if eng.Size() != 0 {
		t.Errorf("Expected size 0 on a fresh engine, got %d", eng.Size())
	}

	if err := eng.Set("a", []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if eng.Size() != 1 {
		t.Errorf("Expected size 1 after first Set, got %d", eng.Size())
	}

	// overwrite must not change the size
	if err := eng.Set("a", []byte("2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if eng.Size() != 1 {
		t.Errorf("Expected size 1 after overwrite, got %d", eng.Size())
	}

	if err := eng.Set("b", []byte("3")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if eng.Size() != 2 {
		t.Errorf("Expected size 2 after second key, got %d", eng.Size())
	}

	eng.Erase("a")
	if eng.Size() != 1 {
		t.Errorf("Expected size 1 after Erase, got %d", eng.Size())
	}
}

func testLifecycle(t *testing.T, eng engine.Engine) {
	if eng.IsClosed() {
		t.Errorf("Expected a fresh engine handle to be open")
	}

	if err := eng.Unlink(); !errors.Is(err, engine.ErrStillOpen) {
		t.Errorf("Expected Unlink on an open handle to fail with ErrStillOpen, got %v", err)
	}

	if err := eng.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !eng.IsClosed() {
		t.Errorf("Expected IsClosed to be true after Close")
	}

	// Close is idempotent
	if err := eng.Close(); err != nil {
		t.Errorf("Expected repeated Close to be a no-op, got %v", err)
	}

	if err := eng.Set("k", []byte("v")); !errors.Is(err, engine.ErrClosed) {
		t.Errorf("Expected Set on a closed handle to fail with ErrClosed, got %v", err)
	}

	if err := eng.Unlink(); err != nil {
		t.Errorf("Expected Unlink after Close to succeed, got %v", err)
	}
	if !eng.IsClosed() {
		t.Errorf("Expected IsClosed to remain true after Unlink")
	}
}

func testConcurrentWriters(t *testing.T, eng engine.Engine) {
	defer func() { _ = eng.Close() }()

	const (
		numWriters       = 8
		numKeysPerWriter = 16
	)

	var wg sync.WaitGroup
	wg.Add(numWriters)

	for w := 0; w < numWriters; w++ {
		go func(writer int) {
			defer wg.Done()
			for i := 0; i < numKeysPerWriter; i++ {
				key := fmt.Sprintf("w%d-k%d", writer, i)
				if err := eng.Set(key, []byte(key)); err != nil {
					t.Errorf("concurrent Set failed: %v", err)
					return
				}
			}
		}(w)
	}

	wg.Wait()

	if eng.Size() != numWriters*numKeysPerWriter {
		t.Errorf("Expected %d keys after concurrent writes, got %d",
			numWriters*numKeysPerWriter, eng.Size())
	}

	for w := 0; w < numWriters; w++ {
		for i := 0; i < numKeysPerWriter; i++ {
			key := fmt.Sprintf("w%d-k%d", w, i)
			value, ok := eng.Get(key)
			if !ok || !bytes.Equal(value, []byte(key)) {
				t.Errorf("Expected %s to survive concurrent writes, got %q (found=%v)",
					key, value, ok)
			}
		}
	}
}
