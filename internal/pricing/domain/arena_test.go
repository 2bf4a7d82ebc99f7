package domain

import (
	"errors"
	"testing"
	"unsafe"
)

func TestArenaAllocAlignment(t *testing.T) {
	arena := NewArena(1024)

	if _, err := arena.Alloc(3, 1); err != nil {
		t.Fatalf("Alloc(3, 1) error: %v", err)
	}

	floats, err := arena.Floats(4)
	if err != nil {
		t.Fatalf("Floats(4) error: %v", err)
	}
	if addr := uintptr(unsafe.Pointer(&floats[0])); addr%8 != 0 {
		t.Errorf("Floats buffer at %#x, want 8-byte aligned", addr)
	}
	if arena.Used() != 8+4*8 {
		t.Errorf("Used() = %d, want %d", arena.Used(), 8+4*8)
	}
}

func TestArenaExhaustion(t *testing.T) {
	arena := NewArena(64)

	if _, err := arena.Floats(8); err != nil {
		t.Fatalf("Floats(8) error: %v", err)
	}
	if _, err := arena.Floats(1); !errors.Is(err, ErrArenaExhausted) {
		t.Errorf("Floats(1) on full arena error = %v, want ErrArenaExhausted", err)
	}

	arena.Reset()
	if arena.Used() != 0 {
		t.Errorf("Used() after Reset = %d, want 0", arena.Used())
	}
	if _, err := arena.Floats(8); err != nil {
		t.Errorf("Floats(8) after Reset error: %v", err)
	}
}

func TestArenaReuseZeroesBuffers(t *testing.T) {
	arena := NewArena(256)

	first, err := arena.Floats(16)
	if err != nil {
		t.Fatalf("Floats(16) error: %v", err)
	}
	for i := range first {
		first[i] = float64(i) + 1
	}

	arena.Reset()
	second, err := arena.Floats(16)
	if err != nil {
		t.Fatalf("Floats(16) after Reset error: %v", err)
	}
	for i, v := range second {
		if v != 0 {
			t.Fatalf("second[%d] = %v, want 0 after reset", i, v)
		}
	}
}

func TestArenaInts(t *testing.T) {
	arena := NewArena(64)

	ints, err := arena.Ints(8)
	if err != nil {
		t.Fatalf("Ints(8) error: %v", err)
	}
	if len(ints) != 8 {
		t.Fatalf("len(Ints(8)) = %d, want 8", len(ints))
	}
	if arena.Used() != 32 {
		t.Errorf("Used() = %d, want 32", arena.Used())
	}
	for i, v := range ints {
		if v != 0 {
			t.Fatalf("ints[%d] = %d, want 0", i, v)
		}
	}
}

func TestArenaSizeForCoversAllBackends(t *testing.T) {
	cfg := SimulationConfig{S0: 100, K: 105, T: 1, R: 0.05, Sigma: 0.2, NumPaths: 64, NumSteps: 10, Seed: 2}

	engine := NewEngine(2)
	defer engine.Close()

	arena := NewArena(ArenaSizeFor(cfg))
	for _, key := range []string{BackendArena, BackendMP, BackendUltimate} {
		if _, err := engine.PriceBackend(key, cfg, arena); err != nil {
			t.Errorf("PriceBackend(%s) with estimated capacity error: %v", key, err)
		}
	}
}
