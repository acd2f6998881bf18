// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

// =============================================================================
// CONTRACT TESTS
// =============================================================================

// kvFactories returns a constructor for every KV implementation.
func kvFactories(t *testing.T) map[string]func(t *testing.T) KV {
	return map[string]func(t *testing.T) KV{
		"memory": func(t *testing.T) KV {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) KV {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "state.db"))
			if err != nil {
				t.Fatalf("OpenSQLite failed: %v", err)
			}
			return s
		},
	}
}

func TestKV_GetMissing(t *testing.T) {
	for name, newKV := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			defer kv.Close()

			v, ok, err := kv.Get(context.Background(), "absent")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if ok || v != nil {
				t.Errorf("Get(absent) = (%q, %v), want (nil, false)", v, ok)
			}
		})
	}
}

func TestKV_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, newKV := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			defer kv.Close()

			if err := kv.Set(ctx, "k", []byte("one")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			if err := kv.Set(ctx, "k", []byte("two")); err != nil {
				t.Fatalf("overwrite failed: %v", err)
			}

			v, ok, err := kv.Get(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("Get = (%q, %v, %v)", v, ok, err)
			}
			if string(v) != "two" {
				t.Errorf("value = %q, want %q", v, "two")
			}

			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Errorf("second Delete should be a no-op, got %v", err)
			}
			if _, ok, _ := kv.Get(ctx, "k"); ok {
				t.Error("key still present after Delete")
			}
		})
	}
}

func TestKV_EmptyValueIsPresent(t *testing.T) {
	ctx := context.Background()
	for name, newKV := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			defer kv.Close()

			if err := kv.Set(ctx, "flag", []byte{}); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			_, ok, err := kv.Get(ctx, "flag")
			if err != nil || !ok {
				t.Errorf("Get(flag) ok = %v, err = %v; want present", ok, err)
			}
		})
	}
}

func TestKV_ApplyBatch(t *testing.T) {
	ctx := context.Background()
	for name, newKV := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			defer kv.Close()

			if err := kv.Set(ctx, "old", []byte("x")); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			var b Batch
			b.Set("a", []byte("1"))
			b.Set("b", []byte("2"))
			b.Delete("old")
			if err := kv.Apply(ctx, &b); err != nil {
				t.Fatalf("Apply failed: %v", err)
			}

			for key, want := range map[string]string{"a": "1", "b": "2"} {
				v, ok, _ := kv.Get(ctx, key)
				if !ok || string(v) != want {
					t.Errorf("%s = (%q, %v), want %q", key, v, ok, want)
				}
			}
			if _, ok, _ := kv.Get(ctx, "old"); ok {
				t.Error("old should be deleted by batch")
			}
		})
	}
}

func TestKV_ClosedStore(t *testing.T) {
	ctx := context.Background()
	for name, newKV := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			if err := kv.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := kv.Close(); err != nil {
				t.Errorf("second Close = %v, want nil", err)
			}
			if err := kv.Set(ctx, "k", []byte("v")); !errors.Is(err, ErrClosed) {
				t.Errorf("Set after Close = %v, want ErrClosed", err)
			}
			if _, _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
				t.Errorf("Get after Close = %v, want ErrClosed", err)
			}
		})
	}
}

func TestKV_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	for name, newKV := range kvFactories(t) {
		t.Run(name, func(t *testing.T) {
			kv := newKV(t)
			defer kv.Close()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					var b Batch
					b.Set("a", []byte(fmt.Sprint(i)))
					b.Set("b", []byte(fmt.Sprint(i)))
					if err := kv.Apply(ctx, &b); err != nil {
						t.Errorf("Apply failed: %v", err)
					}
				}(i)
			}
			wg.Wait()

			a, _, _ := kv.Get(ctx, "a")
			b, _, _ := kv.Get(ctx, "b")
			if string(a) != string(b) {
				t.Errorf("batches interleaved: a=%q b=%q", a, b)
			}
		})
	}
}

// =============================================================================
// SQLITE TESTS
// =============================================================================

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Set(ctx, "token", []byte("abc")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "token")
	if err != nil || !ok || string(v) != "abc" {
		t.Errorf("Get(token) after reopen = (%q, %v, %v), want abc", v, ok, err)
	}
	if reopened.Path() != path {
		t.Errorf("Path() = %q, want %q", reopened.Path(), path)
	}
}

func TestSQLiteStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, "")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "k"); !ok || string(v) != "v" {
		t.Errorf("Get(k) = (%q, %v)", v, ok)
	}
}

func TestSQLiteStore_ApplyCanceledContext(t *testing.T) {
	s, err := OpenSQLite(context.Background(), "")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var b Batch
	b.Set("k", []byte("v"))
	if err := s.Apply(ctx, &b); err == nil {
		t.Fatal("Apply with canceled context should fail")
	}
	if _, ok, _ := s.Get(context.Background(), "k"); ok {
		t.Error("canceled batch must not be visible")
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	src := []byte("abc")
	_ = m.Set(ctx, "k", src)
	src[0] = 'X'

	v, _, _ := m.Get(ctx, "k")
	v[1] = 'Y'

	again, _, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated through alias: %q", again)
	}
}
