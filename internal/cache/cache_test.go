package cache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/loomlang/loomc/internal/ast"
)

func TestKeyIsStableForIdenticalSource(t *testing.T) {
	if Key("fn f() {}") != Key("fn f() {}") {
		t.Fatalf("same source hashed to different keys")
	}
}

func TestKeyDiffersForDifferentSource(t *testing.T) {
	if Key("fn f() {}") == Key("fn g() {}") {
		t.Fatalf("different source hashed to same key")
	}
}

func TestGetOrParseOnlyParsesOnce(t *testing.T) {
	c := New()
	var calls int32
	want := &ast.Program{}
	parse := func() *ast.Program {
		atomic.AddInt32(&calls, 1)
		return want
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.GetOrParse("same source", parse)
			if got != want {
				t.Errorf("got different program pointer back")
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("want exactly 1 parse call, got %d", calls)
	}
	if c.Len() != 1 {
		t.Fatalf("want 1 cached entry, got %d", c.Len())
	}
}
