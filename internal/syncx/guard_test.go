package syncx

import (
	"sync"
	"testing"
)

func TestGuardGetSet(t *testing.T) {
	g := NewGuard(10)
	if got := g.Get(); got != 10 {
		t.Errorf("Get = %d, want 10", got)
	}

	g.Set(42)
	if got := g.Get(); got != 42 {
		t.Errorf("Get after Set = %d, want 42", got)
	}
}

func TestGuardRead(t *testing.T) {
	g := NewGuard([]string{"a", "b"})
	n := g.Read(func(v []string) any { return len(v) }).(int)
	if n != 2 {
		t.Errorf("Read length = %d, want 2", n)
	}
}

func TestGuardWrite(t *testing.T) {
	type region struct{ X, Y, W, H int }
	g := NewGuard(region{W: 100, H: 100})

	g.Write(func(r *region) {
		r.X = 5
		r.Y = 7
	})

	got := g.Get()
	if got.X != 5 || got.Y != 7 || got.W != 100 {
		t.Errorf("Write mutation = %+v", got)
	}
}

func TestGuardConcurrent(t *testing.T) {
	g := NewGuard(0)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.Write(func(v *int) { *v++ })
		}()
		go func() {
			defer wg.Done()
			_ = g.Get()
		}()
	}
	wg.Wait()

	if got := g.Get(); got != 50 {
		t.Errorf("concurrent increments = %d, want 50", got)
	}
}
