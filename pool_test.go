package md2card

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"
)

// Notes:
// - Pool tests inject the mock rasterizer so no browser starts.

// Compile-time interface check.
var _ interface {
	Acquire() (*Converter, error)
	Release(*Converter)
	Size() int
	Close() error
} = (*ConverterPool)(nil)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{
			name:    "explicit takes priority",
			workers: 4,
			want:    4,
		},
		{
			name:    "explicit=1 for sequential",
			workers: 1,
			want:    1,
		},
		{
			name:    "explicit can exceed max",
			workers: 20,
			want:    20,
		},
		{
			name:    "zero uses auto calculation",
			workers: 0,
			want:    min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ResolvePoolSize(tt.workers)
			if got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

func TestNewConverterPool_MinimumSize(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(0)
	defer p.Close()
	if p.Size() != 1 {
		t.Errorf("Size() = %d, want 1", p.Size())
	}
}

func TestConverterPool_LazyCreationAndReuse(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(2, withRasterizer(&mockRasterizer{}))
	defer p.Close()

	a, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	p.Release(a)

	b, err := p.Acquire()
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if a != b {
		t.Error("released converter was not reused")
	}
	p.Release(b)

	p.mu.Lock()
	created := p.created
	p.mu.Unlock()
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
}

func TestConverterPool_BlocksWhenExhausted(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(1, withRasterizer(&mockRasterizer{}))
	defer p.Close()

	first, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}

	got := make(chan *Converter, 1)
	go func() {
		conv, err := p.Acquire()
		if err == nil {
			got <- conv
		}
	}()

	select {
	case <-got:
		t.Fatal("Acquire() returned while the pool was exhausted")
	case <-time.After(50 * time.Millisecond):
	}

	p.Release(first)
	select {
	case conv := <-got:
		if conv != first {
			t.Error("waiter did not receive the released converter")
		}
		p.Release(conv)
	case <-time.After(time.Second):
		t.Fatal("waiter not released")
	}
}

func TestConverterPool_CreationErrorFreesSlot(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(1, withRasterizer(&mockRasterizer{}), WithStyle("nonexistent"))
	defer p.Close()

	for range 2 {
		if _, err := p.Acquire(); !errors.Is(err, ErrStyleNotFound) {
			t.Fatalf("Acquire() error = %v, want ErrStyleNotFound", err)
		}
	}
}

func TestConverterPool_Close(t *testing.T) {
	t.Parallel()

	r := &mockRasterizer{closeErr: errors.New("close failed")}
	p := NewConverterPool(2, withRasterizer(r))

	conv, err := p.Acquire()
	if err != nil {
		t.Fatal(err)
	}
	p.Release(conv)

	if err := p.Close(); err == nil {
		t.Error("Close() should report the rasterizer close error")
	}
	if !r.closed {
		t.Error("converter not closed")
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := p.Acquire(); !errors.Is(err, ErrConverterClosed) {
		t.Errorf("Acquire() after Close error = %v, want ErrConverterClosed", err)
	}

	// Release after Close is a no-op.
	p.Release(conv)
}

func TestConverterPool_ConcurrentAcquireRelease(t *testing.T) {
	t.Parallel()

	p := NewConverterPool(3, withRasterizer(&mockRasterizer{}))
	defer p.Close()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, err := p.Acquire()
			if err != nil {
				t.Error(err)
				return
			}
			time.Sleep(time.Millisecond)
			p.Release(conv)
		}()
	}
	wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.created > 3 {
		t.Errorf("created = %d, want at most 3", p.created)
	}
}
