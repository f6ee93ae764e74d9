package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeRunner records executed scripts and returns canned output.
type fakeRunner struct {
	mu      sync.Mutex
	scripts []string
	output  string
	err     error
}

func (f *fakeRunner) Run(ctx context.Context, script string) (string, error) {
	f.mu.Lock()
	f.scripts = append(f.scripts, script)
	f.mu.Unlock()
	return f.output, f.err
}

func (f *fakeRunner) lastScript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.scripts) == 0 {
		return ""
	}
	return f.scripts[len(f.scripts)-1]
}

func newTestPhotos(t *testing.T, runner Runner) *Photos {
	t.Helper()
	p := NewPhotosWithRunner(runner, 0)
	t.Cleanup(p.Close)
	return p
}

func TestGetKeywords_ParsesLines(t *testing.T) {
	runner := &fakeRunner{output: "beach\nsunset\n\n"}
	p := newTestPhotos(t, runner)

	kws, err := p.GetKeywords(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(kws) != 2 || kws[0] != "beach" || kws[1] != "sunset" {
		t.Errorf("expected [beach sunset], got %v", kws)
	}
}

func TestGetKeywords_NoKeywords(t *testing.T) {
	runner := &fakeRunner{output: "\n"}
	p := newTestPhotos(t, runner)

	kws, err := p.GetKeywords(context.Background(), "item-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(kws) != 0 {
		t.Errorf("expected no keywords, got %v", kws)
	}
}

func TestAddKeywords_EmptyIsNoop(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestPhotos(t, runner)

	if err := p.AddKeywords(context.Background(), "item-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.scripts) != 0 {
		t.Errorf("expected no script execution, got %d", len(runner.scripts))
	}
}

func TestCreateAlbum_ReturnsID(t *testing.T) {
	runner := &fakeRunner{output: "album-uuid-42\n"}
	p := newTestPhotos(t, runner)

	id, err := p.CreateAlbum(context.Background(), "Trip 2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if id != "album-uuid-42" {
		t.Errorf("expected 'album-uuid-42', got '%s'", id)
	}

	if !strings.Contains(runner.lastScript(), `"Trip 2024"`) {
		t.Errorf("expected script to contain album name, got:\n%s", runner.lastScript())
	}
}

func TestCreateAlbum_EmptyOutputIsError(t *testing.T) {
	runner := &fakeRunner{output: "  \n"}
	p := newTestPhotos(t, runner)

	if _, err := p.CreateAlbum(context.Background(), "Trip"); err == nil {
		t.Error("expected error for missing album id")
	}
}

func TestRunError_Wrapped(t *testing.T) {
	runner := &fakeRunner{err: ErrNotRunning}
	p := newTestPhotos(t, runner)

	err := p.AddKeywords(context.Background(), "item-1", []string{"x"})
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

func TestQuote_EscapesSpecials(t *testing.T) {
	got := quote(`say "hi" \ bye`)
	want := `"say \"hi\" \\ bye"`
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestQuoteList(t *testing.T) {
	got := quoteList([]string{"a", "b"})
	if got != `{"a", "b"}` {
		t.Errorf(`expected {"a", "b"}, got %s`, got)
	}

	if quoteList(nil) != "{}" {
		t.Errorf("expected {} for empty list, got %s", quoteList(nil))
	}
}

// overlapRunner fails the test if two calls ever run concurrently.
type overlapRunner struct {
	t       *testing.T
	running atomic.Bool
	count   atomic.Int32
}

func (r *overlapRunner) Run(ctx context.Context, script string) (string, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.t.Error("two bridge calls ran concurrently")
	}
	time.Sleep(2 * time.Millisecond)
	r.running.Store(false)
	r.count.Add(1)
	return "", nil
}

func TestQueue_SerializesConcurrentCalls(t *testing.T) {
	runner := &overlapRunner{t: t}
	p := newTestPhotos(t, runner)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := p.SetKeywords(context.Background(), "item", []string{"k"}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := runner.count.Load(); got != 10 {
		t.Errorf("expected 10 executions, got %d", got)
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := NewQueue(0)
	defer q.Stop()

	var order []int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		i := i
		wg.Add(1)
		// Submit sequentially so queue order is deterministic; completion
		// order must match submission order.
		done := make(chan struct{})
		go func() {
			defer wg.Done()
			close(done)
			q.Do(context.Background(), "op", func(ctx context.Context) (string, error) {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return "", nil
			})
		}()
		<-done
		time.Sleep(time.Millisecond)
	}
	wg.Wait()

	for i, v := range order {
		if v != i {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

func TestQueue_StopFailsNewOps(t *testing.T) {
	q := NewQueue(0)
	q.Stop()

	// Give the worker a moment to observe the stop.
	time.Sleep(5 * time.Millisecond)

	_, err := q.Do(context.Background(), "op", func(ctx context.Context) (string, error) {
		return "", nil
	})
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
}

func TestIsNotRunningError(t *testing.T) {
	cases := []struct {
		stderr string
		want   bool
	}{
		{"execution error: Photos got an error: Application isn't running. (-600)", true},
		{"execution error: something else (-1728)", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isNotRunningError(tc.stderr); got != tc.want {
			t.Errorf("isNotRunningError(%q) = %v, want %v", tc.stderr, got, tc.want)
		}
	}
}
