package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"chaintodo/internal/service"
	"chaintodo/internal/testutil"
)

// countingService counts ledger reads.
type countingService struct {
	*testutil.FakeService
	countCalls int
	taskCalls  int
}

func (c *countingService) TaskCount(ctx context.Context) (uint64, error) {
	c.countCalls++
	return c.FakeService.TaskCount(ctx)
}

func (c *countingService) Task(ctx context.Context, id uint64) (service.Task, error) {
	c.taskCalls++
	return c.FakeService.Task(ctx, id)
}

// racingService lets another account create a task right after each
// CreateTask lands.
type racingService struct {
	*testutil.FakeService
}

func (r *racingService) CreateTask(ctx context.Context, content string) error {
	if err := r.FakeService.CreateTask(ctx, content); err != nil {
		return err
	}
	r.FakeService.AddTask("someone else's task", false)
	return nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []Item
	}{
		{
			name: "array of strings",
			doc:  `["Buy milk", "Walk dog"]`,
			want: []Item{{Content: "Buy milk"}, {Content: "Walk dog"}},
		},
		{
			name: "tasks object",
			doc:  `{"tasks": [{"content": "Ship"}, {"content": "Plan", "completed": true}]}`,
			want: []Item{{Content: "Ship"}, {Content: "Plan", Completed: true}},
		},
		{
			name: "empty array",
			doc:  `[]`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.doc))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d items, got %+v", len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d: expected %+v, got %+v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	docs := map[string]string{
		"not json":      `{tasks`,
		"blank content": `["ok", "   "]`,
		"wrong type":    `{"tasks": [{"content": 3}]}`,
		"missing tasks": `{"items": []}`,
		"extra field":   `{"tasks": [{"content": "a", "due": "tomorrow"}]}`,
		"scalar":        `"just a string"`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(ve.Problems) == 0 {
				t.Error("expected at least one problem")
			}
		})
	}
}

func TestRun(t *testing.T) {
	svc := testutil.NewFakeService()
	items := []Item{{Content: "one"}, {Content: "two", Completed: true}, {Content: "three"}}

	n, err := Run(context.Background(), svc, items)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 imported, got %d", n)
	}

	snap := svc.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(snap))
	}
	for i, want := range []bool{false, true, false} {
		if snap[i].Completed != want {
			t.Errorf("task %d: expected completed=%v", i+1, want)
		}
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ToggleErr = errors.New("execution reverted")
	items := []Item{{Content: "one"}, {Content: "two", Completed: true}, {Content: "three"}}

	n, err := Run(context.Background(), svc, items)
	var ie *ImportError
	if !errors.As(err, &ie) {
		t.Fatalf("expected ImportError, got %v", err)
	}
	if n != 1 || ie.Done != 1 || ie.Total != 3 || ie.Item.Content != "two" {
		t.Errorf("unexpected result n=%d err=%+v", n, ie)
	}
	if len(svc.Snapshot()) != 2 {
		t.Errorf("expected the third item not to be created")
	}
}

func TestRun_OpenItemsSkipReads(t *testing.T) {
	svc := &countingService{FakeService: testutil.NewFakeService()}
	items := []Item{{Content: "one"}, {Content: "two"}, {Content: "three"}, {Content: "four"}}

	if _, err := Run(context.Background(), svc, items); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if svc.countCalls != 0 || svc.taskCalls != 0 {
		t.Errorf("expected no ledger reads for open items, got %d count and %d task reads", svc.countCalls, svc.taskCalls)
	}

	completed := &countingService{FakeService: testutil.NewFakeService()}
	if _, err := Run(context.Background(), completed, []Item{{Content: "done", Completed: true}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if completed.countCalls != 1 || completed.taskCalls != 1 {
		t.Errorf("expected one count and one task read, got %d and %d", completed.countCalls, completed.taskCalls)
	}
}

func TestRun_CompletedItemWithConcurrentWriter(t *testing.T) {
	svc := &racingService{FakeService: testutil.NewFakeService()}
	items := []Item{{Content: "mine", Completed: true}}

	n, err := Run(context.Background(), svc, items)
	if !errors.Is(err, ErrNotNewest) {
		t.Fatalf("expected ErrNotNewest, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 fully applied, got %d", n)
	}

	snap := svc.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 slots, got %+v", snap)
	}
	if snap[0].Content != "mine" || snap[0].Completed {
		t.Errorf("expected imported task to stay open, got %+v", snap[0])
	}
	if snap[1].Completed {
		t.Errorf("expected the other account's task to be untouched, got %+v", snap[1])
	}
}

func TestRun_BlankItem(t *testing.T) {
	svc := testutil.NewFakeService()
	_, err := Run(context.Background(), svc, []Item{{Content: "  "}})
	var ie *ImportError
	if !errors.As(err, &ie) || ie.Done != 0 {
		t.Fatalf("expected ImportError at item 0, got %v", err)
	}
	if len(svc.Snapshot()) != 0 {
		t.Error("expected nothing to be created")
	}
}
