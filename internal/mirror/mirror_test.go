package mirror

import (
	"context"
	"errors"
	"testing"

	"chaintodo/internal/testutil"
)

type fakeTarget struct {
	remote    []Remote
	inserted  []Remote
	updated   []Remote
	deleted   []string
	insertErr error
}

func (f *fakeTarget) EnsureList(ctx context.Context, title string) (string, error) {
	return "list", nil
}

func (f *fakeTarget) ListTasks(ctx context.Context, listID string) ([]Remote, error) {
	return f.remote, nil
}

func (f *fakeTarget) InsertTask(ctx context.Context, listID string, task Remote) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, task)
	return nil
}

func (f *fakeTarget) UpdateTask(ctx context.Context, listID string, task Remote) error {
	f.updated = append(f.updated, task)
	return nil
}

func (f *fakeTarget) DeleteTask(ctx context.Context, listID, taskID string) error {
	f.deleted = append(f.deleted, taskID)
	return nil
}

func TestRemoteLedgerID(t *testing.T) {
	tests := []struct {
		notes string
		id    uint64
		ok    bool
	}{
		{"chaintodo-id:7", 7, true},
		{"  chaintodo-id:12\n", 12, true},
		{"chaintodo-id:0", 0, false},
		{"chaintodo-id:x", 0, false},
		{"shopping", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		id, ok := Remote{Notes: tt.notes}.LedgerID()
		if id != tt.id || ok != tt.ok {
			t.Errorf("LedgerID(%q) = %d, %v; want %d, %v", tt.notes, id, ok, tt.id, tt.ok)
		}
	}
}

func TestSync(t *testing.T) {
	svc := testutil.NewFakeService()
	keep := svc.AddTask("same", false)
	changed := svc.AddTask("renamed", true)
	svc.AddTask("new", false)
	gone := svc.AddTask("deleted later", false)
	if err := svc.DeleteTask(context.Background(), gone); err != nil {
		t.Fatal(err)
	}

	target := &fakeTarget{remote: []Remote{
		{ID: "r1", Title: "same", Notes: NotesFor(keep)},
		{ID: "r2", Title: "old name", Notes: NotesFor(changed)},
		{ID: "r3", Title: "deleted later", Notes: NotesFor(gone)},
		{ID: "r4", Title: "same again", Notes: NotesFor(keep)},
		{ID: "r5", Title: "by hand"},
	}}

	res, err := Sync(context.Background(), svc, target, "chaintodo")
	if err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	want := Result{Created: 1, Updated: 1, Deleted: 2, Unchanged: 1}
	if res != want {
		t.Errorf("expected %+v, got %+v", want, res)
	}
	if len(target.inserted) != 1 || target.inserted[0].Title != "new" {
		t.Errorf("unexpected inserts %+v", target.inserted)
	}
	if len(target.updated) != 1 || target.updated[0].ID != "r2" || !target.updated[0].Completed {
		t.Errorf("unexpected updates %+v", target.updated)
	}
	for _, id := range target.deleted {
		if id == "r5" || id == "r1" || id == "r2" {
			t.Errorf("unexpected delete of %s", id)
		}
	}
}

func TestSyncStopsAtFirstFailure(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("a", false)
	svc.AddTask("b", false)

	boom := errors.New("quota exceeded")
	target := &fakeTarget{insertErr: boom}

	res, err := Sync(context.Background(), svc, target, "chaintodo")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped insert error, got %v", err)
	}
	if res.Created != 0 {
		t.Errorf("expected nothing created, got %+v", res)
	}
}

func TestSyncLoadError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.TaskCountErr = errors.New("rpc down")

	if _, err := Sync(context.Background(), svc, &fakeTarget{}, "chaintodo"); err == nil {
		t.Fatal("expected error")
	}
}
