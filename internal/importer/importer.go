// Package importer creates tasks in bulk from a JSON document.
package importer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"chaintodo/internal/logging"
	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "chaintodo://import.schema.json"

// Item is one task to import.
type Item struct {
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

// ValidationError reports a document that does not match the import schema.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid import file: " + strings.Join(e.Problems, "; ")
}

// ErrNotNewest is returned when the highest task ID is not the task just
// imported, which happens when another account writes to the ledger during
// an import. The imported task is left open.
var ErrNotNewest = errors.New("newest task is not the imported one")

// ImportError reports a failure partway through an import. Tasks before
// Done were created and stay on the ledger.
type ImportError struct {
	Done  int
	Total int
	Item  Item
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("imported %d of %d tasks, failed on %q: %v", e.Done, e.Total, e.Item.Content, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

// Parse validates r against the import schema and returns the items in
// document order. Accepted shapes are an array of strings or an object
// {"tasks": [{"content": "...", "completed": false}]}.
func Parse(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Problems: []string{fmt.Sprintf("not JSON: %v", err)}}
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, schemaError(err)
	}

	var items []Item
	var plain []string
	if err := json.Unmarshal(data, &plain); err == nil {
		for _, content := range plain {
			items = append(items, Item{Content: content})
		}
		return items, nil
	}

	var wrapped struct {
		Tasks []Item `json:"tasks"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode import file: %w", err)
	}
	return wrapped.Tasks, nil
}

// Run creates items one at a time, toggling the ones marked completed, and
// stops at the first failure. It returns the number of items fully applied.
func Run(ctx context.Context, svc service.Service, items []Item) (int, error) {
	logger := logging.FromContext(ctx)

	for i, item := range items {
		if err := apply(ctx, svc, item); err != nil {
			return i, &ImportError{Done: i, Total: len(items), Item: item, Err: err}
		}
		logger.Debug("imported task", "n", i+1, "of", len(items))
	}
	return len(items), nil
}

func apply(ctx context.Context, svc service.Service, item Item) error {
	if strings.TrimSpace(item.Content) == "" {
		return tasks.ErrEmptyContent
	}
	if err := svc.CreateTask(ctx, item.Content); err != nil {
		return err
	}
	if !item.Completed {
		return nil
	}

	// createTask takes no completed flag. The new task should hold the
	// highest ID; check that before toggling it.
	count, err := svc.TaskCount(ctx)
	if err != nil {
		return err
	}
	created, err := svc.Task(ctx, count)
	if err != nil {
		return err
	}
	if created.Deleted() || created.Content != item.Content || created.Completed {
		return fmt.Errorf("task %d: %w", count, ErrNotNewest)
	}
	return svc.ToggleCompleted(ctx, count)
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("invalid import schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid import schema: %w", err)
	}
	return schema, nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	result := &ValidationError{}
	collectProblems(result, ve)
	return result
}

func collectProblems(result *ValidationError, ve *jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		result.Problems = append(result.Problems, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, cause := range ve.Causes {
		collectProblems(result, cause)
	}
}
