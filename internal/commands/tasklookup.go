package commands

import (
	"context"

	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
)

// findTaskByNumber loads the collection and returns it with the task at
// 1-based display position num.
func findTaskByNumber(ctx context.Context, svc service.Service, num int) ([]service.Task, service.Task, error) {
	list, err := tasks.Load(ctx, svc)
	if err != nil {
		return nil, service.Task{}, err
	}
	task, err := tasks.At(list, num)
	if err != nil {
		return list, service.Task{}, err
	}
	return list, task, nil
}
