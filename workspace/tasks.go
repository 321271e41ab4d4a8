package workspace

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/vocalagent/vocalagent/agent"
)

// TasksClient implements agent.TasksService.
type TasksClient struct {
	factory ClientFactory
}

func (t *TasksClient) service(ctx context.Context, actor string) (*tasks.Service, error) {
	httpClient, err := t.factory.HTTPClient(ctx, actor)
	if err != nil {
		return nil, err
	}
	return tasks.NewService(ctx, option.WithHTTPClient(httpClient))
}

func (t *TasksClient) Create(ctx context.Context, actor, title, notes, due, listID string) agent.ResultEnvelope {
	srv, err := t.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	task := &tasks.Task{Title: title, Notes: notes}
	if due != "" {
		parsed, err := time.Parse(time.RFC3339, due)
		if err != nil {
			// The API only keeps the date part anyway.
			parsed, err = time.Parse("2006-01-02", due)
		}
		if err != nil {
			return agent.Fail("Invalid due date %q", due)
		}
		task.Due = parsed.Format(time.RFC3339)
	}

	created, err := srv.Tasks.Insert(listID, task).Context(ctx).Do()
	if err != nil {
		return apiFail("create the task", err)
	}
	return agent.Succeed(fmt.Sprintf("Task %q created.", created.Title), []agent.Task{toTask(created)})
}

func (t *TasksClient) List(ctx context.Context, actor, listID string, max int64) agent.ResultEnvelope {
	if max <= 0 {
		max = 10
	}
	srv, err := t.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	list, err := srv.Tasks.List(listID).ShowCompleted(false).MaxResults(max).Context(ctx).Do()
	if err != nil {
		return apiFail("list your tasks", err)
	}
	if len(list.Items) == 0 {
		return agent.Succeed("You have no open tasks.", []agent.Task{})
	}

	out := make([]agent.Task, 0, len(list.Items))
	for _, item := range list.Items {
		out = append(out, toTask(item))
	}
	return agent.Succeed(fmt.Sprintf("You have %d open tasks.", len(out)), out)
}

func (t *TasksClient) Complete(ctx context.Context, actor, taskID, listID string) agent.ResultEnvelope {
	srv, err := t.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	task, err := srv.Tasks.Get(listID, taskID).Context(ctx).Do()
	if err != nil {
		return apiFail("find the task", err)
	}
	task.Status = "completed"
	if _, err := srv.Tasks.Update(listID, taskID, task).Context(ctx).Do(); err != nil {
		return apiFail("complete the task", err)
	}
	return agent.Succeed(fmt.Sprintf("Task %q marked as completed.", task.Title), nil)
}

func (t *TasksClient) Delete(ctx context.Context, actor, taskID, listID string) agent.ResultEnvelope {
	srv, err := t.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}
	if err := srv.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return apiFail("delete the task", err)
	}
	return agent.Succeed("Task deleted.", nil)
}

func (t *TasksClient) Update(ctx context.Context, actor string, upd agent.TaskUpdate) agent.ResultEnvelope {
	srv, err := t.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	task, err := srv.Tasks.Get(upd.TaskListID, upd.TaskID).Context(ctx).Do()
	if err != nil {
		return apiFail("find the task", err)
	}
	if upd.Title != "" {
		task.Title = upd.Title
	}
	if upd.Notes != "" {
		task.Notes = upd.Notes
	}
	if upd.Due != "" {
		task.Due = upd.Due
	}

	updated, err := srv.Tasks.Update(upd.TaskListID, upd.TaskID, task).Context(ctx).Do()
	if err != nil {
		return apiFail("update the task", err)
	}
	return agent.Succeed(fmt.Sprintf("Task %q updated.", updated.Title), []agent.Task{toTask(updated)})
}

func (t *TasksClient) ListLists(ctx context.Context, actor string) agent.ResultEnvelope {
	srv, err := t.service(ctx, actor)
	if err != nil {
		return authFail(actor, err)
	}

	lists, err := srv.Tasklists.List().Context(ctx).Do()
	if err != nil {
		return apiFail("list your task lists", err)
	}

	out := make([]agent.TaskList, 0, len(lists.Items))
	for _, item := range lists.Items {
		out = append(out, agent.TaskList{ID: item.Id, Title: item.Title})
	}
	return agent.Succeed(fmt.Sprintf("You have %d task lists.", len(out)), out)
}

func toTask(t *tasks.Task) agent.Task {
	return agent.Task{
		ID:     t.Id,
		Title:  t.Title,
		Notes:  t.Notes,
		Due:    t.Due,
		Status: t.Status,
	}
}
