package listview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard.dev/taskboard/pkg/api"
	"taskboard.dev/taskboard/pkg/client"
	"taskboard.dev/taskboard/pkg/querystate"
)

// fakeAPI serves list pages from an in-memory task set, paginating the
// way the server does.
type fakeAPI struct {
	mu          sync.Mutex
	tasks       []api.Task
	perPage     int
	listCalls   []querystate.State
	deleteCalls []string
	failList    string
	forbidList  bool
	failCreate  string
	failUpdate  string
	failDelete  string
	listDelay   map[int]time.Duration // per list-call index
}

func newFakeAPI(perPage int, tasks ...api.Task) *fakeAPI {
	return &fakeAPI{tasks: tasks, perPage: perPage}
}

func (f *fakeAPI) ListTasks(ctx context.Context, state querystate.State) client.Result[api.TaskPage] {
	f.mu.Lock()
	call := len(f.listCalls)
	f.listCalls = append(f.listCalls, state)
	tasks := append([]api.Task(nil), f.tasks...)
	fail := f.failList
	forbid := f.forbidList
	delay := f.listDelay[call]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if forbid {
		return client.Result[api.TaskPage]{Success: false, Message: "forbidden", StatusCode: 403}
	}
	if fail != "" {
		return client.Result[api.TaskPage]{Success: false, Message: fail}
	}

	var matching []api.Task
	for _, t := range tasks {
		if status, ok := state.StatusFilter(); ok && t.Status != status {
			continue
		}
		matching = append(matching, t)
	}

	pagination := api.NewPagination(len(matching), f.perPage, state.Page)
	start := (state.Page - 1) * f.perPage
	end := start + f.perPage
	if start > len(matching) {
		start = len(matching)
	}
	if end > len(matching) {
		end = len(matching)
	}

	return client.Result[api.TaskPage]{
		Success: true,
		Data:    api.TaskPage{Items: matching[start:end], Pagination: pagination},
	}
}

func (f *fakeAPI) CreateTask(ctx context.Context, input api.TaskInput) client.Result[api.Task] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failCreate != "" {
		return client.Result[api.Task]{Success: false, Message: f.failCreate}
	}
	task := api.Task{
		ID:       "created-" + input.Title,
		Title:    input.Title,
		Status:   input.Status,
		Priority: input.Priority,
	}
	f.tasks = append(f.tasks, task)
	return client.Result[api.Task]{Success: true, Data: task}
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id string, input api.TaskInput) client.Result[api.Task] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpdate != "" {
		return client.Result[api.Task]{Success: false, Message: f.failUpdate}
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i].Title = input.Title
			f.tasks[i].Status = input.Status
			f.tasks[i].Priority = input.Priority
			return client.Result[api.Task]{Success: true, Data: f.tasks[i]}
		}
	}
	return client.Result[api.Task]{Success: false, Message: "task not found"}
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id string) client.Result[client.Ack] {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls = append(f.deleteCalls, id)
	if f.failDelete != "" {
		return client.Result[client.Ack]{Success: false, Message: f.failDelete}
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return client.Result[client.Ack]{Success: true, Message: "task deleted"}
}

func (f *fakeAPI) lastListState(t *testing.T) querystate.State {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.listCalls)
	return f.listCalls[len(f.listCalls)-1]
}

type capturedNotification struct {
	kind   NotificationKind
	title  string
	detail string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []capturedNotification
}

func (n *fakeNotifier) Notify(kind NotificationKind, title, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, capturedNotification{kind, title, detail})
}

func (n *fakeNotifier) last(t *testing.T) capturedNotification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

type fakeNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *fakeNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func makeTasks(n int) []api.Task {
	tasks := make([]api.Task, n)
	for i := range tasks {
		tasks[i] = api.Task{ID: string(rune('a' + i)), Title: "Task", Status: api.StatusTodo}
	}
	return tasks
}

func TestSetFilterNavigatesAndFetches(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(3)...)
	nav := &fakeNavigator{}
	ctrl := NewController(fake, WithNavigator(nav))
	defer ctrl.Close()

	status := "completed"
	ctrl.SetFilter(context.Background(), querystate.Change{Status: &status})

	require.Len(t, nav.targets, 1)
	assert.Equal(t, "/tasks?status=completed", nav.targets[0])
	assert.Equal(t, "completed", ctrl.State().Status)
	assert.Empty(t, ctrl.Items(), "no fake task is completed")
}

func TestFilterChangeResetsPage(t *testing.T) {
	fake := newFakeAPI(2, makeTasks(6)...)
	ctrl := NewController(fake)
	defer ctrl.Close()

	ctrl.ChangePage(context.Background(), 3)
	assert.Equal(t, 3, ctrl.State().Page)

	status := "todo"
	ctrl.SetFilter(context.Background(), querystate.Change{Status: &status})
	assert.Equal(t, 1, ctrl.State().Page)
}

func TestDeleteLastItemOnLaterPageStepsBack(t *testing.T) {
	fake := newFakeAPI(2, makeTasks(5)...) // pages: ab / cd / e
	notifier := &fakeNotifier{}
	ctrl := NewController(fake, WithNotifier(notifier))
	defer ctrl.Close()

	ctrl.ChangePage(context.Background(), 3)
	require.Len(t, ctrl.Items(), 1)

	ctrl.DeleteTask(context.Background(), "e")

	assert.Equal(t, 2, ctrl.State().Page, "deleting the only item on page 3 must land on page 2")
	assert.Len(t, ctrl.Items(), 2)
	assert.Equal(t, NotifySuccess, notifier.last(t).kind)
}

func TestDeleteWithRemainingItemsRefetchesSamePage(t *testing.T) {
	fake := newFakeAPI(2, makeTasks(4)...) // pages: ab / cd
	ctrl := NewController(fake)
	defer ctrl.Close()

	ctrl.ChangePage(context.Background(), 2)
	ctrl.DeleteTask(context.Background(), "c")

	assert.Equal(t, 2, ctrl.State().Page)
	require.Len(t, ctrl.Items(), 1)
	assert.Equal(t, "d", ctrl.Items()[0].ID)
}

func TestCreateRefreshesListing(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(2)...)
	notifier := &fakeNotifier{}
	ctrl := NewController(fake, WithNotifier(notifier))
	defer ctrl.Close()

	ctrl.Refresh(context.Background())
	require.Len(t, ctrl.Items(), 2)

	result := ctrl.CreateTask(context.Background(), api.TaskInput{
		Title:    "Write changelog",
		Status:   api.StatusTodo,
		Priority: api.PriorityLow,
	})

	require.True(t, result.Success)
	assert.Len(t, ctrl.Items(), 3, "a successful create must re-fetch the listing")
	assert.Equal(t, NotifySuccess, notifier.last(t).kind)
}

func TestFailedCreateLeavesListUnchanged(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(2)...)
	fake.failCreate = "the given data was invalid"
	notifier := &fakeNotifier{}
	ctrl := NewController(fake, WithNotifier(notifier))
	defer ctrl.Close()

	ctrl.Refresh(context.Background())
	before := ctrl.Items()

	result := ctrl.CreateTask(context.Background(), api.TaskInput{Title: "Doomed"})

	assert.False(t, result.Success)
	assert.Equal(t, before, ctrl.Items(), "a failed create must not mutate local state")
	notification := notifier.last(t)
	assert.Equal(t, NotifyError, notification.kind)
	assert.Equal(t, "the given data was invalid", notification.detail)
}

func TestUpdateRefreshesListing(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(2)...)
	ctrl := NewController(fake)
	defer ctrl.Close()

	ctrl.Refresh(context.Background())

	result := ctrl.UpdateTask(context.Background(), "a", api.TaskInput{
		Title:    "Renamed",
		Status:   api.StatusTodo,
		Priority: api.PriorityHigh,
	})

	require.True(t, result.Success)
	require.Len(t, ctrl.Items(), 2)
	assert.Equal(t, "Renamed", ctrl.Items()[0].Title, "a successful update must re-fetch the listing")
}

func TestFailedUpdateLeavesListUnchanged(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(2)...)
	fake.failUpdate = "the task was modified by someone else, please reload"
	notifier := &fakeNotifier{}
	ctrl := NewController(fake, WithNotifier(notifier))
	defer ctrl.Close()

	ctrl.Refresh(context.Background())
	before := ctrl.Items()

	result := ctrl.UpdateTask(context.Background(), "a", api.TaskInput{Title: "Doomed"})

	assert.False(t, result.Success)
	assert.Equal(t, before, ctrl.Items(), "a failed update must not mutate local state")
	notification := notifier.last(t)
	assert.Equal(t, NotifyError, notification.kind)
	assert.Equal(t, "the task was modified by someone else, please reload", notification.detail)
}

func TestFailedDeleteLeavesListUnchanged(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(3)...)
	fake.failDelete = "task is locked by another user"
	notifier := &fakeNotifier{}
	ctrl := NewController(fake, WithNotifier(notifier))
	defer ctrl.Close()

	ctrl.Refresh(context.Background())
	before := ctrl.Items()

	ctrl.DeleteTask(context.Background(), "a")

	assert.Equal(t, before, ctrl.Items(), "a failed delete must not mutate local state")
	notification := notifier.last(t)
	assert.Equal(t, NotifyError, notification.kind)
	assert.Equal(t, "task is locked by another user", notification.detail)
}

func TestFetchFailureDegradesToEmptyList(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(3)...)
	ctrl := NewController(fake)
	defer ctrl.Close()

	ctrl.Refresh(context.Background())
	require.Len(t, ctrl.Items(), 3)

	fake.failList = "upstream unavailable"
	ctrl.Refresh(context.Background())

	assert.Empty(t, ctrl.Items())
	assert.False(t, ctrl.Pagination().HasMultiplePages())
}

// reentrantNavigator reads controller state from inside Navigate, the
// way a router that re-renders synchronously would.
type reentrantNavigator struct {
	ctrl    *Controller
	states  []querystate.State
	targets []string
}

func (n *reentrantNavigator) Navigate(target string) {
	n.targets = append(n.targets, target)
	n.states = append(n.states, n.ctrl.State())
}

func TestNavigatorMayCallBackIntoController(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(3)...)
	nav := &reentrantNavigator{}
	ctrl := NewController(fake, WithNavigator(nav))
	nav.ctrl = ctrl
	defer ctrl.Close()

	fake.forbidList = true
	status := "completed"

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.SetFilter(context.Background(), querystate.Change{Status: &status})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("controller deadlocked calling the navigator")
	}

	require.NotEmpty(t, nav.states)
	assert.Equal(t, querystate.Default(), nav.states[len(nav.states)-1])
}

func TestForbiddenFetchNavigatesToSafeDefault(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(3)...)
	nav := &fakeNavigator{}
	notifier := &fakeNotifier{}
	ctrl := NewController(fake, WithNavigator(nav), WithNotifier(notifier))
	defer ctrl.Close()

	fake.forbidList = true
	status := "completed"
	ctrl.SetFilter(context.Background(), querystate.Change{Status: &status})

	assert.Equal(t, querystate.Default(), ctrl.State(), "a forbidden listing must fall back to the default view")
	assert.Empty(t, ctrl.Items())
	require.NotEmpty(t, nav.targets)
	assert.Equal(t, "/tasks", nav.targets[len(nav.targets)-1])
	assert.Equal(t, NotifyWarning, notifier.last(t).kind)
}

func TestSearchDebouncesToSingleFetch(t *testing.T) {
	fake := newFakeAPI(15, makeTasks(3)...)
	ctrl := NewController(fake, WithSearchDelay(40*time.Millisecond))
	defer ctrl.Close()

	for _, text := range []string{"d", "de", "dep", "deploy"} {
		ctrl.Search(text)
	}
	assert.Equal(t, "deploy", ctrl.SearchText(), "search text must reflect input immediately")
	assert.Equal(t, "", ctrl.State().Search, "filter must not change before the input settles")

	time.Sleep(150 * time.Millisecond)

	fake.mu.Lock()
	calls := len(fake.listCalls)
	fake.mu.Unlock()
	assert.Equal(t, 1, calls, "a typing burst must cause exactly one fetch")
	assert.Equal(t, "deploy", ctrl.State().Search)
}

func TestStaleFetchIsDiscarded(t *testing.T) {
	fake := newFakeAPI(2, makeTasks(6)...)
	fake.listDelay = map[int]time.Duration{0: 120 * time.Millisecond}
	ctrl := NewController(fake)
	defer ctrl.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.ChangePage(context.Background(), 3) // slow, superseded
	}()
	time.Sleep(30 * time.Millisecond)
	ctrl.ChangePage(context.Background(), 2) // fast, most recent
	wg.Wait()

	require.Len(t, ctrl.Items(), 2)
	assert.Equal(t, "c", ctrl.Items()[0].ID, "the slow superseded fetch must not overwrite the newer page")
	assert.False(t, ctrl.Fetching(), "a superseded fetch still counts itself out when it returns")
}
