// Package listview owns the authoritative state of one filtered,
// paginated, searchable task listing: the active query state, the
// currently displayed page and the mutations applied to it.
package listview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"taskboard.dev/taskboard/pkg/api"
	"taskboard.dev/taskboard/pkg/client"
	"taskboard.dev/taskboard/pkg/debounce"
	"taskboard.dev/taskboard/pkg/querystate"
)

const defaultSearchDelay = 300 * time.Millisecond

// TaskAPI is the slice of the dispatcher the controller needs.
// *client.Client satisfies it.
type TaskAPI interface {
	ListTasks(ctx context.Context, state querystate.State) client.Result[api.TaskPage]
	CreateTask(ctx context.Context, input api.TaskInput) client.Result[api.Task]
	UpdateTask(ctx context.Context, id string, input api.TaskInput) client.Result[api.Task]
	DeleteTask(ctx context.Context, id string) client.Result[client.Ack]
}

// Controller is the single authoritative source of one listing view.
// All methods are safe for concurrent use; a fetch triggered by an
// older filter state never overwrites the result of a newer one.
type Controller struct {
	api       TaskAPI
	notifier  Notifier
	navigator Navigator
	logger    *logrus.Logger
	basePath  string

	// generation tags each fetch; only the most recently issued one
	// may install its result.
	generation atomic.Uint64

	mu         sync.Mutex
	state      querystate.State
	items      []api.Task
	pagination api.Pagination
	searchText string
	inFlight   int

	searchDebounce *debounce.Debouncer[string]
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) { c.notifier = n }
}

func WithNavigator(n Navigator) ControllerOption {
	return func(c *Controller) { c.navigator = n }
}

func WithLogger(l *logrus.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// WithBasePath sets the path the navigator receives the encoded state
// under. Defaults to /tasks.
func WithBasePath(path string) ControllerOption {
	return func(c *Controller) { c.basePath = path }
}

// WithInitialState seeds the controller, typically from a decoded URL.
func WithInitialState(s querystate.State) ControllerOption {
	return func(c *Controller) { c.state = s }
}

// WithSearchDelay overrides the debounce delay applied to Search.
func WithSearchDelay(d time.Duration) ControllerOption {
	return func(c *Controller) {
		c.searchDebounce = debounce.New(d, c.applySearch)
	}
}

// NewController returns a controller over the given API. The listing
// is empty until the first Refresh or SetFilter.
func NewController(taskAPI TaskAPI, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:       taskAPI,
		notifier:  nopNotifier{},
		navigator: nopNavigator{},
		logger:    logrus.StandardLogger(),
		basePath:  "/tasks",
		state:     querystate.Default(),
	}
	c.searchDebounce = debounce.New(defaultSearchDelay, c.applySearch)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the controller's timer resources.
func (c *Controller) Close() {
	c.searchDebounce.Stop()
}

// State returns the active filter/sort/search/page state.
func (c *Controller) State() querystate.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Items returns the currently displayed page of tasks.
func (c *Controller) Items() []api.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Task(nil), c.items...)
}

// Pagination returns the metadata of the displayed page.
func (c *Controller) Pagination() api.Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pagination
}

// SearchText returns the immediately-reflected search input, which may
// be ahead of the debounced State().Search.
func (c *Controller) SearchText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchText
}

// Fetching reports whether a fetch is in flight.
func (c *Controller) Fetching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// SetFilter merges change into the current state, navigates to the
// canonical URL for the new state and fetches the matching page. A
// change that does not set Page lands on page 1.
func (c *Controller) SetFilter(ctx context.Context, change querystate.Change) {
	c.mu.Lock()
	c.state = c.state.Merge(change)
	if change.Search != nil {
		c.searchText = *change.Search
	}
	state := c.state
	c.mu.Unlock()

	target := c.basePath
	if encoded := state.Encode(); encoded != "" {
		target += "?" + encoded
	}
	c.navigator.Navigate(target)

	c.fetch(ctx, state)
}

// ChangePage moves the listing to page n, keeping every filter.
func (c *Controller) ChangePage(ctx context.Context, n int) {
	c.SetFilter(ctx, querystate.Change{Page: &n})
}

// Search reflects text immediately and applies it as a filter once the
// input has settled, so typing does not cause a fetch per keystroke.
func (c *Controller) Search(text string) {
	c.mu.Lock()
	c.searchText = text
	c.mu.Unlock()

	c.searchDebounce.Set(text)
}

func (c *Controller) applySearch(text string) {
	c.SetFilter(context.Background(), querystate.Change{Search: &text})
}

// Refresh re-fetches the current page without touching the state or
// the navigator.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	c.fetch(ctx, state)
}

// CreateTask creates a task and re-fetches the listing so the new
// task shows up in its sorted position. On failure the listing is left
// untouched and the server's message is surfaced as a notification.
// The Result is returned so callers can inspect FieldErrors.
func (c *Controller) CreateTask(ctx context.Context, input api.TaskInput) client.Result[api.Task] {
	result := c.api.CreateTask(ctx, input)
	if !result.Success {
		c.notifier.Notify(NotifyError, "Create failed", result.Message)
		return result
	}

	c.notifier.Notify(NotifySuccess, "Task created", result.Message)
	c.Refresh(ctx)
	return result
}

// UpdateTask saves changes to a task and re-fetches the listing, since
// an edit may move the task across filter or sort boundaries. A failed
// update leaves the listing unchanged and surfaces the server's
// message.
func (c *Controller) UpdateTask(ctx context.Context, id string, input api.TaskInput) client.Result[api.Task] {
	result := c.api.UpdateTask(ctx, id, input)
	if !result.Success {
		c.notifier.Notify(NotifyError, "Update failed", result.Message)
		return result
	}

	c.notifier.Notify(NotifySuccess, "Task updated", result.Message)
	c.Refresh(ctx)
	return result
}

// DeleteTask removes one task. The local list is only updated after
// the server confirms: a failed delete leaves the listing unchanged.
// Deleting the last item of a page beyond the first steps back one
// page; any other delete re-fetches the current page.
func (c *Controller) DeleteTask(ctx context.Context, id string) {
	c.mu.Lock()
	wasLastOnPage := len(c.items) == 1 && c.items[0].ID == id && c.state.Page > 1
	previousPage := c.state.Page - 1
	c.mu.Unlock()

	result := c.api.DeleteTask(ctx, id)
	if !result.Success {
		c.notifier.Notify(NotifyError, "Delete failed", result.Message)
		return
	}

	c.notifier.Notify(NotifySuccess, "Task deleted", result.Message)

	// The count check races with concurrent edits of the same listing
	// elsewhere; the server remains authoritative on the next fetch.
	if wasLastOnPage {
		c.ChangePage(ctx, previousPage)
		return
	}
	c.Refresh(ctx)
}

// fetch retrieves the page for state and installs it unless a newer
// fetch was issued in the meantime.
func (c *Controller) fetch(ctx context.Context, state querystate.State) {
	generation := c.generation.Add(1)

	c.mu.Lock()
	c.inFlight++
	c.mu.Unlock()

	result := c.api.ListTasks(ctx, state)

	c.mu.Lock()
	c.inFlight--

	if c.generation.Load() != generation {
		// A newer filter superseded this fetch; drop the stale page.
		c.mu.Unlock()
		return
	}

	if result.Forbidden() {
		// Authorization failures send the user somewhere safe instead
		// of rendering an in-page error. The collaborators may call
		// back into the controller, so they run unlocked.
		c.state = querystate.Default()
		c.items = nil
		c.pagination = api.Pagination{}
		c.mu.Unlock()

		c.navigator.Navigate(c.basePath)
		c.notifier.Notify(NotifyWarning, "Not allowed", result.Message)
		return
	}

	if !result.Success {
		c.items = nil
		c.pagination = api.Pagination{CurrentPage: state.Page, LastPage: 1, PerPage: c.pagination.PerPage}
		c.mu.Unlock()

		c.logger.WithFields(logrus.Fields{
			"query": state.Encode(),
			"error": result.Message,
		}).Warn("task listing fetch failed")
		return
	}

	c.items = result.Data.Items
	c.pagination = result.Data.Pagination
	c.mu.Unlock()
}
