package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "taskboard.dev/taskboard/internal/errors"
	middleware "taskboard.dev/taskboard/internal/http/middlewares"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/services"
	"taskboard.dev/taskboard/pkg/api"
	"taskboard.dev/taskboard/pkg/querystate"
)

const maxPerPage = 100

type TaskHandler struct {
	tasks       *services.TaskService
	attachments *services.AttachmentService
	preferences *services.PreferenceService
}

func NewTaskHandler(
	tasks *services.TaskService,
	attachments *services.AttachmentService,
	preferences *services.PreferenceService,
) *TaskHandler {
	return &TaskHandler{
		tasks:       tasks,
		attachments: attachments,
		preferences: preferences,
	}
}

// List serves one page of the user's tasks. Filter, sort, search and
// page come from the query string in the same encoding the client's
// query-state codec produces; per_page defaults to the user's saved
// preference.
func (h *TaskHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)
	ctx := c.Request().Context()

	state := querystate.FromValues(c.QueryParams())

	pref, err := h.preferences.Get(ctx, user.ID)
	if err != nil {
		return err
	}

	perPage := pref.PerPage
	if raw := c.QueryParam("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			perPage = n
		}
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	sort := state.Sort
	if c.QueryParam("sort") == "" {
		sort = pref.DefaultSort
	}

	query := repository.TaskListQuery{
		UserID:  user.ID,
		Search:  state.Search,
		Sort:    sort,
		Page:    state.Page,
		PerPage: perPage,
	}
	if status, ok := state.StatusFilter(); ok {
		query.Status = status
	}
	if priority, ok := state.PriorityFilter(); ok {
		query.Priority = priority
	}

	items, pagination, err := h.tasks.List(ctx, query)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, api.TaskPage{
		Items:      items,
		Pagination: pagination,
	})
}

func (h *TaskHandler) Get(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	task, err := h.tasks.Get(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, task.ToAPI())
}

func (h *TaskHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)

	var input api.TaskInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	task, err := h.tasks.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusCreated, task.ToAPI())
}

func (h *TaskHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	var input api.TaskInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON payload")
	}
	if err := c.Validate(&input); err != nil {
		return err
	}

	task, err := h.tasks.Update(c.Request().Context(), user.ID, id, input)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, task.ToAPI())
}

func (h *TaskHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	id := c.Param("id")
	if id == "" {
		return apperrors.ErrTaskIDRequired
	}

	if err := h.tasks.Delete(c.Request().Context(), user.ID, id); err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "task deleted", nil)
}

func (h *TaskHandler) UploadAttachment(c echo.Context) error {
	user := middleware.CurrentUser(c)
	taskID := c.Param("id")
	if taskID == "" {
		return apperrors.ErrTaskIDRequired
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "a file field is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	attachment, err := h.attachments.Upload(c.Request().Context(), user.ID, taskID, fileHeader.Filename, file)
	if err != nil {
		return err
	}

	return respondMessage(c, http.StatusCreated, "attachment uploaded", attachment.ToAPI())
}

func (h *TaskHandler) DeleteAttachment(c echo.Context) error {
	user := middleware.CurrentUser(c)
	taskID := c.Param("id")
	attachmentID := c.Param("attachmentID")
	if taskID == "" {
		return apperrors.ErrTaskIDRequired
	}
	if attachmentID == "" {
		return apperrors.ErrAttachmentNotFound
	}

	if err := h.attachments.Delete(c.Request().Context(), user.ID, taskID, attachmentID); err != nil {
		return err
	}

	return respondMessage(c, http.StatusOK, "attachment deleted", nil)
}

func (h *TaskHandler) DownloadAttachment(c echo.Context) error {
	user := middleware.CurrentUser(c)
	taskID := c.Param("id")
	attachmentID := c.Param("attachmentID")

	attachment, file, err := h.attachments.Open(c.Request().Context(), user.ID, taskID, attachmentID)
	if err != nil {
		return err
	}
	defer file.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+attachment.OriginalName+`"`)
	return c.Stream(http.StatusOK, echo.MIMEOctetStream, file)
}
