package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "taskboard.dev/taskboard/internal/errors"
	model "taskboard.dev/taskboard/internal/models"
	repository "taskboard.dev/taskboard/internal/repositories"
	"taskboard.dev/taskboard/internal/session"
	"taskboard.dev/taskboard/internal/storage"
	"taskboard.dev/taskboard/pkg/api"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(&model.User{}, &model.Task{}, &model.Attachment{}, &model.Preference{})
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func createTestUser(t *testing.T, db *gorm.DB, email string, admin bool) *model.User {
	t.Helper()

	auth := NewAuthService(repository.NewUserRepository(db), session.NewMemoryStore(), "test-secret", time.Hour, testLogger())
	user, err := auth.Register(context.Background(), "Test User", email, "correct-horse", admin)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func taskInput(title string, status api.TaskStatus, priority api.TaskPriority) api.TaskInput {
	return api.TaskInput{
		Title:    title,
		Status:   status,
		Priority: priority,
	}
}

func TestTaskService_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner-create@example.com", false)
	service := NewTaskService(repository.NewTaskRepository(db), testLogger())

	ctx := context.Background()
	task, err := service.Create(ctx, user.ID, taskInput("Write release notes", api.StatusTodo, api.PriorityHigh))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	if task.ID == "" {
		t.Error("expected task ID to be set")
	}
	if task.Version != 1 {
		t.Errorf("expected version 1, got %d", task.Version)
	}

	fetched, err := service.Get(ctx, user.ID, task.ID)
	if err != nil {
		t.Fatalf("failed to get task: %v", err)
	}
	if fetched.Status != api.StatusTodo {
		t.Errorf("expected status %s, got %s", api.StatusTodo, fetched.Status)
	}

	other := createTestUser(t, db, "other@example.com", false)
	if _, err := service.Get(ctx, other.ID, task.ID); err != apperrors.ErrTaskNotFound {
		t.Errorf("expected ErrTaskNotFound for foreign task, got %v", err)
	}
}

func TestTaskService_ListPagination(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner-page@example.com", false)
	service := NewTaskService(repository.NewTaskRepository(db), testLogger())

	ctx := context.Background()
	for i := 0; i < 16; i++ {
		if _, err := service.Create(ctx, user.ID, taskInput(fmt.Sprintf("Task %02d", i), api.StatusTodo, api.PriorityMedium)); err != nil {
			t.Fatalf("failed to create task: %v", err)
		}
	}

	_, pagination, err := service.List(ctx, repository.TaskListQuery{UserID: user.ID, PerPage: 15, Page: 1})
	if err != nil {
		t.Fatalf("failed to list tasks: %v", err)
	}
	if pagination.LastPage != 2 {
		t.Errorf("16 tasks at 15 per page should span 2 pages, got %d", pagination.LastPage)
	}
	if !pagination.HasMultiplePages() {
		t.Error("pagination controls should be shown for 2 pages")
	}

	items, pagination, err := service.List(ctx, repository.TaskListQuery{UserID: user.ID, PerPage: 15, Page: 2})
	if err != nil {
		t.Fatalf("failed to list page 2: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 task on page 2, got %d", len(items))
	}
	if pagination.From != 16 || pagination.To != 16 {
		t.Errorf("expected window 16-16, got %d-%d", pagination.From, pagination.To)
	}
}

func TestTaskService_ListFiltersAndSearch(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner-filter@example.com", false)
	service := NewTaskService(repository.NewTaskRepository(db), testLogger())

	ctx := context.Background()
	seed := []api.TaskInput{
		taskInput("Deploy staging", api.StatusCompleted, api.PriorityUrgent),
		taskInput("Deploy production", api.StatusTodo, api.PriorityUrgent),
		taskInput("Water the plants", api.StatusTodo, api.PriorityLow),
	}
	for _, input := range seed {
		if _, err := service.Create(ctx, user.ID, input); err != nil {
			t.Fatalf("failed to seed task: %v", err)
		}
	}

	items, _, err := service.List(ctx, repository.TaskListQuery{UserID: user.ID, Status: api.StatusCompleted, PerPage: 15, Page: 1})
	if err != nil {
		t.Fatalf("failed to filter by status: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Deploy staging" {
		t.Errorf("status filter returned wrong tasks: %+v", items)
	}

	items, _, err = service.List(ctx, repository.TaskListQuery{UserID: user.ID, Search: "deploy", PerPage: 15, Page: 1})
	if err != nil {
		t.Fatalf("failed to search: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 search hits, got %d", len(items))
	}

	items, _, err = service.List(ctx, repository.TaskListQuery{UserID: user.ID, Sort: api.SortPriority, PerPage: 15, Page: 1})
	if err != nil {
		t.Fatalf("failed to sort: %v", err)
	}
	if len(items) != 3 || items[2].Priority != api.PriorityLow {
		t.Errorf("priority sort should put the low task last: %+v", items)
	}
}

func TestTaskService_UpdateSurvivesOneConflict(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner-conflict@example.com", false)
	repo := repository.NewTaskRepository(db)
	service := NewTaskService(repo, testLogger())

	ctx := context.Background()
	task, err := service.Create(ctx, user.ID, taskInput("Original", api.StatusTodo, api.PriorityMedium))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	// Another writer bumps the version before our stale copy lands.
	stale := *task
	task.Title = "Concurrent edit"
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("concurrent update failed: %v", err)
	}
	stale.Title = "Stale edit"
	if err := repo.Update(ctx, &stale); err != apperrors.ErrOptimisticLock {
		t.Errorf("expected optimistic lock conflict, got %v", err)
	}

	// The service re-reads and retries, so a one-off conflict heals.
	updated, err := service.Update(ctx, user.ID, task.ID, taskInput("Final", api.StatusInProgress, api.PriorityHigh))
	if err != nil {
		t.Fatalf("service update failed: %v", err)
	}
	if updated.Title != "Final" || updated.Status != api.StatusInProgress {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestTaskService_ConcurrentCreates(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "owner-concurrent@example.com", false)
	service := NewTaskService(repository.NewTaskRepository(db), testLogger())

	const concurrentCount = 20
	var wg sync.WaitGroup
	wg.Add(concurrentCount)

	errs := make(chan error, concurrentCount)
	for i := 0; i < concurrentCount; i++ {
		go func(idx int) {
			defer wg.Done()
			_, err := service.Create(context.Background(), user.ID, taskInput(fmt.Sprintf("Task %d", idx), api.StatusTodo, api.PriorityLow))
			if err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent creation failed: %v", err)
	}

	_, pagination, _ := service.List(context.Background(), repository.TaskListQuery{UserID: user.ID, PerPage: 50, Page: 1})
	if pagination.Total != concurrentCount {
		t.Errorf("expected %d tasks, got %d", concurrentCount, pagination.Total)
	}
}

func TestAuthService_LoginAndLogout(t *testing.T) {
	db := setupTestDB(t)
	sessions := session.NewMemoryStore()
	auth := NewAuthService(repository.NewUserRepository(db), sessions, "test-secret", time.Hour, testLogger())

	ctx := context.Background()
	if _, err := auth.Register(ctx, "Ana", "ana@example.com", "correct-horse", false); err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	if _, _, err := auth.Login(ctx, "ana@example.com", "wrong-password"); err != apperrors.ErrInvalidCredentials {
		t.Errorf("expected invalid credentials, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "nobody@example.com", "correct-horse"); err != apperrors.ErrInvalidCredentials {
		t.Errorf("unknown email must look like invalid credentials, got %v", err)
	}

	token, user, err := auth.Login(ctx, "ana@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	resolved, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if resolved.ID != user.ID {
		t.Errorf("authenticate resolved wrong user")
	}

	if err := auth.Logout(ctx, token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := auth.Authenticate(ctx, token); err != apperrors.ErrUnauthorized {
		t.Errorf("token must be invalid after logout, got %v", err)
	}
}

func TestAuthService_DeactivatedUserIsLockedOut(t *testing.T) {
	db := setupTestDB(t)
	userRepo := repository.NewUserRepository(db)
	auth := NewAuthService(userRepo, session.NewMemoryStore(), "test-secret", time.Hour, testLogger())
	users := NewUserService(userRepo, testLogger())

	ctx := context.Background()
	registered, err := auth.Register(ctx, "Bob", "bob@example.com", "correct-horse", false)
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}

	token, _, err := auth.Login(ctx, "bob@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	toggled, err := users.ToggleActive(ctx, registered.ID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if toggled.Active {
		t.Error("toggle should have deactivated the user")
	}

	if _, err := auth.Authenticate(ctx, token); err != apperrors.ErrAccountDisabled {
		t.Errorf("existing session must fail for a deactivated user, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "bob@example.com", "correct-horse"); err != apperrors.ErrAccountDisabled {
		t.Errorf("deactivated user must not log in, got %v", err)
	}
}

func TestPreferenceService_DefaultsAndUpsert(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "prefs@example.com", false)
	service := NewPreferenceService(repository.NewPreferenceRepository(db))

	ctx := context.Background()
	pref, err := service.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to get defaults: %v", err)
	}
	if pref.DefaultSort != api.SortRecent || pref.PerPage != 15 {
		t.Errorf("unexpected defaults: %+v", pref)
	}

	if _, err := service.Update(ctx, user.ID, api.PreferenceInput{DefaultSort: api.SortDueDate, PerPage: 25}); err != nil {
		t.Fatalf("failed to save preferences: %v", err)
	}
	if _, err := service.Update(ctx, user.ID, api.PreferenceInput{DefaultSort: api.SortTitle, PerPage: 10}); err != nil {
		t.Fatalf("failed to overwrite preferences: %v", err)
	}

	pref, err = service.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("failed to reload preferences: %v", err)
	}
	if pref.DefaultSort != api.SortTitle || pref.PerPage != 10 {
		t.Errorf("preferences not persisted: %+v", pref)
	}
}

func TestAttachmentService_UploadDeleteAndJanitor(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "files@example.com", false)

	uploads, err := storage.NewDiskStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	taskRepo := repository.NewTaskRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	tasks := NewTaskService(taskRepo, testLogger())
	service := NewAttachmentService(taskRepo, attachmentRepo, uploads, testLogger())

	ctx := context.Background()
	task, err := tasks.Create(ctx, user.ID, taskInput("With files", api.StatusTodo, api.PriorityMedium))
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	kept, err := service.Upload(ctx, user.ID, task.ID, "kept.txt", strings.NewReader("kept"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	orphanPath, err := uploads.Save(ctx, "orphan.txt", strings.NewReader("orphan"))
	if err != nil {
		t.Fatalf("failed to write orphan file: %v", err)
	}

	janitor := NewAttachmentJanitor(uploads, attachmentRepo, time.Hour, 0, testLogger())
	defer janitor.Shutdown(ctx)

	time.Sleep(10 * time.Millisecond) // let file mtimes fall behind the cutoff
	janitor.SweepOnce(ctx)

	if _, err := uploads.Open(ctx, orphanPath); err == nil {
		t.Error("janitor should have removed the orphan file")
	}
	if _, err := uploads.Open(ctx, kept.Path); err != nil {
		t.Errorf("janitor must not remove referenced files: %v", err)
	}

	wrongUser := createTestUser(t, db, "intruder@example.com", false)
	if err := service.Delete(ctx, wrongUser.ID, task.ID, kept.ID); err != apperrors.ErrTaskNotFound {
		t.Errorf("foreign user must not delete attachments, got %v", err)
	}

	if err := service.Delete(ctx, user.ID, task.ID, kept.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := uploads.Open(ctx, kept.Path); err == nil {
		t.Error("attachment file should be gone after delete")
	}
}
