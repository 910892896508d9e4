package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"taskboard.dev/taskboard/pkg/api"
	"taskboard.dev/taskboard/pkg/client"
	"taskboard.dev/taskboard/pkg/listview"
	"taskboard.dev/taskboard/pkg/querystate"
)

var (
	tasksServer   string
	tasksToken    string
	tasksStatus   string
	tasksPriority string
	tasksSearch   string
	tasksSort     string
	tasksPage     int
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Browse and mutate tasks on a taskboard server",
}

// terminalNotifier prints controller notifications to stderr.
type terminalNotifier struct{}

func (terminalNotifier) Notify(kind listview.NotificationKind, title, detail string) {
	if detail != "" {
		fmt.Fprintf(os.Stderr, "[%s] %s: %s\n", kind, title, detail)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", kind, title)
}

func tasksClient() *client.Client {
	token := tasksToken
	if token == "" {
		token = os.Getenv("TASKBOARD_TOKEN")
	}
	return client.New(tasksServer, func() string { return token })
}

func tasksController(c *client.Client) *listview.Controller {
	state := querystate.Default()
	if tasksStatus != "" {
		state.Status = tasksStatus
	}
	if tasksPriority != "" {
		state.Priority = tasksPriority
	}
	state.Search = tasksSearch
	if tasksSort != "" {
		state.Sort = api.SortKey(tasksSort)
	}
	state = state.WithPage(tasksPage)

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	return listview.NewController(c,
		listview.WithInitialState(state),
		listview.WithNotifier(terminalNotifier{}),
		listview.WithLogger(logger),
	)
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks matching the given filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := tasksController(tasksClient())
		defer ctrl.Close()

		ctrl.Refresh(context.Background())

		items := ctrl.Items()
		if len(items) == 0 {
			fmt.Println("no tasks found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
		for _, t := range items {
			due := "-"
			if t.DueAt != nil {
				due = t.DueAt.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		p := ctrl.Pagination()
		if p.HasMultiplePages() {
			fmt.Printf("page %d of %d (%d-%d of %d)\n", p.CurrentPage, p.LastPage, p.From, p.To, p.Total)
		}
		return nil
	},
}

var (
	createTitle       string
	createDescription string
	createDue         string
)

var tasksCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a task",
	RunE: func(cmd *cobra.Command, args []string) error {
		// --status and --priority double as the new task's fields.
		status := tasksStatus
		if status == "" {
			status = string(api.StatusTodo)
		}
		priority := tasksPriority
		if priority == "" {
			priority = string(api.PriorityMedium)
		}

		input := api.TaskInput{
			Title:       createTitle,
			Description: createDescription,
			Status:      api.TaskStatus(status),
			Priority:    api.TaskPriority(priority),
		}
		if createDue != "" {
			due, err := time.Parse("2006-01-02", createDue)
			if err != nil {
				return fmt.Errorf("invalid --due date %q, want YYYY-MM-DD", createDue)
			}
			input.DueAt = &due
		}

		ctrl := tasksController(tasksClient())
		defer ctrl.Close()

		result := ctrl.CreateTask(context.Background(), input)
		if !result.Success {
			for field, messages := range result.FieldErrors {
				for _, m := range messages {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", field, m)
				}
			}
			return fmt.Errorf("create failed: %s", result.Message)
		}

		fmt.Printf("created task %s\n", result.Data.ID)
		return nil
	},
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctrl := tasksController(tasksClient())
		defer ctrl.Close()

		// Load the page first so the controller can step back when the
		// deleted task was the last one on it.
		ctrl.Refresh(context.Background())
		ctrl.DeleteTask(context.Background(), args[0])
		return nil
	},
}

func init() {
	tasksCmd.PersistentFlags().StringVar(&tasksServer, "server", "http://127.0.0.1:8080", "taskboard server base URL")
	tasksCmd.PersistentFlags().StringVar(&tasksToken, "token", "", "bearer token (defaults to TASKBOARD_TOKEN)")
	tasksCmd.PersistentFlags().StringVar(&tasksStatus, "status", "", "filter by status (todo|in_progress|completed)")
	tasksCmd.PersistentFlags().StringVar(&tasksPriority, "priority", "", "filter by priority (low|medium|high|urgent)")
	tasksCmd.PersistentFlags().StringVar(&tasksSearch, "search", "", "search in title and description")
	tasksCmd.PersistentFlags().StringVar(&tasksSort, "sort", "", "sort key (recent|due_date|priority|title)")
	tasksCmd.PersistentFlags().IntVar(&tasksPage, "page", 1, "page number")

	tasksCreateCmd.Flags().StringVar(&createTitle, "title", "", "task title")
	tasksCreateCmd.Flags().StringVar(&createDescription, "description", "", "task description")
	tasksCreateCmd.Flags().StringVar(&createDue, "due", "", "due date (YYYY-MM-DD)")
	_ = tasksCreateCmd.MarkFlagRequired("title")

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksCreateCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	rootCmd.AddCommand(tasksCmd)
}
