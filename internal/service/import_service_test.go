package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskwell/taskwell-api/internal/domain"
	"github.com/taskwell/taskwell-api/internal/importer"
	"github.com/taskwell/taskwell-api/internal/store"
)

type importFixture struct {
	tasks    *memTaskStore
	projects *memProjectStore
	content  *memContentStore
	activity *memActivityStore
	sources  *memImportSourceStore
	svc      ImportService
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()

	f := &importFixture{
		tasks:    newMemTaskStore(),
		projects: newMemProjectStore(),
		content:  newMemContentStore(),
		activity: newMemActivityStore(),
		sources:  newMemImportSourceStore(),
	}

	svc, err := NewImportService(f.tasks, f.projects, f.content, f.activity, f.sources, fakeTransactor{}, slog.Default())
	require.NoError(t, err)
	f.svc = svc
	return f
}

// seedImportedTask plants a task carrying the given provenance tag so
// previews have a candidate pool to match against.
func (f *importFixture) seedImportedTask(t *testing.T, title string, source importer.Source) *domain.Task {
	t.Helper()

	inbox, err := f.projects.EnsureInbox(context.Background())
	require.NoError(t, err)
	task, err := domain.NewTask(inbox.ID, title)
	require.NoError(t, err)
	task.Source = string(source)
	require.NoError(t, f.tasks.Create(context.Background(), task))
	return task
}

func TestImportServicePreviewClassifies(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	existing := f.seedImportedTask(t, "Buy milk", importer.SourceTodoist)

	payload := "title,notes\n" +
		"Buy milk,2% this time\n" +
		"Walk the dog,\n" +
		",no title here\n"

	preview, err := f.svc.Preview(ctx, importer.SourceTodoist, payload)
	require.NoError(t, err)
	require.Len(t, preview.Rows, 3)
	assert.Equal(t, 2, preview.ValidRows)
	assert.Equal(t, 1, preview.InvalidRows)

	dup := preview.Rows[0]
	assert.Equal(t, importer.ActionUpdate, dup.SuggestedAction)
	require.NotNil(t, dup.DuplicateMatch)
	assert.Equal(t, existing.ID, dup.DuplicateMatch.ID)
	assert.Equal(t, importer.MatchExact, dup.DuplicateMatch.Kind)
	assert.Equal(t, 1.0, dup.DuplicateMatch.Score)

	fresh := preview.Rows[1]
	assert.Equal(t, importer.ActionCreate, fresh.SuggestedAction)
	assert.Nil(t, fresh.DuplicateMatch)

	bad := preview.Rows[2]
	assert.Equal(t, importer.ActionSkip, bad.SuggestedAction)
	assert.NotEmpty(t, bad.Error)
}

func TestImportServicePreviewScopesPoolBySource(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	// The same title under a different provenance tag is invisible to
	// a todoist preview.
	f.seedImportedTask(t, "Buy milk", importer.SourceAppleNotes)

	preview, err := f.svc.Preview(ctx, importer.SourceTodoist, "title\nBuy milk\n")
	require.NoError(t, err)
	require.Len(t, preview.Rows, 1)
	assert.Equal(t, importer.ActionCreate, preview.Rows[0].SuggestedAction)
	assert.Nil(t, preview.Rows[0].DuplicateMatch)
}

func TestImportServicePreviewUnknownSource(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)

	_, err := f.svc.Preview(context.Background(), importer.Source("asana"), "title\nx\n")
	assert.ErrorIs(t, err, ErrUnknownImportSource)
}

func TestImportServiceCommitCreatesTasks(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	rows := []importer.CommitRow{
		{
			Action: importer.ActionCreate,
			Values: map[string]string{
				"title":    "Buy milk",
				"status":   "In Progress",
				"priority": "HIGH",
				"due_date": "2026-09-15",
			},
		},
		{
			Action: importer.ActionSkip,
			Values: map[string]string{"title": "ignored"},
		},
	}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedTasks)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 0, result.UpdatedTasks)

	lane, err := f.tasks.ListByStatus(ctx, domain.TaskStatusInProgress)
	require.NoError(t, err)
	require.Len(t, lane, 1)

	created := lane[0]
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, string(importer.SourceTodoist), created.Source)
	assert.Equal(t, domain.TaskPriorityHigh, created.Priority)
	assert.Equal(t, 0, created.LaneOrder)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, "2026-09-15", created.DueDate.Format("2006-01-02"))

	// Counter bumped once for the changing commit.
	stat, err := f.sources.Get(ctx, string(importer.SourceTodoist))
	require.NoError(t, err)
	assert.Equal(t, 1, stat.ImportCount)

	assert.Contains(t, f.activity.actions(), "commit")
}

func TestImportServiceCommitUpdatesMatchedTask(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	existing := f.seedImportedTask(t, "Buy milk", importer.SourceTodoist)

	rows := []importer.CommitRow{{
		Action: importer.ActionUpdate,
		Values: map[string]string{"title": "Buy milk", "notes": "oat, not dairy"},
		DuplicateMatch: &importer.DuplicateMatch{
			EntityKind: importer.EntityKindTask,
			ID:         existing.ID,
			Title:      existing.Title,
			Score:      1.0,
			Kind:       importer.MatchExact,
		},
	}}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedTasks)
	assert.Equal(t, 0, result.CreatedTasks)

	updated, err := f.tasks.GetByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "oat, not dairy", updated.Details)
}

func TestImportServiceCommitUpdateWithoutMatch(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	// An update row whose preview found no duplicate creates instead.
	rows := []importer.CommitRow{{
		Action: importer.ActionUpdate,
		Values: map[string]string{"title": "Buy milk"},
	}}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedTasks)
	assert.Equal(t, 0, result.UpdatedTasks)
}

func TestImportServiceCommitBlankTitleRowSkipped(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	// A blank-title row is counted as skipped; the rest of the batch
	// still lands.
	result, err := f.svc.Commit(ctx, importer.SourceTodoist, []importer.CommitRow{
		{Action: importer.ActionCreate, Values: map[string]string{"title": "   "}},
		{Action: importer.ActionCreate, Values: map[string]string{"title": "Kept"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.CreatedTasks)

	lane, err := f.tasks.ListByStatus(ctx, domain.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, lane, 1)
	assert.Equal(t, "Kept", lane[0].Title)

	// Same rule for project-producing sources.
	result, err = f.svc.Commit(ctx, importer.SourceTrello, []importer.CommitRow{
		{Action: importer.ActionUpdate, Values: map[string]string{"title": ""}},
		{Action: importer.ActionCreate, Values: map[string]string{"title": "Board"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.CreatedProjects)
}

func TestImportServiceCommitUpdateMovesLane(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	moved := f.seedImportedTask(t, "Buy milk", importer.SourceTodoist)
	stays := f.seedImportedTask(t, "Walk dog", importer.SourceTodoist)
	stays.LaneOrder = 1
	require.NoError(t, f.tasks.Update(ctx, stays))

	rows := []importer.CommitRow{{
		Action: importer.ActionUpdate,
		Values: map[string]string{"title": "Buy milk", "status": "done"},
		DuplicateMatch: &importer.DuplicateMatch{
			EntityKind: importer.EntityKindTask,
			ID:         moved.ID,
			Title:      moved.Title,
			Score:      1.0,
			Kind:       importer.MatchExact,
		},
	}}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpdatedTasks)

	// The vacated lane closes its gap.
	todo, err := f.tasks.ListByStatus(ctx, domain.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, stays.ID, todo[0].ID)
	assert.Equal(t, 0, todo[0].LaneOrder)

	// The moved task lands at the target lane's tail, completed.
	done, err := f.tasks.ListByStatus(ctx, domain.TaskStatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, moved.ID, done[0].ID)
	assert.Equal(t, 0, done[0].LaneOrder)
	assert.NotNil(t, done[0].CompletedAt)
}

func TestImportServiceCommitUpdateVanishedTarget(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	// The matched task was deleted between preview and commit.
	rows := []importer.CommitRow{{
		Action: importer.ActionUpdate,
		Values: map[string]string{"title": "Buy milk"},
		DuplicateMatch: &importer.DuplicateMatch{
			EntityKind: importer.EntityKindTask,
			ID:         uuid.New(),
			Title:      "Buy milk",
			Score:      1.0,
			Kind:       importer.MatchExact,
		},
	}}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedTasks)
	assert.Equal(t, 0, result.UpdatedTasks)

	lane, err := f.tasks.ListByStatus(ctx, domain.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, lane, 1)
	assert.Equal(t, "Buy milk", lane[0].Title)
}

func TestImportServiceCommitExplicitProjectID(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	target, err := domain.NewProject("Chores")
	require.NoError(t, err)
	require.NoError(t, f.projects.Create(ctx, target))

	rows := []importer.CommitRow{
		{
			Action: importer.ActionCreate,
			Values: map[string]string{"title": "Mow lawn", "project_id": target.ID.String()},
		},
		{
			// A project_id naming nothing falls back to the Inbox.
			Action: importer.ActionCreate,
			Values: map[string]string{"title": "Stray", "project_id": uuid.NewString()},
		},
	}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedTasks)

	inbox, err := f.projects.GetInbox(ctx)
	require.NoError(t, err)
	lane, err := f.tasks.ListByStatus(ctx, domain.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, lane, 2)
	byTitle := make(map[string]uuid.UUID, len(lane))
	for _, task := range lane {
		byTitle[task.Title] = task.ProjectID
	}
	assert.Equal(t, target.ID, byTitle["Mow lawn"])
	assert.Equal(t, inbox.ID, byTitle["Stray"])
}

func TestImportServiceCommitCreatesProjects(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	rows := []importer.CommitRow{{
		Action: importer.ActionCreate,
		Values: map[string]string{
			"title":  "Website relaunch",
			"status": "active",
			"notes":  "Q4 push",
		},
	}}

	result, err := f.svc.Commit(ctx, importer.SourceTrello, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedProjects)

	projects, err := f.projects.ListBySource(ctx, string(importer.SourceTrello))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Website relaunch", projects[0].Title)
	assert.Equal(t, domain.ProjectStatusActive, projects[0].Status)
	assert.Equal(t, "Q4 push", projects[0].Description)
}

func TestImportServiceCommitAppleNotesAlwaysCreates(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	matched := f.seedImportedTask(t, "Grocery list", importer.SourceAppleNotes)

	rows := []importer.CommitRow{
		{
			// Even an update-suggested duplicate produces a fresh note.
			Action: importer.ActionUpdate,
			Values: map[string]string{"title": "Grocery list", "body": "eggs, flour"},
			DuplicateMatch: &importer.DuplicateMatch{
				EntityKind: importer.EntityKindTask,
				ID:         matched.ID,
				Title:      matched.Title,
				Score:      1.0,
				Kind:       importer.MatchExact,
			},
		},
		{
			Action: importer.ActionCreate,
			Values: map[string]string{"title": "Loose thought"},
		},
	}

	result, err := f.svc.Commit(ctx, importer.SourceAppleNotes, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedNotes)
	assert.Equal(t, 0, result.UpdatedTasks)

	// The matched row attaches to the existing task.
	attached, err := f.content.ListByParent(ctx, domain.ParentTypeTask, matched.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)
	assert.Equal(t, "eggs, flour", attached[0].Body)

	// The unmatched row falls back to the Inbox project, body from title.
	inbox, err := f.projects.GetInbox(ctx)
	require.NoError(t, err)
	loose, err := f.content.ListByParent(ctx, domain.ParentTypeProject, inbox.ID)
	require.NoError(t, err)
	require.Len(t, loose, 1)
	assert.Equal(t, "Loose thought", loose[0].Body)
}

func TestImportServiceCommitNoteExplicitTaskID(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	target := f.seedImportedTask(t, "Pack for trip", importer.SourceTodoist)

	rows := []importer.CommitRow{{
		Action: importer.ActionCreate,
		Values: map[string]string{
			"title":   "Packing notes",
			"body":    "passport, charger",
			"task_id": target.ID.String(),
		},
	}}

	result, err := f.svc.Commit(ctx, importer.SourceAppleNotes, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedNotes)

	attached, err := f.content.ListByParent(ctx, domain.ParentTypeTask, target.ID)
	require.NoError(t, err)
	require.Len(t, attached, 1)
	assert.Equal(t, "passport, charger", attached[0].Body)
}

func TestImportServiceCommitNoteFailureSkipsRow(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	rows := []importer.CommitRow{
		{
			// No title and no body yields nothing to store; the row is
			// counted as skipped and the rest of the batch proceeds.
			Action: importer.ActionCreate,
			Values: map[string]string{"title": "", "body": "  "},
		},
		{
			Action: importer.ActionCreate,
			Values: map[string]string{"title": "Kept"},
		},
	}

	result, err := f.svc.Commit(ctx, importer.SourceAppleNotes, rows)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CreatedNotes)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportServiceCommitAllSkippedBumpsNothing(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	rows := []importer.CommitRow{
		{Action: importer.ActionSkip, Values: map[string]string{"title": "a"}},
		{Action: importer.ActionSkip, Values: map[string]string{"title": "b"}},
	}

	result, err := f.svc.Commit(ctx, importer.SourceTodoist, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.False(t, result.Changed())

	_, err = f.sources.Get(ctx, string(importer.SourceTodoist))
	assert.True(t, store.IsNotFoundError(err))
	assert.Empty(t, f.activity.actions())
}

func TestImportServiceCommitUnknownSource(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)

	_, err := f.svc.Commit(context.Background(), importer.Source("asana"), nil)
	assert.ErrorIs(t, err, ErrUnknownImportSource)
}

func TestImportServiceSourceStats(t *testing.T) {
	t.Parallel()
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Commit(ctx, importer.SourceTodoist, []importer.CommitRow{
		{Action: importer.ActionCreate, Values: map[string]string{"title": "one"}},
	})
	require.NoError(t, err)
	_, err = f.svc.Commit(ctx, importer.SourceTodoist, []importer.CommitRow{
		{Action: importer.ActionCreate, Values: map[string]string{"title": "two"}},
	})
	require.NoError(t, err)
	_, err = f.svc.Commit(ctx, importer.SourceTrello, []importer.CommitRow{
		{Action: importer.ActionCreate, Values: map[string]string{"title": "Board"}},
	})
	require.NoError(t, err)

	stats, err := f.svc.SourceStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	bySource := make(map[string]int, len(stats))
	for _, s := range stats {
		bySource[s.Source] = s.ImportCount
	}
	assert.Equal(t, 2, bySource[string(importer.SourceTodoist)])
	assert.Equal(t, 1, bySource[string(importer.SourceTrello)])
}
