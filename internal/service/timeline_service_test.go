package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/sitetimeline/internal/domain"
	"github.com/mtlprog/sitetimeline/internal/drag"
	"github.com/mtlprog/sitetimeline/internal/service"
	"github.com/mtlprog/sitetimeline/internal/timeline"
)

var fixedNow = time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

// fakeStore is an in-memory TaskStore and ProjectStore.
type fakeStore struct {
	mu        sync.Mutex
	projects  map[string]bool
	tasks     map[string][]*domain.Task
	listCalls int
	saves     [][]domain.DateUpdate

	// saveErrs are returned by successive saves; nil once exhausted.
	saveErrs []error
	// saveHook runs before a save returns, with the save context.
	saveHook func(ctx context.Context) error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects: make(map[string]bool),
		tasks:    make(map[string][]*domain.Task),
	}
}

func (f *fakeStore) GetByID(_ context.Context, projectID string) (*domain.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.projects[projectID] {
		return nil, domain.ErrProjectNotFound
	}
	return &domain.Project{ID: projectID, Name: "Project " + projectID}, nil
}

func (f *fakeStore) ListTasks(_ context.Context, projectID string) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	return append([]*domain.Task(nil), f.tasks[projectID]...), nil
}

func (f *fakeStore) SaveTaskDates(ctx context.Context, updates []domain.DateUpdate) error {
	if f.saveHook != nil {
		if err := f.saveHook(ctx); err != nil {
			return err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.saves = append(f.saves, append([]domain.DateUpdate(nil), updates...))
	if len(f.saveErrs) > 0 {
		err := f.saveErrs[0]
		f.saveErrs = f.saveErrs[1:]
		return err
	}
	return nil
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeStore) addProject(tasks ...*domain.Task) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := uuid.NewString()
	f.projects[id] = true
	for _, task := range tasks {
		task.ProjectID = id
	}
	f.tasks[id] = tasks
	return id
}

func task(id, category string) *domain.Task {
	return &domain.Task{
		ID:       id,
		Title:    "Task " + id,
		Category: category,
		Status:   domain.TaskStatusNotStarted,
		Priority: domain.TaskPriorityMedium,
		Type:     domain.TaskTypeRegular,
	}
}

// sequence returns framing followed one day later by roofing.
func sequence() (*domain.Task, *domain.Task) {
	f := task("f", "framing")
	f.StartDate = datePtr(2024, 6, 3)
	f.DueDate = datePtr(2024, 6, 13)
	r := task("r", "roofing")
	r.StartDate = datePtr(2024, 6, 14)
	r.DueDate = datePtr(2024, 6, 20)
	return f, r
}

// TimelineServiceTestSuite is the test suite for TimelineService.
type TimelineServiceTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *fakeStore
	svc   *service.TimelineService
}

func TestTimelineServiceSuite(t *testing.T) {
	suite.Run(t, new(TimelineServiceTestSuite))
}

// SetupTest runs before each test.
func (s *TimelineServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = newFakeStore()
	s.svc = service.NewTimelineService(s.store, s.store, service.Options{
		SaveTimeout:  50 * time.Millisecond,
		SaveAttempts: 3,
		SaveBackoff:  time.Millisecond,
		ViewMode:     domain.ViewModeWeeks,
		Now:          func() time.Time { return fixedNow },
	})
}

func (s *TimelineServiceTestSuite) dropAt(projectID, taskID string, d time.Time) drag.DropResult {
	m, err := s.svc.Machine(s.ctx, projectID)
	s.Require().NoError(err)

	_, err = s.svc.StartDrag(s.ctx, projectID, taskID)
	s.Require().NoError(err)

	x := timeline.PixelFromDate(d, m.ViewportWidth(), m.Range())
	result, err := s.svc.DropDrag(s.ctx, projectID, x)
	s.Require().NoError(err)
	return result
}

// TestMachine_LoadedOncePerProject caches machines in the registry.
func (s *TimelineServiceTestSuite) TestMachine_LoadedOncePerProject() {
	projectID := s.store.addProject(sequence())

	first, err := s.svc.Machine(s.ctx, projectID)
	s.Require().NoError(err)
	second, err := s.svc.Machine(s.ctx, projectID)
	s.Require().NoError(err)

	s.Same(first, second)
	s.Equal(1, s.store.listCalls)
}

// TestMachine_UnknownProject surfaces the store error.
func (s *TimelineServiceTestSuite) TestMachine_UnknownProject() {
	_, err := s.svc.Machine(s.ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrProjectNotFound)
}

// TestDropDrag_SavesBatch persists the dragged and impacted tasks.
func (s *TimelineServiceTestSuite) TestDropDrag_SavesBatch() {
	projectID := s.store.addProject(sequence())

	result := s.dropAt(projectID, "f", date(2024, 6, 10))
	s.Equal(drag.OutcomeCommitted, result.Outcome)
	s.NoError(<-result.Saved)

	s.Require().Equal(1, s.store.saveCount())
	s.Len(s.store.saves[0], 2)
}

// TestDropDrag_RetriesTransientFailures saves on the third attempt.
func (s *TimelineServiceTestSuite) TestDropDrag_RetriesTransientFailures() {
	s.store.saveErrs = []error{errors.New("connection reset"), errors.New("connection reset")}
	projectID := s.store.addProject(sequence())

	result := s.dropAt(projectID, "f", date(2024, 6, 10))
	s.NoError(<-result.Saved)
	s.Equal(3, s.store.saveCount())
}

// TestDropDrag_GivesUpAfterAttempts keeps the overlay when every attempt fails.
func (s *TimelineServiceTestSuite) TestDropDrag_GivesUpAfterAttempts() {
	boom := errors.New("connection refused")
	s.store.saveErrs = []error{boom, boom, boom, boom}
	projectID := s.store.addProject(sequence())

	result := s.dropAt(projectID, "f", date(2024, 6, 10))
	err := <-result.Saved
	s.ErrorIs(err, boom)
	s.Equal(3, s.store.saveCount())

	overrides, err := s.svc.Overrides(s.ctx, projectID)
	s.Require().NoError(err)
	s.Len(overrides, 2)

	n, err := s.svc.ResetOverrides(s.ctx, projectID)
	s.Require().NoError(err)
	s.Equal(2, n)
}

// TestDropDrag_PermanentFailureNotRetried stops on errors that cannot succeed later.
func (s *TimelineServiceTestSuite) TestDropDrag_PermanentFailureNotRetried() {
	s.store.saveErrs = []error{domain.ErrTaskNotFound}
	projectID := s.store.addProject(sequence())

	result := s.dropAt(projectID, "f", date(2024, 6, 10))
	s.ErrorIs(<-result.Saved, domain.ErrTaskNotFound)
	s.Equal(1, s.store.saveCount())
}

// TestDropDrag_AttemptTimeout bounds a hanging save.
func (s *TimelineServiceTestSuite) TestDropDrag_AttemptTimeout() {
	s.store.saveHook = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	projectID := s.store.addProject(sequence())

	result := s.dropAt(projectID, "f", date(2024, 6, 10))
	s.ErrorIs(<-result.Saved, context.DeadlineExceeded)
}

// TestDropDrag_RejectedNotSaved never reaches the store.
func (s *TimelineServiceTestSuite) TestDropDrag_RejectedNotSaved() {
	a := task("a", "foundation")
	a.DueDate = datePtr(2024, 6, 1)
	b := task("b", "framing")
	projectID := s.store.addProject(a, b)

	result := s.dropAt(projectID, "b", date(2024, 5, 20))
	s.Equal(drag.OutcomeRejected, result.Outcome)

	s.svc.Wait()
	s.Equal(0, s.store.saveCount())
}

// TestPreviewMove leaves the timeline untouched.
func (s *TimelineServiceTestSuite) TestPreviewMove() {
	projectID := s.store.addProject(sequence())

	preview, err := s.svc.PreviewMove(s.ctx, projectID, "f", time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(date(2024, 6, 10), preview.ProposedStart)
	s.Equal(date(2024, 6, 20), preview.ProposedSpan.End)
	s.Equal(domain.ValidityValid, preview.Validity)
	s.Equal([]string{"r"}, preview.AffectedTaskIDs)

	overrides, err := s.svc.Overrides(s.ctx, projectID)
	s.Require().NoError(err)
	s.Empty(overrides)

	_, err = s.svc.PreviewMove(s.ctx, projectID, "missing", date(2024, 6, 10))
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

// TestCheckSchedule reports tasks that break the rules where they sit.
func (s *TimelineServiceTestSuite) TestCheckSchedule() {
	foundation := task("a", "foundation")
	foundation.StartDate = datePtr(2024, 5, 6)
	foundation.DueDate = datePtr(2024, 5, 27)
	framing := task("b", "framing")
	framing.StartDate = datePtr(2024, 5, 20)
	framing.DueDate = datePtr(2024, 6, 19)
	done := task("c", "roofing")
	done.Status = domain.TaskStatusCompleted
	done.StartDate = datePtr(2024, 1, 8)
	done.DueDate = datePtr(2024, 1, 18)
	projectID := s.store.addProject(foundation, framing, done)

	reports, err := s.svc.CheckSchedule(s.ctx, projectID)
	s.Require().NoError(err)
	s.Require().Len(reports, 1)
	s.Equal("b", reports[0].Task.ID)
	s.Equal(domain.ValidityInvalid, reports[0].Validity)
	s.Equal(domain.ViolationPhaseDependency, reports[0].Violations[0].Kind)
}

// TestRefresh picks up tasks added in storage.
func (s *TimelineServiceTestSuite) TestRefresh() {
	f, r := sequence()
	projectID := s.store.addProject(f)

	view, err := s.svc.Timeline(s.ctx, projectID, service.ViewportQuery{ViewportHeightPx: 400})
	s.Require().NoError(err)
	s.Equal(1, view.TotalRows)

	s.store.mu.Lock()
	r.ProjectID = projectID
	s.store.tasks[projectID] = append(s.store.tasks[projectID], r)
	s.store.mu.Unlock()

	_, err = s.svc.Refresh(s.ctx, projectID)
	s.Require().NoError(err)

	view, err = s.svc.Timeline(s.ctx, projectID, service.ViewportQuery{ViewportHeightPx: 400})
	s.Require().NoError(err)
	s.Equal(2, view.TotalRows)
	s.Equal(2, s.store.listCalls)
}

// TestTimeline_Virtualizes returns only the visible rows of a long list.
func (s *TimelineServiceTestSuite) TestTimeline_Virtualizes() {
	tasks := make([]*domain.Task, 200)
	for i := range tasks {
		tasks[i] = task(uuid.NewString(), "drywall")
	}
	projectID := s.store.addProject(tasks...)

	view, err := s.svc.Timeline(s.ctx, projectID, service.ViewportQuery{
		ScrollTopPx:      800,
		ViewportHeightPx: 600,
		RowHeightPx:      40,
		BufferRows:       5,
		Threshold:        50,
	})
	s.Require().NoError(err)
	s.True(view.Virtualized)
	s.Equal(timeline.Window{StartIndex: 15, EndIndex: 40}, view.Window)
	s.Len(view.Bars, 26)
	s.Equal(200, view.TotalRows)
	s.Nil(view.Drag)
}

// TestTimeline_ShowsActiveDrag includes the drag snapshot.
func (s *TimelineServiceTestSuite) TestTimeline_ShowsActiveDrag() {
	projectID := s.store.addProject(sequence())

	_, err := s.svc.StartDrag(s.ctx, projectID, "f")
	s.Require().NoError(err)

	view, err := s.svc.Timeline(s.ctx, projectID, service.ViewportQuery{ViewportHeightPx: 400})
	s.Require().NoError(err)
	s.Require().NotNil(view.Drag)
	s.Equal("f", view.Drag.DraggedTaskID)
	s.False(view.Virtualized)
	s.Len(view.Bars, 2)

	s.Require().NoError(s.svc.CancelDrag(s.ctx, projectID))
	s.ErrorIs(s.svc.CancelDrag(s.ctx, projectID), domain.ErrNoActiveDrag)
}
