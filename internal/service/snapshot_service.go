package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/timetable"
	"github.com/noah-isme/pnf-horario-api/pkg/jobs"
)

// JobTypeSnapshotInvalidation drops cached snapshots after a commit.
const JobTypeSnapshotInvalidation = "snapshot.invalidate"

type classLister interface {
	ListByProfessor(ctx context.Context, professorID int) ([]models.ClassAssignment, error)
	ListByClassroom(ctx context.Context, classroomID int) ([]models.ClassAssignment, error)
}

type snapshotCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Invalidate(ctx context.Context, pattern string) error
}

// SnapshotInvalidation lists the professors and classrooms whose cached
// snapshots are stale.
type SnapshotInvalidation struct {
	ProfessorIDs []int `json:"professor_ids"`
	ClassroomIDs []int `json:"classroom_ids"`
}

// Empty reports whether there is nothing to invalidate.
func (i SnapshotInvalidation) Empty() bool {
	return len(i.ProfessorIDs) == 0 && len(i.ClassroomIDs) == 0
}

// SnapshotService builds the weekly schedules of professors and classrooms
// used for cross-section conflict checks.
type SnapshotService struct {
	repo    classLister
	cache   snapshotCache
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewSnapshotService constructs a SnapshotService. cache may be nil.
func NewSnapshotService(repo classLister, cache snapshotCache, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

const snapshotKeyPattern = "horarios:*"

func professorSnapshotKey(id int) string {
	return fmt.Sprintf("horarios:profesor:%d", id)
}

func classroomSnapshotKey(id int) string {
	return fmt.Sprintf("horarios:aula:%d", id)
}

// Professor returns the snapshot of every class taught by the professor.
func (s *SnapshotService) Professor(ctx context.Context, professorID int) (*models.ScheduleSnapshot, error) {
	return s.load(ctx, professorSnapshotKey(professorID), "snapshot_professor", func(ctx context.Context) ([]models.ClassAssignment, error) {
		return s.repo.ListByProfessor(ctx, professorID)
	})
}

// Classroom returns the snapshot of every class hosted in the classroom.
func (s *SnapshotService) Classroom(ctx context.Context, classroomID int) (*models.ScheduleSnapshot, error) {
	return s.load(ctx, classroomSnapshotKey(classroomID), "snapshot_classroom", func(ctx context.Context) ([]models.ClassAssignment, error) {
		return s.repo.ListByClassroom(ctx, classroomID)
	})
}

// Pair fetches the professor and classroom snapshots concurrently. A zero
// classroom id yields a nil classroom snapshot.
func (s *SnapshotService) Pair(ctx context.Context, professorID, classroomID int) (*models.ScheduleSnapshot, *models.ScheduleSnapshot, error) {
	var professor, classroom *models.ScheduleSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, err := s.Professor(gctx, professorID)
		professor = snap
		return err
	})
	if classroomID > 0 {
		g.Go(func() error {
			snap, err := s.Classroom(gctx, classroomID)
			classroom = snap
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return professor, classroom, nil
}

func (s *SnapshotService) load(ctx context.Context, key, label string, fetch func(context.Context) ([]models.ClassAssignment, error)) (*models.ScheduleSnapshot, error) {
	if s.cache != nil {
		var cached models.ScheduleSnapshot
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			return &cached, nil
		}
	}

	start := time.Now()
	classes, err := fetch(ctx)
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	snapshot := BuildSnapshot(classes)
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, snapshot, s.ttl)
	}
	return snapshot, nil
}

// Invalidate removes the cached snapshots listed in inv.
func (s *SnapshotService) Invalidate(ctx context.Context, inv SnapshotInvalidation) error {
	if s.cache == nil || inv.Empty() {
		return nil
	}
	keys := make([]string, 0, len(inv.ProfessorIDs)+len(inv.ClassroomIDs))
	for _, id := range inv.ProfessorIDs {
		keys = append(keys, professorSnapshotKey(id))
	}
	for _, id := range inv.ClassroomIDs {
		keys = append(keys, classroomSnapshotKey(id))
	}
	return s.cache.Delete(ctx, keys...)
}

// Purge drops every cached snapshot. It runs at startup so entries
// written by an older build are never read back.
func (s *SnapshotService) Purge(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, snapshotKeyPattern)
}

// HandleJob is the queue handler for snapshot invalidation jobs.
func (s *SnapshotService) HandleJob(ctx context.Context, job jobs.Job) error {
	if job.Type != JobTypeSnapshotInvalidation {
		s.logger.Warn("unexpected job type", zap.String("type", job.Type), zap.String("job_id", job.ID))
		return nil
	}
	inv, ok := job.Payload.(SnapshotInvalidation)
	if !ok {
		return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
	}
	if err := s.Invalidate(ctx, inv); err != nil {
		return err
	}
	s.logger.Debug("snapshots invalidated",
		zap.Ints("professor_ids", inv.ProfessorIDs),
		zap.Ints("classroom_ids", inv.ClassroomIDs),
	)
	return nil
}

// BuildSnapshot groups classes by weekday in week order. Classes on
// unknown days are dropped.
func BuildSnapshot(classes []models.ClassAssignment) *models.ScheduleSnapshot {
	byDay := make(map[int][]models.SnapshotClass)
	for _, class := range classes {
		idx, ok := timetable.DayIndex(class.DayName)
		if !ok {
			continue
		}
		byDay[idx] = append(byDay[idx], models.SnapshotClass{
			ID:          class.ID,
			SectionID:   class.SectionID,
			UnitName:    class.UnitName,
			StartTime:   class.StartTime,
			EndTime:     class.EndTime,
			ClassroomID: class.ClassroomID,
		})
	}

	snapshot := &models.ScheduleSnapshot{Days: []models.SnapshotDay{}}
	for idx := 0; idx < timetable.DaysPerWeek; idx++ {
		day, ok := byDay[idx]
		if !ok {
			continue
		}
		sort.SliceStable(day, func(i, j int) bool {
			a, _ := timetable.MinutesOf(day[i].StartTime)
			b, _ := timetable.MinutesOf(day[j].StartTime)
			return a < b
		})
		snapshot.Days = append(snapshot.Days, models.SnapshotDay{Name: timetable.DayName(idx), Classes: day})
	}
	return snapshot
}
