package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/manan-api/internal/dto"
	"github.com/noah-isme/manan-api/internal/models"
)

func TestDoubtServiceSubmitRejectsBlankQuestions(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 1, "Data Structures")
	learner := env.seedStudent(t, "Ananya", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	for _, question := range []string{"", "   \n\t", "\u00a0"} {
		_, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: question})
		require.ErrorIs(t, err, ErrValidation, "question %q", question)
	}

	require.Zero(t, env.count(t, &models.Doubt{}))
}

func TestDoubtServiceSubmitChecksCourseAndEnrollment(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 1, "Data Structures")
	learner := env.seedStudent(t, "Ananya", nil, nil)

	_, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: 404, Question: "Heaps?"})
	require.ErrorIs(t, err, ErrCourseNotFound)

	_, err = env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "Heaps?"})
	require.ErrorIs(t, err, ErrForbidden)
	require.Zero(t, env.count(t, &models.Doubt{}))
}

func TestDoubtServiceSubmitAlertsTeacherAndRefreshesStats(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 7, "Operating Systems")
	learner := env.seedStudent(t, "Dev", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{
		CourseID: course.ID,
		Question: "  Why does the scheduler starve low priority jobs?\n",
	})
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusOpen, doubt.Status)
	require.Equal(t, "Why does the scheduler starve low priority jobs?", doubt.Question)
	require.Equal(t, "Operating Systems", doubt.CourseTitle)

	var alert models.Notification
	require.NoError(t, env.db.Preload("Recipients").Where("source = ?", string(models.NotificationSourceDoubtSubmitted)).First(&alert).Error)
	require.Equal(t, []uint{7}, alert.RecipientIDs())
	require.Contains(t, alert.Title, "New doubt in Operating Systems")
	require.Equal(t, doubt.ID, *alert.DoubtID)

	stats, err := env.stats.Get(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, stats.CacheHit)
	require.Equal(t, int64(1), stats.UnsolvedDoubts)

	var reloaded models.Course
	require.NoError(t, env.db.First(&reloaded, course.ID).Error)
	require.Equal(t, 1, reloaded.DoubtsCount)
}

func TestDoubtServiceResolveIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 3, "Networks")
	learner := env.seedStudent(t, "Isha", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "TCP vs UDP?"})
	require.NoError(t, err)

	svc := env.doubts.(*doubtService)
	firstAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return firstAt }

	resolved, err := env.doubts.Resolve(context.Background(), teacher(3), doubt.ID, dto.DoubtResolveRequest{Answer: "TCP is reliable."})
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusResolved, resolved.Status)
	require.Equal(t, "TCP is reliable.", *resolved.FacultyAnswer)

	svc.now = func() time.Time { return firstAt.Add(time.Hour) }
	_, err = env.doubts.Resolve(context.Background(), teacher(3), doubt.ID, dto.DoubtResolveRequest{})
	require.ErrorIs(t, err, ErrDoubtAlreadyResolved)

	_, err = env.doubts.Answer(context.Background(), teacher(3), doubt.ID, dto.DoubtAnswerRequest{Answer: "late"})
	require.ErrorIs(t, err, ErrDoubtAlreadyResolved)

	var stored models.Doubt
	require.NoError(t, env.db.First(&stored, doubt.ID).Error)
	require.True(t, stored.ResolvedAt.Equal(firstAt))
	require.Equal(t, "TCP is reliable.", *stored.FacultyAnswer)

	var audits int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).Where("action = ?", models.ActionDoubtResolved).Count(&audits).Error)
	require.Equal(t, int64(1), audits)
}

func TestDoubtServiceResolveEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 3, "Networks")
	learner := env.seedStudent(t, "Isha", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "Subnetting?"})
	require.NoError(t, err)

	_, err = env.doubts.Resolve(context.Background(), teacher(4), doubt.ID, dto.DoubtResolveRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.doubts.Resolve(context.Background(), student(learner.ID), doubt.ID, dto.DoubtResolveRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.doubts.Resolve(context.Background(), teacher(3), 9999, dto.DoubtResolveRequest{})
	require.ErrorIs(t, err, ErrDoubtNotFound)

	resolved, err := env.doubts.Resolve(context.Background(), admin(99), doubt.ID, dto.DoubtResolveRequest{})
	require.NoError(t, err)
	require.Equal(t, uint(99), *resolved.ResolvedBy)
	require.Nil(t, resolved.FacultyAnswer)
}

func TestDoubtServiceResolveDecrementsUnsolvedByOne(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 5, "Compilers")
	learner := env.seedStudent(t, "Rohan", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	var ids []uint
	for _, q := range []string{"Lexing?", "Parsing?", "Codegen?"} {
		doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: q})
		require.NoError(t, err)
		ids = append(ids, doubt.ID)
	}

	before, err := env.stats.Get(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, int64(3), before.UnsolvedDoubts)

	_, err = env.doubts.Resolve(context.Background(), teacher(5), ids[1], dto.DoubtResolveRequest{})
	require.NoError(t, err)

	after, err := env.stats.Get(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, before.UnsolvedDoubts-1, after.UnsolvedDoubts)

	open, err := env.doubts.ListOpenByTeacher(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, d := range open {
		require.NotEqual(t, ids[1], d.ID)
	}
}

func TestDoubtServiceConcurrentResolveHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 2, "Algorithms")
	learner := env.seedStudent(t, "Tara", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "Bellman-Ford?"})
	require.NoError(t, err)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.doubts.Resolve(context.Background(), teacher(2), doubt.ID, dto.DoubtResolveRequest{})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrDoubtAlreadyResolved):
				conflicts++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, conflicts)
}

func TestDoubtServiceAnswerKeepsDoubtOpen(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 8, "Databases")
	learner := env.seedStudent(t, "Neel", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "Normal forms?"})
	require.NoError(t, err)

	answered, err := env.doubts.Answer(context.Background(), teacher(8), doubt.ID, dto.DoubtAnswerRequest{Answer: "Start with 1NF."})
	require.NoError(t, err)
	require.Equal(t, models.DoubtStatusOpen, answered.Status)
	require.Equal(t, "Start with 1NF.", *answered.FacultyAnswer)

	mine, err := env.doubts.ListByStudent(context.Background(), learner.ID, nil)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, "Start with 1NF.", *mine[0].FacultyAnswer)
}

func TestDoubtServiceKeepsTextVerbatim(t *testing.T) {
	env := newTestEnv(t)
	course := env.seedCourse(t, 3, "Discrete Maths")
	learner := env.seedStudent(t, "Ira", nil, nil)
	env.enroll(t, course.ID, learner.ID)

	question := "Why is a < b && b > c implies a <c?"
	doubt, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "  " + question + " "})
	require.NoError(t, err)
	require.Equal(t, question, doubt.Question)

	markup, err := env.doubts.Submit(context.Background(), student(learner.ID), dto.DoubtCreateRequest{CourseID: course.ID, Question: "<b>"})
	require.NoError(t, err)
	require.Equal(t, "<b>", markup.Question)

	answered, err := env.doubts.Answer(context.Background(), teacher(3), doubt.ID, dto.DoubtAnswerRequest{Answer: "It doesn't: try a=1, b=3, c=2 & see."})
	require.NoError(t, err)
	require.Equal(t, "It doesn't: try a=1, b=3, c=2 & see.", *answered.FacultyAnswer)

	resolved, err := env.doubts.Resolve(context.Background(), teacher(3), markup.ID, dto.DoubtResolveRequest{Answer: "Use <strong> instead."})
	require.NoError(t, err)
	require.Equal(t, "Use <strong> instead.", *resolved.FacultyAnswer)

	mine, err := env.doubts.ListByStudent(context.Background(), learner.ID, nil)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, question, mine[1].Question)
}
