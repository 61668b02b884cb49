package service_test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"course_registration/internal/domain"
	"course_registration/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterNames(t *testing.T, f fixture, courseID uint) []string {
	t.Helper()
	roster, err := f.ledger.Roster(context.Background(), courseID)
	require.NoError(t, err)
	names := []string{}
	for _, e := range roster {
		names = append(names, e.Username)
	}
	return names
}

func TestEnrollTwiceFailsWithAlreadyEnrolled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	c := testutil.Course(t, f.catalog, "Math 101", "instructor", 30)

	require.NoError(t, f.ledger.Enroll(ctx, s.ID, c.ID))
	assert.ErrorIs(t, f.ledger.Enroll(ctx, s.ID, c.ID), domain.ErrAlreadyEnrolled)

	n, err := f.ledger.Count(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestEnrollStartsWithZeroGrade(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	c := testutil.Course(t, f.catalog, "Math 101", "instructor", 30)

	require.NoError(t, f.ledger.Enroll(ctx, s.ID, c.ID))
	roster, err := f.ledger.Roster(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, 0, roster[0].Grade)
	assert.Equal(t, "alice@example.com", roster[0].Email)
}

func TestDropWhenNotEnrolled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	b := testutil.Account(t, f.accounts, "bob", domain.RoleStudent)
	c := testutil.Course(t, f.catalog, "Math 101", "instructor", 30)
	require.NoError(t, f.ledger.Enroll(ctx, a.ID, c.ID))

	assert.ErrorIs(t, f.ledger.Drop(ctx, b.ID, c.ID), domain.ErrNotEnrolled)
	assert.ErrorIs(t, f.ledger.AdminRemove(ctx, b.ID, c.ID), domain.ErrNotEnrolled)
	assert.Equal(t, []string{"alice"}, rosterNames(t, f, c.ID))
}

func TestCapacityOneScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	b := testutil.Account(t, f.accounts, "bob", domain.RoleStudent)
	c := testutil.Course(t, f.catalog, "Seminar", "instructor", 1)

	require.NoError(t, f.ledger.Enroll(ctx, a.ID, c.ID))
	assert.Equal(t, []string{"alice"}, rosterNames(t, f, c.ID))

	assert.ErrorIs(t, f.ledger.Enroll(ctx, b.ID, c.ID), domain.ErrCourseFull)

	require.NoError(t, f.ledger.Drop(ctx, a.ID, c.ID))
	assert.Empty(t, rosterNames(t, f, c.ID))

	require.NoError(t, f.ledger.Enroll(ctx, b.ID, c.ID))
	assert.Equal(t, []string{"bob"}, rosterNames(t, f, c.ID))
}

func TestZeroCapacityCourseIsAlwaysFull(t *testing.T) {
	f := setup(t)
	s := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	c := testutil.Course(t, f.catalog, "Closed", "instructor", 0)

	assert.ErrorIs(t, f.ledger.Enroll(context.Background(), s.ID, c.ID), domain.ErrCourseFull)
}

// TestConcurrentEnrollForLastSeat races enrollments against the SQLite test database,
// where the single open connection serializes the transactions. The FOR UPDATE row lock
// taken on MySQL and Postgres is not exercised here since SQLite drops the locking clause.
func TestConcurrentEnrollForLastSeat(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := testutil.Course(t, f.catalog, "Seminar", "instructor", 1)
	const n = 8
	ids := make([]uint, n)
	for i := range ids {
		ids[i] = testutil.Account(t, f.accounts, fmt.Sprintf("student%d", i), domain.RoleStudent).ID
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = f.ledger.Enroll(ctx, ids[i], c.ID)
		}(i)
	}
	close(start)
	wg.Wait()

	ok, full := 0, 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		if assert.ErrorIs(t, err, domain.ErrCourseFull) {
			full++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, full)
	count, err := f.ledger.Count(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAdminAddFollowsEnrollRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	b := testutil.Account(t, f.accounts, "bob", domain.RoleStudent)
	teacher := testutil.Account(t, f.accounts, "instructor", domain.RoleInstructor)
	c := testutil.Course(t, f.catalog, "Seminar", "instructor", 1)

	assert.ErrorIs(t, f.ledger.AdminAdd(ctx, teacher.ID, c.ID), domain.ErrNotStudent)
	assert.ErrorIs(t, f.ledger.AdminAdd(ctx, 9999, c.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.ledger.AdminAdd(ctx, a.ID, 9999), domain.ErrNotFound)

	require.NoError(t, f.ledger.AdminAdd(ctx, a.ID, c.ID))
	assert.ErrorIs(t, f.ledger.AdminAdd(ctx, a.ID, c.ID), domain.ErrAlreadyEnrolled)
	assert.ErrorIs(t, f.ledger.AdminAdd(ctx, b.ID, c.ID), domain.ErrCourseFull)

	require.NoError(t, f.ledger.AdminRemove(ctx, a.ID, c.ID))
	require.NoError(t, f.ledger.AdminAdd(ctx, b.ID, c.ID))
}

func TestRosterKeepsInsertionOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	c := testutil.Course(t, f.catalog, "Math 101", "instructor", 10)
	for _, name := range []string{"zoe", "adam", "mia"} {
		s := testutil.Account(t, f.accounts, name, domain.RoleStudent)
		require.NoError(t, f.ledger.Enroll(ctx, s.ID, c.ID))
	}

	assert.Equal(t, []string{"zoe", "adam", "mia"}, rosterNames(t, f, c.ID))
}

func TestAvailableStudentsExcludesRosterAndStaff(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	testutil.Account(t, f.accounts, "bob", domain.RoleStudent)
	testutil.Account(t, f.accounts, "carol", domain.RoleStudent)
	testutil.Account(t, f.accounts, "instructor", domain.RoleInstructor)
	c := testutil.Course(t, f.catalog, "Math 101", "instructor", 10)
	other := testutil.Course(t, f.catalog, "Physics 101", "instructor", 10)
	require.NoError(t, f.ledger.Enroll(ctx, a.ID, c.ID))

	available, err := f.ledger.AvailableStudents(ctx, c.ID)
	require.NoError(t, err)
	names := []string{}
	for _, s := range available {
		names = append(names, s.Username)
	}
	assert.Equal(t, []string{"bob", "carol"}, names)

	available, err = f.ledger.AvailableStudents(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, available, 3)
}

func TestCoursesOfStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := testutil.Account(t, f.accounts, "alice", domain.RoleStudent)
	math := testutil.Course(t, f.catalog, "Math 101", "instructor", 10)
	physics := testutil.Course(t, f.catalog, "Physics 101", "instructor", 10)
	require.NoError(t, f.ledger.Enroll(ctx, s.ID, physics.ID))
	require.NoError(t, f.ledger.Enroll(ctx, s.ID, math.ID))
	require.NoError(t, f.grading.SetGrade(ctx, s.ID, math.ID, 77))

	courses, err := f.ledger.CoursesOf(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Physics 101", courses[0].Title)
	assert.Equal(t, "Math 101", courses[1].Title)
	assert.Equal(t, 77, courses[1].Grade)

	ids, err := f.ledger.EnrolledCourseIDs(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{math.ID: true, physics.ID: true}, ids)
}

func TestRosterNeverExceedsCapacity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	courses := []uint{
		testutil.Course(t, f.catalog, "A", "instructor", 1).ID,
		testutil.Course(t, f.catalog, "B", "instructor", 2).ID,
		testutil.Course(t, f.catalog, "C", "instructor", 3).ID,
	}
	capacity := map[uint]int64{courses[0]: 1, courses[1]: 2, courses[2]: 3}
	students := make([]uint, 5)
	for i := range students {
		students[i] = testutil.Account(t, f.accounts, fmt.Sprintf("s%d", i), domain.RoleStudent).ID
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		s := students[rng.Intn(len(students))]
		c := courses[rng.Intn(len(courses))]
		switch rng.Intn(4) {
		case 0:
			_ = f.ledger.Enroll(ctx, s, c)
		case 1:
			_ = f.ledger.AdminAdd(ctx, s, c)
		case 2:
			_ = f.ledger.Drop(ctx, s, c)
		default:
			_ = f.ledger.AdminRemove(ctx, s, c)
		}
		n, err := f.ledger.Count(ctx, c)
		require.NoError(t, err)
		require.LessOrEqual(t, n, capacity[c])
	}
}
