package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"course_registration/internal/api"
	"course_registration/internal/domain"
	"course_registration/internal/middleware"
	"course_registration/internal/service"
	"course_registration/internal/testutil"
	"course_registration/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSecret = "test-secret"

type server struct {
	router   *gin.Engine
	accounts *service.AccountStore
	catalog  *service.Catalog
	ledger   *service.Ledger
	grading  *service.Grading
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	database := testutil.NewDB(t)
	cache := utils.NewCache(nil)
	s := &server{
		accounts: service.NewAccountStore(database, cache),
		catalog:  service.NewCatalog(database, cache),
		ledger:   service.NewLedger(database),
	}
	s.grading = service.NewGrading(database, s.ledger)
	s.router = gin.New()
	require.NoError(t, api.RegisterRoutes(s.router, api.Deps{
		Accounts:   s.accounts,
		Catalog:    s.catalog,
		Ledger:     s.ledger,
		Grading:    s.grading,
		Cache:      cache,
		JWTSecret:  testSecret,
		SessionTTL: time.Hour,
	}))
	return s
}

// do sends a request as the given account, or anonymously when as is nil
func (s *server) do(t *testing.T, req *http.Request, as *domain.Account) *httptest.ResponseRecorder {
	t.Helper()
	if as != nil {
		token, err := utils.GenerateJWT(as.ID, as.Role, testSecret, time.Hour)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *server) get(t *testing.T, path string, as *domain.Account) *httptest.ResponseRecorder {
	return s.do(t, httptest.NewRequest(http.MethodGet, path, nil), as)
}

func (s *server) postForm(t *testing.T, path string, form url.Values, as *domain.Account) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(t, req, as)
}

func (s *server) postJSON(t *testing.T, path, body string, as *domain.Account) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return s.do(t, req, as)
}

// flash returns the notice set by the response as "category|message"
func flash(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "flash" && c.MaxAge >= 0 {
			v, err := url.QueryUnescape(c.Value)
			require.NoError(t, err)
			return v
		}
	}
	return ""
}

func cookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, to string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, to, w.Header().Get("Location"))
}

func TestLoginRedirectsToRoleDashboard(t *testing.T) {
	s := newServer(t)
	testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)
	testutil.Account(t, s.accounts, "alice", domain.RoleStudent)

	for username, dashboard := range map[string]string{
		"root":  "/dashboard/admin",
		"prof":  "/dashboard/instructor",
		"alice": "/dashboard/student",
	} {
		w := s.postForm(t, "/login", url.Values{"username": {username}, "password": {username + "-pw"}}, nil)
		assertRedirect(t, w, dashboard)
		session := cookie(w, middleware.SessionCookie)
		require.NotNil(t, session, username)
		assert.True(t, session.HttpOnly)
		assert.Equal(t, "success|Logged in successfully.", flash(t, w))
	}
}

func TestLoginFailureRendersInlineError(t *testing.T) {
	s := newServer(t)
	testutil.Account(t, s.accounts, "alice", domain.RoleStudent)

	w := s.postForm(t, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")
	assert.Nil(t, cookie(w, middleware.SessionCookie))

	w = s.postForm(t, "/login", url.Values{"username": {"nobody"}, "password": {"x"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password.")
}

func TestJSONLoginReturnsUsableToken(t *testing.T) {
	s := newServer(t)
	testutil.Account(t, s.accounts, "alice", domain.RoleStudent)

	w := s.postJSON(t, "/login", `{"username":"alice","password":"alice-pw"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp api.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.RoleStudent, resp.Role)

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	assert.Equal(t, http.StatusOK, s.do(t, req, nil).Code)

	w = s.postJSON(t, "/login", `{"username":"alice","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoleGates(t *testing.T) {
	s := newServer(t)
	student := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	instructor := testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)

	w := s.get(t, "/dashboard/student", nil)
	assertRedirect(t, w, "/login")
	assert.Equal(t, "warning|Please log in to access this page.", flash(t, w))

	w = s.get(t, "/admin/users", student)
	assertRedirect(t, w, "/login")
	assert.Equal(t, "danger|Access denied.", flash(t, w))

	assertRedirect(t, s.get(t, "/courses", instructor), "/login")
	assertRedirect(t, s.get(t, "/dashboard/instructor", student), "/login")
	assert.Equal(t, http.StatusOK, s.get(t, "/dashboard/student", student).Code)
	assert.Equal(t, http.StatusOK, s.get(t, "/dashboard/instructor", instructor).Code)
}

func TestRoleIsReadFromStorePerRequest(t *testing.T) {
	s := newServer(t)
	student := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	token, err := utils.GenerateJWT(student.ID, domain.RoleAdmin, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	assertRedirect(t, s.do(t, req, nil), "/login")
}

func TestLoginPageRedirectsSignedInCaller(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)

	assertRedirect(t, s.get(t, "/login", admin), "/dashboard/admin")
	assert.Equal(t, http.StatusOK, s.get(t, "/login", nil).Code)
	assertRedirect(t, s.get(t, "/", nil), "/login")
}

func TestEnrollAndDropFlow(t *testing.T) {
	s := newServer(t)
	student := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 2)
	enroll := "/enroll/" + itoa(course.ID)
	drop := "/drop/" + itoa(course.ID)

	w := s.get(t, enroll, student)
	assertRedirect(t, w, "/courses")
	assert.Equal(t, "success|Enrolled in Math 101.", flash(t, w))

	w = s.get(t, enroll, student)
	assertRedirect(t, w, "/courses")
	assert.Equal(t, "warning|You are already enrolled in Math 101.", flash(t, w))

	w = s.get(t, drop, student)
	assertRedirect(t, w, "/courses")
	assert.Equal(t, "info|Dropped Math 101.", flash(t, w))

	w = s.get(t, drop, student)
	assertRedirect(t, w, "/courses")
	assert.Equal(t, "warning|You are not enrolled in Math 101.", flash(t, w))

	n, err := s.ledger.Count(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEnrollInFullCourse(t *testing.T) {
	s := newServer(t)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	bob := testutil.Account(t, s.accounts, "bob", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "History 201", "prof", 1)

	assert.Equal(t, "success|Enrolled in History 201.", flash(t, s.get(t, "/enroll/"+itoa(course.ID), alice)))
	w := s.get(t, "/enroll/"+itoa(course.ID), bob)
	assertRedirect(t, w, "/courses")
	assert.Equal(t, "danger|History 201 is full.", flash(t, w))
}

func TestCoursesPageShowsSeats(t *testing.T) {
	s := newServer(t)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Physics 101", "prof", 25)
	require.NoError(t, s.ledger.Enroll(context.Background(), alice.ID, course.ID))

	w := s.get(t, "/courses", alice)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Physics 101")
}

func TestUnknownCourseIsNotFound(t *testing.T) {
	s := newServer(t)
	student := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)

	assert.Equal(t, http.StatusNotFound, s.get(t, "/enroll/999", student).Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/drop/abc", student).Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin/edit_course/999", admin).Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin/courses/999/grades", admin).Code)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/admin/users/delete/999", admin).Code)
}

func TestInstructorsJSON(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	student := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)

	w := s.get(t, "/api/instructors", admin)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Instructors []string `json:"instructors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"prof"}, body.Instructors)

	w = s.get(t, "/api/instructors", student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, s.get(t, "/api/instructors", nil).Code)
}

func TestUpdateCourseJSON(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	instructor := testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	bob := testutil.Account(t, s.accounts, "bob", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 30)
	path := "/admin/courses/" + itoa(course.ID) + "/update"

	w := s.postJSON(t, path, `{"schedule":"Tue 10:00"}`, admin)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Message string        `json:"message"`
		Course  domain.Course `json:"course"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Tue 10:00", resp.Course.Schedule)
	assert.Equal(t, "Math 101", resp.Course.Title)
	assert.Equal(t, 30, resp.Course.Capacity)

	assert.Equal(t, http.StatusForbidden, s.postJSON(t, path, `{"capacity":5}`, instructor).Code)

	ctx := context.Background()
	require.NoError(t, s.ledger.Enroll(ctx, alice.ID, course.ID))
	require.NoError(t, s.ledger.Enroll(ctx, bob.ID, course.ID))
	w = s.postJSON(t, path, `{"capacity":1}`, admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.postJSON(t, path, `{"title":"  ","teacher":"","schedule":""}`, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	stored, err := s.catalog.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, "Math 101", stored.Title)
	assert.Equal(t, "prof", stored.Teacher)
	assert.Equal(t, "Tue 10:00", stored.Schedule)

	assert.Equal(t, http.StatusNotFound, s.postJSON(t, "/admin/courses/999/update", `{"capacity":1}`, admin).Code)
	assert.Equal(t, http.StatusBadRequest, s.postJSON(t, path, `{"capacity":`, admin).Code)
}

func TestAdminCourseCRUD(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	ctx := context.Background()

	w := s.postForm(t, "/admin/courses", url.Values{
		"title": {"Math 101"}, "teacher": {"prof"}, "schedule": {"Mon 09:00"}, "capacity": {"30"},
	}, admin)
	assertRedirect(t, w, "/admin/courses")
	assert.Equal(t, "success|Course 'Math 101' created successfully.", flash(t, w))

	courses, err := s.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	id := itoa(courses[0].ID)

	w = s.postForm(t, "/admin/courses", url.Values{
		"title": {"Math 101"}, "teacher": {"prof"}, "schedule": {"Mon 09:00"}, "capacity": {"10"},
	}, admin)
	assertRedirect(t, w, "/admin/courses")
	assert.True(t, strings.HasPrefix(flash(t, w), "danger|"))

	w = s.postForm(t, "/admin/edit_course/"+id, url.Values{
		"title": {"Math 102"}, "teacher": {"prof"}, "schedule": {"Fri 08:00"}, "capacity": {"12"},
	}, admin)
	assertRedirect(t, w, "/admin/courses")
	updated, err := s.catalog.Get(ctx, courses[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Math 102", updated.Title)
	assert.Equal(t, 12, updated.Capacity)

	assert.Equal(t, http.StatusOK, s.get(t, "/admin/courses", admin).Code)

	w = s.postForm(t, "/admin/delete_course/"+id, nil, admin)
	assertRedirect(t, w, "/admin/courses")
	_, err = s.catalog.Get(ctx, courses[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminUserCRUD(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	ctx := context.Background()

	w := s.postForm(t, "/admin/users", url.Values{
		"username": {"carol"}, "email": {"carol@example.com"}, "password": {"pw"}, "role": {"student"},
	}, admin)
	assertRedirect(t, w, "/admin/users")
	carol, err := s.accounts.GetByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, carol.Role)

	w = s.postForm(t, "/admin/users", url.Values{
		"username": {"dave"}, "email": {"dave@example.com"}, "password": {"pw"}, "role": {"superuser"},
	}, admin)
	assertRedirect(t, w, "/admin/users")
	assert.True(t, strings.HasPrefix(flash(t, w), "danger|"))
	_, err = s.accounts.GetByUsername(ctx, "dave")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, http.StatusOK, s.get(t, "/admin/users/edit/"+itoa(carol.ID), admin).Code)
	w = s.postForm(t, "/admin/users/edit/"+itoa(carol.ID), url.Values{
		"username": {"carol"}, "email": {"carol@school.edu"}, "role": {"student"},
	}, admin)
	assert.Equal(t, http.StatusFound, w.Code)
	_, err = s.accounts.Authenticate(ctx, "carol", "pw")
	assert.NoError(t, err)
	carol, err = s.accounts.Get(ctx, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol@school.edu", carol.Email)
}

func TestDeleteUserCascadesEnrollments(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 1)
	ctx := context.Background()
	require.NoError(t, s.ledger.Enroll(ctx, alice.ID, course.ID))

	w := s.get(t, "/admin/users/delete/"+itoa(alice.ID), admin)
	assertRedirect(t, w, "/admin/users")
	assert.Equal(t, "info|User deleted.", flash(t, w))

	n, err := s.ledger.Count(ctx, course.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = s.accounts.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInstructorGradesOwnCourse(t *testing.T) {
	s := newServer(t)
	prof := testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)
	ctx := context.Background()
	require.NoError(t, s.ledger.Enroll(ctx, alice.ID, course.ID))
	gradePath := "/courses/" + itoa(course.ID) + "/grade/" + itoa(alice.ID)

	w := s.get(t, gradePath, prof)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.postForm(t, gradePath, url.Values{"grade": {"85"}}, prof)
	assertRedirect(t, w, "/admin/courses/"+itoa(course.ID)+"/grades")
	assert.Equal(t, "success|Grade for alice set to 85.", flash(t, w))

	grade, err := s.grading.GetGrade(ctx, alice.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, 85, grade)

	w = s.get(t, "/admin/courses/"+itoa(course.ID)+"/grades", prof)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice")
}

func TestSetGradeWithoutEnrollment(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)

	w := s.postForm(t, "/courses/"+itoa(course.ID)+"/grade/"+itoa(alice.ID), url.Values{"grade": {"70"}}, admin)
	assertRedirect(t, w, "/admin/courses/"+itoa(course.ID)+"/grades")
	assert.Equal(t, "warning|Student is not enrolled in this course.", flash(t, w))
}

func TestInstructorCannotManageOtherCourse(t *testing.T) {
	s := newServer(t)
	other := testutil.Account(t, s.accounts, "other", domain.RoleInstructor)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)
	ctx := context.Background()
	require.NoError(t, s.ledger.Enroll(ctx, alice.ID, course.ID))

	w := s.postForm(t, "/courses/"+itoa(course.ID)+"/grade/"+itoa(alice.ID), url.Values{"grade": {"10"}}, other)
	assertRedirect(t, w, "/login")
	assert.Equal(t, "danger|Access denied.", flash(t, w))
	grade, err := s.grading.GetGrade(ctx, alice.ID, course.ID)
	require.NoError(t, err)
	assert.Zero(t, grade)

	assertRedirect(t, s.get(t, "/admin/courses/"+itoa(course.ID)+"/grades", other), "/login")
}

func TestRosterAddAndRemove(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	bob := testutil.Account(t, s.accounts, "bob", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 1)
	path := "/admin/courses/" + itoa(course.ID) + "/grades"

	w := s.postForm(t, path, url.Values{"action": {"add"}, "student_id": {itoa(alice.ID)}}, admin)
	assertRedirect(t, w, path)
	assert.Equal(t, "success|Student added to Math 101.", flash(t, w))

	w = s.postForm(t, path, url.Values{"action": {"add"}, "student_id": {itoa(bob.ID)}}, admin)
	assert.Equal(t, "danger|Course is full.", flash(t, w))

	w = s.postForm(t, path, url.Values{"action": {"add"}, "student_id": {itoa(admin.ID)}}, admin)
	assert.Equal(t, "warning|Only student accounts can be enrolled.", flash(t, w))

	w = s.postForm(t, path, url.Values{"action": {"remove"}, "student_id": {itoa(alice.ID)}}, admin)
	assert.Equal(t, "info|Student removed from Math 101.", flash(t, w))

	w = s.postForm(t, path, url.Values{"action": {"shuffle"}, "student_id": {itoa(alice.ID)}}, admin)
	assertRedirect(t, w, path)
	assert.True(t, strings.HasPrefix(flash(t, w), "danger|"))
}

func TestExportRoster(t *testing.T) {
	s := newServer(t)
	prof := testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)
	ctx := context.Background()
	require.NoError(t, s.ledger.Enroll(ctx, alice.ID, course.ID))
	require.NoError(t, s.grading.SetGrade(ctx, alice.ID, course.ID, 91))

	w := s.get(t, "/admin/courses/"+itoa(course.ID)+"/grades/export", prof)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "roster.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Roster")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"alice", "alice@example.com", "91"}, rows[1])
}

func TestImportRoster(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	testutil.Account(t, s.accounts, "alice", domain.RoleStudent)
	testutil.Account(t, s.accounts, "bob", domain.RoleStudent)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)

	path := "/admin/courses/" + itoa(course.ID) + "/grades"
	w := s.importSheet(t, path+"/import", []string{"username", "alice", "bob", "ghost"}, admin)
	assertRedirect(t, w, path)
	assert.Equal(t, "warning|2 student(s) added. Skipped: ghost (Not found.)", flash(t, w))

	n, err := s.ledger.Count(context.Background(), course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

// importSheet uploads an xlsx workbook whose first column holds the given cells
func (s *server) importSheet(t *testing.T, path string, cells []string, as *domain.Account) *httptest.ResponseRecorder {
	t.Helper()
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	for i, v := range cells {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetCellValue(sheet, cell, v))
	}
	var upload bytes.Buffer
	require.NoError(t, book.Write(&upload))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(upload.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return s.do(t, req, as)
}

func TestImportManyUnknownUsernamesKeepsNoticeSmall(t *testing.T) {
	s := newServer(t)
	admin := testutil.Account(t, s.accounts, "root", domain.RoleAdmin)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)

	cells := []string{"username"}
	for i := 0; i < 150; i++ {
		cells = append(cells, fmt.Sprintf("unknown-student-with-a-long-name-%03d", i))
	}
	path := "/admin/courses/" + itoa(course.ID) + "/grades"
	w := s.importSheet(t, path+"/import", cells, admin)
	assertRedirect(t, w, path)

	raw := cookie(w, "flash")
	require.NotNil(t, raw)
	assert.Less(t, len(raw.String()), 4096)
	notice := flash(t, w)
	assert.True(t, strings.HasPrefix(notice, "warning|0 student(s) added. Skipped: unknown-student-with-a-long-name-000 (Not found.)"))
	assert.True(t, strings.HasSuffix(notice, " and 140 more"))
}

func TestInstructorCourseSelection(t *testing.T) {
	s := newServer(t)
	prof := testutil.Account(t, s.accounts, "prof", domain.RoleInstructor)
	course := testutil.Course(t, s.catalog, "Math 101", "prof", 5)
	testutil.Course(t, s.catalog, "Art 100", "someone", 5)

	w := s.get(t, "/instructor/courses", prof)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Math 101")
	assert.NotContains(t, w.Body.String(), "Art 100")

	w = s.postForm(t, "/instructor/courses", url.Values{"course_id": {itoa(course.ID)}}, prof)
	assertRedirect(t, w, "/admin/courses/"+itoa(course.ID)+"/grades")
}

func TestLogoutClearsSession(t *testing.T) {
	s := newServer(t)
	alice := testutil.Account(t, s.accounts, "alice", domain.RoleStudent)

	w := s.get(t, "/logout", alice)
	assertRedirect(t, w, "/login")
	session := cookie(w, middleware.SessionCookie)
	require.NotNil(t, session)
	assert.Empty(t, session.Value)
	assert.Negative(t, session.MaxAge)
	assert.Equal(t, "info|Logged out.", flash(t, w))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
