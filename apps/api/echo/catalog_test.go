package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/lecturer"
	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/core/term"
	"github.com/trezcool/vidtrack/testutil"
)

func Test_catalogApi_faculties(t *testing.T) {
	env := setup(t)

	manager := env.createStaff(t, "Mary Manager", "mary@vid.test", staff.RoleManager)
	viewer := env.createStaff(t, "Vic Viewer", "vic@vid.test", staff.RoleViewer)
	token := getToken(t, manager)

	law := testutil.CreateFaculty(t, env.FacultyRepo, "Law", "LAW")

	runTests(t, env, []httpTest{
		{name: "List", path: "/v1/faculties", token: getToken(t, viewer), wantData: marchallList(t, env.cat.Faculty, law)},
		{name: "search", path: "/v1/faculties?search=eng", token: token, wantData: marchallList(t, env.cat.Faculty)},
		{name: "Retrieve", path: "/v1/faculties/" + law.ID, token: token, wantData: marchallObj(t, law)},
		{
			name: "Unknown", path: "/v1/faculties/lol", token: token, wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "faculty not found"}),
		},
		{
			name: "Viewer cannot create", method: http.MethodPost, path: "/v1/faculties", token: getToken(t, viewer),
			body: marchallObj(t, faculty.FacultyData{Name: "Arts", Code: "ART"}), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Required fields", method: http.MethodPost, path: "/v1/faculties", token: token, body: []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "code": "this field is required"}),
		},
		{
			name: "Invalid code", method: http.MethodPost, path: "/v1/faculties", token: token,
			body:     marchallObj(t, faculty.FacultyData{Name: "Arts", Code: "A R T"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": "only letters, digits and dashes are allowed"}),
		},
		{
			name: "Duplicate code", method: http.MethodPost, path: "/v1/faculties", token: token,
			body:     marchallObj(t, faculty.FacultyData{Name: "Laws", Code: "law"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"code": "this code is already in use"}),
		},
		{
			name: "Faculty with programs cannot be deleted", method: http.MethodDelete, path: "/v1/faculties/" + env.cat.Faculty.ID, token: token,
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "faculty is still referenced by other records"}),
		},
		{name: "Programs", path: "/v1/faculties/" + env.cat.Faculty.ID + "/programs", token: token, wantData: marchallList(t, env.cat.Program)},
		{name: "No programs", path: "/v1/faculties/" + law.ID + "/programs", token: token, wantData: marchallList(t)},
		{name: "Delete", method: http.MethodDelete, path: "/v1/faculties/" + law.ID, token: token, wantCode: http.StatusNoContent},
		{name: "Deleted", path: "/v1/faculties/" + law.ID, token: token, wantCode: http.StatusNotFound},
	})

	t.Run("Create faculty and program", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/faculties", token, marchallObj(t, faculty.FacultyData{Name: " Arts ", Code: "art"}))
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var f faculty.Faculty
		unmarshal(t, rec, &f)
		assert.NotEmpty(t, f.ID)
		assert.Equal(t, "Arts", f.Name)
		assert.Equal(t, "ART", f.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/faculties/"+f.ID+"/programs", token, marchallObj(t, map[string]string{"name": "History", "code": "hist"}))
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var p faculty.Program
		unmarshal(t, rec, &p)
		assert.Equal(t, f.ID, p.FacultyID)
		assert.Equal(t, "HIST", p.Code)

		req, rec = newAuthRequest(http.MethodPut, "/v1/programs/"+p.ID, token, marchallObj(t, map[string]string{"name": "Modern History", "code": "mhist"}))
		env.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		unmarshal(t, rec, &p)
		assert.Equal(t, "Modern History", p.Name)
		assert.Equal(t, f.ID, p.FacultyID)
	})
}

func Test_catalogApi_termsAndLecturers(t *testing.T) {
	env := setup(t)

	manager := env.createStaff(t, "Mary Manager", "mary@vid.test", staff.RoleManager)
	token := getToken(t, manager)
	fall := testutil.CreateTerm(t, env.TermRepo, "Fall 2024", "2024-09-01", "2024-12-20")

	runTests(t, env, []httpTest{
		{name: "Terms, latest first", path: "/v1/terms", token: token, wantData: marchallList(t, fall, env.cat.Term)},
		{name: "Terms active on", path: "/v1/terms?active_on=2024-03-15", token: token, wantData: marchallList(t, env.cat.Term)},
		{
			name: "Terms bad date", path: "/v1/terms?active_on=15/03/2024", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"active_on": "must be a date formatted as YYYY-MM-DD"}),
		},
		{
			name: "Delete unused term", method: http.MethodDelete, path: "/v1/terms/" + env.cat.Term.ID, token: token,
			wantCode: http.StatusNoContent,
		},
		{name: "Lecturers", path: "/v1/lecturers", token: token, wantData: marchallList(t, env.cat.Lecturer)},
		{name: "Lecturers of faculty", path: "/v1/lecturers?faculty_id=lol", token: token, wantData: marchallList(t)},
	})

	t.Run("Create term", func(t *testing.T) {
		body := []byte(`{"name": "Summer 2025", "starts_on": "2025-06-01", "ends_on": "2025-08-31"}`)
		req, rec := newAuthRequest(http.MethodPost, "/v1/terms", token, body)
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var tm term.Term
		unmarshal(t, rec, &tm)
		assert.Equal(t, "Summer 2025", tm.Name)

		body = []byte(`{"name": "Backwards", "starts_on": "2025-06-01", "ends_on": "2025-05-31"}`)
		req, rec = newAuthRequest(http.MethodPost, "/v1/terms", token, body)
		env.serve(req, rec)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"ends_on": "ends_on cannot be before starts_on"}),
		}, rec)
	})

	t.Run("Create lecturer", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"name": "alan turing", "email": "Alan@Uni.test", "faculty_id": env.cat.Faculty.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/lecturers", token, body)
		env.serve(req, rec)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var l lecturer.Lecturer
		unmarshal(t, rec, &l)
		assert.Equal(t, "Alan Turing", l.Name)
		assert.Equal(t, "alan@uni.test", l.Email)
		assert.Equal(t, env.cat.Faculty.ID, l.FacultyID)
	})
}
