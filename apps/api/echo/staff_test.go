package echoapi_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/vidtrack/core/staff"
	"github.com/trezcool/vidtrack/testutil"
)

func Test_staffApi_access(t *testing.T) {
	env := setup(t)

	pending := testutil.CreateStaff(t, env.StaffRepo, "Pat Pending", "pat@vid.test", []string{staff.RoleEditor}, false)
	naughty := env.createStaff(t, "N Dog", "ndog@vid.test", staff.RoleEditor)
	naughty.IsActive = false
	_, err := env.StaffRepo.UpdateStaff(context.Background(), naughty)
	require.NoError(t, err)
	viewer := env.createStaff(t, "Vic Viewer", "vic@vid.test", staff.RoleViewer)

	unknownToken := getSubjectToken(t, "8c1c3b6e-0d6b-4c3e-9a43-5f1f3a7e2c11", "new@vid.test", "New Comer")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/projects", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Invalid token", path: "/v1/projects", token: "not.a.token", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "Profile required", path: "/v1/projects", token: unknownToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "profile not found"}),
		},
		{
			name: "Unknown subject has no profile", path: "/v1/staff/me", token: unknownToken, wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "profile not found"}),
		},
		{
			name: "Inactive staff not allowed", path: "/v1/projects", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Pending staff not allowed", path: "/v1/projects", token: getToken(t, pending), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account pending approval"}),
		},
		{name: "Pending staff can see their profile", path: "/v1/staff/me", token: getToken(t, pending)},
		{name: "Viewer can read", path: "/v1/projects", token: getToken(t, viewer), wantData: marchallList(t)},
		{
			name: "Viewer cannot write", method: http.MethodPost, path: "/v1/projects", token: getToken(t, viewer),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Home is public", path: "/", wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.serve(req, rec)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
		})
	}
}

func Test_staffApi_register(t *testing.T) {
	env := setup(t)
	subject := "0f0a2a64-7b15-4c47-8f0f-52a3c8a9d6e4"
	token := getSubjectToken(t, subject, "Grace@Vid.test", "grace hopper")

	req, rec := newAuthRequest(http.MethodPost, "/v1/staff/me", token)
	env.serve(req, rec)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got staff.Staff
	unmarshal(t, rec, &got)
	want := staff.Staff{
		ID:         subject,
		Name:       "Grace Hopper",
		Email:      "grace@vid.test",
		Roles:      []string{staff.RoleViewer},
		IsActive:   true,
		IsApproved: false,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(staff.Staff{}, "CreatedAt", "UpdatedAt", "LastSeenAt")); diff != "" {
		t.Errorf("register mismatch (-want +got):\n%s", diff)
	}

	// registering twice fails
	req, rec = newAuthRequest(http.MethodPost, "/v1/staff/me", token)
	env.serve(req, rec)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, httpErr{Error: "profile already registered"}),
	}, rec)

	// the pending profile can be read, and is touched
	req, rec = newAuthRequest(http.MethodGet, "/v1/staff/me", token)
	env.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	unmarshal(t, rec, &got)
	assert.NotNil(t, got.LastSeenAt)
}

func Test_staffApi_query(t *testing.T) {
	env := setup(t)

	path := func(search, ordering string, isApproved string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		if ordering != "" {
			v.Add("ordering", ordering)
		}
		if isApproved != "" {
			v.Add("is_approved", isApproved)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/staff?" + v.Encode()
	}

	admin := env.createStaff(t, "Alice Admin", "alice@vid.test", staff.RoleAdmin)
	owner := env.createStaff(t, "Olga Owner", "olga@vid.test", staff.RoleAdminOwner)
	manager := env.createStaff(t, "Mary Manager", "mary@vid.test", staff.RoleManager)
	editor := env.createStaff(t, "Eddy Editor", "eddy@vid.test", staff.RoleEditor)
	pending := testutil.CreateStaff(t, env.StaffRepo, "Pat Pending", "pat@vid.test", []string{staff.RoleViewer}, false)

	adminToken := getToken(t, admin)
	empty := marchallList(t)

	runTests(t, env, []httpTest{
		{name: "Manager required", path: "/v1/staff", token: getToken(t, editor), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", path: "/v1/staff", token: adminToken, wantData: marchallList(t, admin, editor, manager, owner, pending)},
		{name: "Managers can list", path: "/v1/staff", token: getToken(t, manager), wantData: marchallList(t, admin, editor, manager, owner, pending)},
		{name: "search (unknown)", path: path("lol", "", ""), token: adminToken, wantData: empty},
		{name: "search=ma", path: path("ma", "", ""), token: adminToken, wantData: marchallList(t, manager)},
		{name: "role=admin:", path: path("", "", "", staff.RoleAdmin), token: adminToken, wantData: marchallList(t, admin, owner)},
		{name: "role=editor:,manager:", path: path("", "", "", staff.RoleEditor, staff.RoleManager), token: adminToken, wantData: marchallList(t, editor, manager)},
		{name: "is_approved=false", path: path("", "", "false"), token: adminToken, wantData: marchallList(t, pending)},
		{
			name: "is_approved=lol", path: path("", "", "lol"), token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"is_approved": "must be a boolean"}),
		},
		{name: "order by -name", path: path("", "-name", ""), token: adminToken, wantData: marchallList(t, pending, owner, manager, editor, admin)},
		{name: "unknown ordering is ignored", path: path("", "password", ""), token: adminToken, wantData: marchallList(t, admin, editor, manager, owner, pending)},
		{name: "roles", path: "/v1/staff/roles", token: getToken(t, editor), wantData: marchallObj(t, staff.Roles)},
	})
}

func Test_staffApi_update(t *testing.T) {
	env := setup(t)

	admin := env.createStaff(t, "Alice Admin", "alice@vid.test", staff.RoleAdmin)
	manager := env.createStaff(t, "Mary Manager", "mary@vid.test", staff.RoleManager)
	editor := env.createStaff(t, "Eddy Editor", "eddy@vid.test", staff.RoleEditor)
	pending := testutil.CreateStaff(t, env.StaffRepo, "Pat Pending", "pat@vid.test", []string{staff.RoleViewer}, false)

	tests := []struct {
		httpTest
		wantName  string
		wantRoles []string
	}{
		{
			httpTest: httpTest{
				name: "editor cannot see others", path: "/v1/staff/" + manager.ID, token: getToken(t, editor),
				wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "staff not found"}),
			},
		},
		{
			httpTest: httpTest{
				name: "editor renames themselves", path: "/v1/staff/" + editor.ID, token: getToken(t, editor),
				body: marchallObj(t, map[string]interface{}{"name": "eddie  editor"}),
			},
			wantName: "Eddie Editor", wantRoles: []string{staff.RoleEditor},
		},
		{
			httpTest: httpTest{
				name: "editor cannot change their roles", path: "/v1/staff/" + editor.ID, token: getToken(t, editor),
				body:     marchallObj(t, map[string]interface{}{"roles": []string{staff.RoleAdmin}}),
				wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
			},
		},
		{
			httpTest: httpTest{
				name: "manager cannot update others", path: "/v1/staff/" + editor.ID, token: getToken(t, manager),
				body:     marchallObj(t, map[string]interface{}{"name": "X"}),
				wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
			},
		},
		{
			httpTest: httpTest{
				name: "admin cannot grant a higher role", path: "/v1/staff/" + editor.ID, token: getToken(t, admin),
				body:     marchallObj(t, map[string]interface{}{"roles": []string{staff.RoleAdminOwner}}),
				wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
			},
		},
		{
			httpTest: httpTest{
				name: "invalid roles", path: "/v1/staff/" + editor.ID, token: getToken(t, admin),
				body:     marchallObj(t, map[string]interface{}{"roles": []string{"lol:"}}),
				wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"roles": "invalid roles"}),
			},
		},
		{
			httpTest: httpTest{
				name: "admin promotes", path: "/v1/staff/" + editor.ID, token: getToken(t, admin),
				body: marchallObj(t, map[string]interface{}{"roles": []string{staff.RoleManager}}),
			},
			wantName: "Eddie Editor", wantRoles: []string{staff.RoleManager},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		if tt.name == "editor cannot see others" {
			tt.method = http.MethodGet
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.serve(req, rec)
			if tt.wantData != nil {
				checkCodeAndData(t, tt.httpTest, rec)
				return
			}
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			var got staff.Staff
			unmarshal(t, rec, &got)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantRoles, got.Roles)
		})
	}

	t.Run("approve", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/staff/"+pending.ID+"/approve", getToken(t, manager))
		env.serve(req, rec)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/v1/staff/"+pending.ID+"/approve", getToken(t, admin))
		env.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got staff.Staff
		unmarshal(t, rec, &got)
		assert.True(t, got.IsApproved)

		// the approved staff member gets in
		req, rec = newAuthRequest(http.MethodGet, "/v1/projects", getToken(t, got))
		env.serve(req, rec)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func Test_staffApi_destroy(t *testing.T) {
	env := setup(t)

	admin := env.createStaff(t, "Alice Admin", "alice@vid.test", staff.RoleAdmin)
	manager := env.createStaff(t, "Mary Manager", "mary@vid.test", staff.RoleManager)
	editor := env.createStaff(t, "Eddy Editor", "eddy@vid.test", staff.RoleEditor)
	viewer := env.createStaff(t, "Vic Viewer", "vic@vid.test", staff.RoleViewer)
	adminToken := getToken(t, admin)

	runTests(t, env, []httpTest{
		{
			name: "Admin required", method: http.MethodDelete, path: "/v1/staff/" + editor.ID, token: getToken(t, manager),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Cannot delete themselves", method: http.MethodDelete, path: "/v1/staff/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Cannot bulk delete themselves", method: http.MethodDelete, path: "/v1/staff?id=" + editor.ID + "&id=" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Delete one", method: http.MethodDelete, path: "/v1/staff/" + editor.ID, token: adminToken, wantCode: http.StatusNoContent},
		{
			name: "Deleted", path: "/v1/staff/" + editor.ID, token: adminToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "staff not found"}),
		},
		{name: "Bulk delete", method: http.MethodDelete, path: "/v1/staff?id=" + viewer.ID + "," + manager.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "Only the admin is left", path: "/v1/staff", token: adminToken, wantData: marchallList(t, admin)},
	})
}
