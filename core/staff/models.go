package staff

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/vidtrack/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Manager: runs projects, assigns staff
	RoleManager = "manager:"

	// Editor: produces the videos assigned to them
	RoleEditor = "editor:"

	// Viewer: read only
	RoleViewer = "viewer:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	ManagerRoles = []string{RoleManager}
	EditorRoles  = []string{RoleEditor}
	ViewerRoles  = []string{RoleViewer}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Managers: 20 - 12
		RoleManager: 15,

		// Editors: 11 - 2
		RoleEditor: 11,

		// Viewers: 1
		RoleViewer: 1,
	}

	Roles = []Role{
		{Name: "Viewer", Value: RoleViewer},
		{Name: "Editor", Value: RoleEditor},
		{Name: "Manager", Value: RoleManager},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, AdminRoles...)
	all = append(all, ManagerRoles...)
	all = append(all, EditorRoles...)
	all = append(all, ViewerRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Staff struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Roles      []string   `json:"roles"`
	IsActive   bool       `json:"is_active"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  time.Time  `json:"created_at"`   // UTC
	UpdatedAt  time.Time  `json:"updated_at"`   // UTC
	LastSeenAt *time.Time `json:"last_seen_at"` // UTC
}

func (s *Staff) RoleStartsWith(prefix string) bool {
	for _, role := range s.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (s *Staff) IsAdmin() bool {
	return s.RoleStartsWith(RoleAdmin)
}

// IsManager reports whether s can manage projects: managers and admins.
func (s *Staff) IsManager() bool {
	return s.IsAdmin() || s.RoleStartsWith(RoleManager)
}

// IsEditor reports whether s can work on videos: editors and everyone above.
func (s *Staff) IsEditor() bool {
	return s.IsManager() || s.RoleStartsWith(RoleEditor)
}

// CanManage reports whether s may write catalog, project and video records.
func (s *Staff) CanManage() bool {
	return s.IsActive && s.IsApproved && s.IsManager()
}

// CanAssume reports whether s may grant roles to someone else.
func (s *Staff) CanAssume(roles []string) bool {
	return MaxRolePriority(roles) <= MaxRolePriority(s.Roles)
}

// NewStaff contains information needed to create a new Staff member.
type NewStaff struct {
	ID         string   `json:"-"`
	Name       string   `json:"name" validate:"required,notblank"`
	Email      string   `json:"email" validate:"required,email"`
	Roles      []string `json:"roles" validate:"omitempty,allroles"`
	IsApproved bool     `json:"-"`
}

func (ns *NewStaff) Clean() {
	ns.Name = core.CleanName(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
}

func (ns *NewStaff) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateStaff defines what information may be provided to modify an existing Staff member.
type UpdateStaff struct {
	Name       string   `json:"name"`
	Roles      []string `json:"roles" validate:"omitempty,allroles"`
	IsActive   *bool    `json:"is_active"`
	IsApproved *bool    `json:"is_approved"`
}

func (us *UpdateStaff) Validate(orig Staff, validate *validator.Validate) error {
	if name := core.CleanName(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	return validate.Struct(us)
}

// RequiresAdmin reports whether the update touches admin-only fields.
func (us UpdateStaff) RequiresAdmin() bool {
	return us.Roles != nil || us.IsActive != nil || us.IsApproved != nil
}

type QueryFilter struct {
	Search     string
	Roles      []string
	IsActive   *bool
	IsApproved *bool
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.IsActive == nil && qf.IsApproved == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

// Match reports whether s passes the filter, used by in-memory stores.
// Roles match by prefix, so "admin:" matches "admin:owner".
func (qf *QueryFilter) Match(s Staff) bool {
	if qf == nil {
		return true
	}
	if qf.Search != "" {
		q := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(s.Name), q) && !strings.Contains(strings.ToLower(s.Email), q) {
			return false
		}
	}
	if len(qf.Roles) > 0 {
		var found bool
		for _, role := range qf.Roles {
			if s.RoleStartsWith(role) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if qf.IsActive != nil && s.IsActive != *qf.IsActive {
		return false
	}
	if qf.IsApproved != nil && s.IsApproved != *qf.IsApproved {
		return false
	}
	return true
}

// OrderingFields maps the fields staff lists can be ordered by to their columns.
var OrderingFields = map[string]string{
	"name":         "name",
	"email":        "email",
	"created_at":   "created_at",
	"last_seen_at": "last_seen_at",
}
