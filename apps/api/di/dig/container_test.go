package dig_container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/vidtrack/apps/api/echo"
	"github.com/trezcool/vidtrack/core"
	"github.com/trezcool/vidtrack/core/faculty"
	"github.com/trezcool/vidtrack/core/staff"
)

func TestNew(t *testing.T) {
	c := New(core.NewTestConfig)

	err := c.Invoke(func(
		conf *core.Config,
		store *Store,
		staffRepo staff.Repository,
		facultySvc *faculty.Service,
		server *echoapi.Server,
	) {
		assert.Nil(t, store.SQL)
		require.NotNil(t, store.Mem)
		assert.NoError(t, store.Close())

		_, err := staffRepo.CreateStaff(context.Background(), staff.Staff{ID: "s1", Name: "Ada", Email: "ada@vid.test"})
		require.NoError(t, err)

		f, err := facultySvc.Create(context.Background(), faculty.FacultyData{Name: "Law", Code: "LAW"})
		require.NoError(t, err)
		got, err := facultySvc.Get(context.Background(), f.ID)
		require.NoError(t, err)
		assert.Equal(t, "LAW", got.Code)

		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}
