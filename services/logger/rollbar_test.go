package logsvc

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/vidtrack/core/staff"
)

// personOf returns the person carried by the context in args, if any.
func personOf(t *testing.T, args []interface{}) *rollbar.Person {
	t.Helper()
	var person *rollbar.Person
	for _, arg := range args {
		if ctx, ok := arg.(context.Context); ok {
			assert.Nil(t, person, "more than one context")
			p, ok := rollbar.PersonFromContext(ctx)
			assert.True(t, ok)
			person = p
		}
	}
	return person
}

func TestRollbarLogger_prepare(t *testing.T) {
	var l RollbarLogger
	err := errors.New("boom")
	ada := staff.Staff{ID: "s1", Name: "Ada Admin", Email: "ada@vid.test"}
	bob := staff.Staff{ID: "s2", Name: "Bob", Email: "bob@vid.test"}

	args, fields := l.prepare("failed", []interface{}{err, ada, bob, map[string]interface{}{"path": "/videos"}, 42})
	assert.Equal(t, "failed", args[0])
	assert.Contains(t, args, err)
	assert.Contains(t, args, map[string]interface{}{"path": "/videos", "extra": []interface{}{42}})
	assert.Equal(t, &rollbar.Person{Id: "s1", Username: "Ada Admin", Email: "ada@vid.test"}, personOf(t, args))
	assert.Equal(t, []interface{}{"error", err, "staff", "s1", "path", "/videos", "extra", 42}, fields)

	// no staff, no person
	args, fields = l.prepare("plain", nil)
	assert.Equal(t, []interface{}{"plain"}, args)
	assert.Nil(t, personOf(t, args))
	assert.Empty(t, fields)
}

func TestRollbarLogger_prepareConcurrently(t *testing.T) {
	var l RollbarLogger
	members := []staff.Staff{
		{ID: "s1", Name: "Ada", Email: "ada@vid.test"},
		{ID: "s2", Name: "Bob", Email: "bob@vid.test"},
		{ID: "s3", Name: "Cleo", Email: "cleo@vid.test"},
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		s := members[i%len(members)]
		anon := i%4 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			if anon {
				args, _ := l.prepare("anon", nil)
				assert.Nil(t, personOf(t, args))
				return
			}
			args, _ := l.prepare("req", []interface{}{s})
			if p := personOf(t, args); assert.NotNil(t, p) {
				assert.Equal(t, s.ID, p.Id)
			}
		}()
	}
	wg.Wait()
}
