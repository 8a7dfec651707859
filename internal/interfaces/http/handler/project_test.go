package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkcode/dashboard/internal/domain/identity"
	"github.com/sparkcode/dashboard/tests/testutil"
)

func createProject(t *testing.T, env *testEnv, body map[string]any) ProjectResponse {
	t.Helper()
	w := env.do(t, identity.RoleMember, http.MethodPost, "/api/v1/projects", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p ProjectResponse
	decodeData(t, w, &p)
	return p
}

func TestProjectHandler_CreateDefaults(t *testing.T) {
	env := newTestEnv(t)

	p := createProject(t, env, map[string]any{"name": "Website redesign", "client": "Acme Corp", "budget": "$12,000"})

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Website redesign", p.Name)
	assert.Equal(t, "In Progress", p.Status)
	assert.Equal(t, 1, p.Team)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, []string{"Started new project: Website redesign"}, env.activities(t))
}

func TestProjectHandler_CreateValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"missing name", map[string]any{"client": "Acme"}, "ERR_VALIDATION"},
		{"blank name", map[string]any{"name": "   "}, "ERR_VALIDATION"},
		{"negative team", map[string]any{"name": "x", "team": -1}, "ERR_VALIDATION"},
		{"unknown status", map[string]any{"name": "x", "status": "Blocked"}, "ERR_INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, identity.RoleMember, http.MethodPost, "/api/v1/projects", tt.body)
			testutil.AssertErrorResponse(t, w, http.StatusBadRequest, tt.code)
		})
	}
	assert.Empty(t, env.activities(t), "rejected input writes nothing")
}

func TestProjectHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, "", http.MethodPost, "/api/v1/projects", map[string]any{"name": "x"})
	testutil.AssertErrorResponse(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
}

func TestProjectHandler_ListSearchAndGet(t *testing.T) {
	env := newTestEnv(t)
	createProject(t, env, map[string]any{"name": "Mobile app", "client": "Globex"})
	web := createProject(t, env, map[string]any{"name": "Website", "client": "Acme"})

	w := env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/projects?search=acme", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found []ProjectResponse
	decodeData(t, w, &found)
	require.Len(t, found, 1)
	assert.Equal(t, web.ID, found[0].ID)

	w = env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/projects/"+web.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/projects/missing", nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestProjectHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	p := createProject(t, env, map[string]any{"name": "Website"})

	w := env.do(t, identity.RoleMember, http.MethodPatch, "/api/v1/projects/"+p.ID, map[string]any{"status": "Review", "team": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated ProjectResponse
	decodeData(t, w, &updated)
	assert.Equal(t, "Review", updated.Status)
	assert.Equal(t, 4, updated.Team)
	assert.Equal(t, "Website", updated.Name, "fields not in the patch are kept")

	w = env.do(t, identity.RoleMember, http.MethodPatch, "/api/v1/projects/missing", map[string]any{"team": 2})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "ERR_NOT_FOUND")

	assert.Equal(t, []string{"Updated project details", "Started new project: Website"}, env.activities(t))
}

func TestProjectHandler_BoardAndMove(t *testing.T) {
	env := newTestEnv(t)
	p := createProject(t, env, map[string]any{"name": "Website", "status": "Review"})

	w := env.do(t, identity.RoleMember, http.MethodPost, "/api/v1/projects/"+p.ID+"/move", map[string]any{"direction": "forward"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var move MoveResponse
	decodeData(t, w, &move)
	assert.True(t, move.Moved)
	assert.Equal(t, "Review", move.From)
	assert.Equal(t, "Done", move.To)

	// Done is the last column.
	w = env.do(t, identity.RoleMember, http.MethodPost, "/api/v1/projects/"+p.ID+"/move", map[string]any{"direction": "forward"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &move)
	assert.False(t, move.Moved)
	assert.Equal(t, "Done", move.To)

	w = env.do(t, identity.RoleMember, http.MethodPost, "/api/v1/projects/"+p.ID+"/move", map[string]any{"direction": "sideways"})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_INVALID_INPUT")

	w = env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/projects/board", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var board []ColumnResponse
	decodeData(t, w, &board)
	require.Len(t, board, 4)
	assert.Equal(t, []string{"To Do", "In Progress", "Review", "Done"},
		[]string{board[0].Status, board[1].Status, board[2].Status, board[3].Status})
	assert.Equal(t, 1, board[3].Count)
	assert.Equal(t, p.ID, board[3].Projects[0].ID)

	assert.Equal(t, []string{"Updated project status to Done", "Started new project: Website"}, env.activities(t),
		"a move at the last column is not logged")
}

func TestProjectHandler_Tasks(t *testing.T) {
	env := newTestEnv(t)
	p := createProject(t, env, map[string]any{"name": "Website"})
	base := "/api/v1/projects/" + p.ID + "/tasks"

	w := env.do(t, identity.RoleMember, http.MethodPost, base, map[string]any{"title": "Wireframes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var task TaskResponse
	decodeData(t, w, &task)
	assert.False(t, task.Completed)

	w = env.do(t, identity.RoleMember, http.MethodPatch, base+"/"+task.ID, map[string]any{"completed": true})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = env.do(t, identity.RoleMember, http.MethodPatch, base+"/"+task.ID, map[string]any{})
	testutil.AssertErrorResponse(t, w, http.StatusBadRequest, "ERR_VALIDATION")

	w = env.do(t, identity.RoleMember, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tasks []TaskResponse
	decodeData(t, w, &tasks)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)

	w = env.do(t, identity.RoleMember, http.MethodDelete, base+"/"+task.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, identity.RoleMember, http.MethodPost, "/api/v1/projects/missing/tasks", map[string]any{"title": "x"})
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestProjectHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	p := createProject(t, env, map[string]any{"name": "Website"})

	w := env.do(t, identity.RoleMember, http.MethodDelete, "/api/v1/projects/"+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, identity.RoleMember, http.MethodGet, "/api/v1/projects/"+p.ID, nil)
	testutil.AssertErrorResponse(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
	assert.Equal(t, "Archived project record", env.activities(t)[0])
}
