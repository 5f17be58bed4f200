package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-atlas/campus-atlas/internal/auth"
	"github.com/campus-atlas/campus-atlas/internal/shared"
)

type stubUserRepo struct {
	users map[uuid.UUID]*auth.User
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return nil, shared.ErrNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) Create(ctx context.Context, user *auth.User) error { return nil }
func (s *stubUserRepo) List(ctx context.Context) ([]auth.User, error)     { return nil, nil }
func (s *stubUserRepo) UpdateProfile(ctx context.Context, user *auth.User) error {
	return nil
}
func (s *stubUserRepo) SetApproved(ctx context.Context, id, approvedBy uuid.UUID) error {
	return nil
}
func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

var _ auth.Repository = (*stubUserRepo)(nil)

type handlerFixture struct {
	router http.Handler
	repo   *mockRepo
	admin  string
	user   string
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	repo := newMockRepo()
	svc := newTestService(t, repo)

	tokens := auth.NewTokens(auth.TokenConfig{Secret: "test-secret", TTL: time.Hour})
	adminUser := &auth.User{ID: uuid.New(), Email: "admin@t.test", Role: auth.RoleAdmin, Approved: true}
	regularUser := &auth.User{ID: uuid.New(), Email: "user@t.test", Role: auth.RoleUser, Approved: true}
	userRepo := &stubUserRepo{users: map[uuid.UUID]*auth.User{
		adminUser.ID:   adminUser,
		regularUser.ID: regularUser,
	}}
	mw := auth.Middleware{Tokens: tokens, Repo: userRepo}

	handler := NewHandler(testLogger(), svc, mw)
	router := chi.NewRouter()
	router.Route("/api", handler.MountRoutes)

	adminToken, err := tokens.Issue(adminUser)
	require.NoError(t, err)
	userToken, err := tokens.Issue(regularUser)
	require.NoError(t, err)

	return &handlerFixture{
		router: router,
		repo:   repo,
		admin:  "Bearer " + adminToken,
		user:   "Bearer " + userToken,
	}
}

func (f *handlerFixture) do(method, target, authz string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	res := httptest.NewRecorder()
	f.router.ServeHTTP(res, req)
	return res
}

func validPayload() universityRequest {
	return universityRequest{
		Name:              "University of Portsmouth",
		Country:           "United Kingdom",
		AlphaTwoCode:      "GB",
		Continent:         "Europe",
		Domains:           []string{"port.ac.uk"},
		WebPages:          []string{"https://www.port.ac.uk"},
		EstablishedYear:   1992,
		StudentPopulation: 25000,
		ProgramsOffered:   []string{"Computer Science", "Business Administration"},
		ContactInfo:       contactInfo{Address: "Winston Churchill Avenue", Phone: "+44 23 9284 8484", Email: "info@port.ac.uk"},
	}
}

func TestListEnvelope(t *testing.T) {
	f := newHandlerFixture(t)
	require.NoError(t, f.repo.Create(context.Background(), sampleUniversity("University of Nairobi", "Kenya", "Africa", 1956, "Law")))

	res := f.do(http.MethodGet, "/api/universities?country=Kenya&page=1&limit=10", "", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 10, body.Limit)
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.TotalPages)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "Kenya", body.Data[0].Country)
}

func TestListUnknownFilterKey(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodGet, "/api/universities?country=Kenya&color=red", "", nil)
	require.Equal(t, http.StatusBadRequest, res.Code)

	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Unknown filter parameter: color", body.Message)
}

func TestListClampsPagination(t *testing.T) {
	f := newHandlerFixture(t)

	res := f.do(http.MethodGet, "/api/universities?page=-3&limit=abc", "", nil)
	require.Equal(t, http.StatusOK, res.Code)

	var body listResponse
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 10, body.Limit)
	assert.NotNil(t, body.Data)
}

func TestGetByID(t *testing.T) {
	f := newHandlerFixture(t)
	u := sampleUniversity("University of Ghana", "Ghana", "Africa", 1948, "Law")
	require.NoError(t, f.repo.Create(context.Background(), u))

	res := f.do(http.MethodGet, "/api/universities/"+u.ID.String(), "", nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = f.do(http.MethodGet, "/api/universities/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = f.do(http.MethodGet, "/api/universities/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := newHandlerFixture(t)
	payload := validPayload()

	res := f.do(http.MethodPost, "/api/universities", "", payload)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = f.do(http.MethodPost, "/api/universities", f.user, payload)
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = f.do(http.MethodPost, "/api/universities", f.admin, payload)
	require.Equal(t, http.StatusCreated, res.Code)

	var created University
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, payload.Name, created.Name)
}

func TestCreateValidatesBody(t *testing.T) {
	f := newHandlerFixture(t)
	payload := validPayload()
	payload.Name = ""

	res := f.do(http.MethodPost, "/api/universities", f.admin, payload)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUpdateAndDelete(t *testing.T) {
	f := newHandlerFixture(t)
	u := sampleUniversity("Makerere University", "Uganda", "Africa", 1922, "Medicine")
	require.NoError(t, f.repo.Create(context.Background(), u))

	payload := validPayload()
	payload.Name = "Makerere University Kampala"
	res := f.do(http.MethodPut, "/api/universities/"+u.ID.String(), f.admin, payload)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "Makerere University Kampala", f.repo.records[u.ID].Name)

	res = f.do(http.MethodDelete, "/api/universities/"+u.ID.String(), f.admin, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = f.do(http.MethodDelete, "/api/universities/"+u.ID.String(), f.admin, nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
}
