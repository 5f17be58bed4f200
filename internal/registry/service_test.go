package registry

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-atlas/campus-atlas/internal/shared"
)

type mockRepo struct {
	records map[uuid.UUID]*University

	listCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*University)}
}

func (m *mockRepo) matches(u *University, f Filter) bool {
	if f.Country != "" && strings.ToLower(u.Country) != f.Country {
		return false
	}
	if f.Continent != "" && strings.ToLower(u.Continent) != f.Continent {
		return false
	}
	if f.Name != "" && !strings.Contains(strings.ToLower(u.Name), f.Name) {
		return false
	}
	if f.EstablishedYear != "" && strconv.Itoa(u.EstablishedYear) != f.EstablishedYear {
		return false
	}
	if f.Program != "" {
		found := false
		for _, p := range u.ProgramsOffered {
			if strings.Contains(strings.ToLower(p), f.Program) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *mockRepo) List(ctx context.Context, f Filter, page shared.PageRequest) ([]University, int, error) {
	m.listCalls++
	var all []University
	for _, u := range m.records {
		if m.matches(u, f) {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if page.Skip >= total {
		return nil, total, nil
	}
	end := page.Skip + page.Limit
	if end > total {
		end = total
	}
	return all[page.Skip:end], total, nil
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*University, error) {
	u, ok := m.records[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepo) FindByContactEmail(ctx context.Context, email string) (*University, error) {
	for _, u := range m.records {
		if u.ContactInfo.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepo) Create(ctx context.Context, u *University) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range m.records {
		if existing.ContactInfo.Email == u.ContactInfo.Email {
			return shared.ErrAlreadyExists
		}
	}
	copied := *u
	m.records[u.ID] = &copied
	return nil
}

func (m *mockRepo) Update(ctx context.Context, id uuid.UUID, u *University) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	copied := *u
	copied.ID = id
	m.records[id] = &copied
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

var _ Repository = (*mockRepo)(nil)

func sampleUniversity(name, country, continent string, year int, programs ...string) *University {
	return &University{
		ID:                uuid.New(),
		Name:              name,
		Country:           country,
		AlphaTwoCode:      strings.ToUpper(country[:2]),
		Continent:         continent,
		Domains:           []string{strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".edu"},
		WebPages:          []string{"https://www." + strings.ToLower(strings.ReplaceAll(name, " ", "")) + ".edu"},
		EstablishedYear:   year,
		StudentPopulation: 10000,
		ProgramsOffered:   programs,
		ContactInfo: ContactInfo{
			Address: "1 Campus Way",
			Phone:   "+1-555-0100",
			Email:   strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.edu",
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewService(repo, NewCache(client, time.Minute), nil)
}

func TestListFiltersCaseInsensitively(t *testing.T) {
	repo := newMockRepo()
	require.NoError(t, repo.Create(context.Background(), sampleUniversity("University of Nairobi", "Kenya", "Africa", 1956, "Law", "Medicine")))
	require.NoError(t, repo.Create(context.Background(), sampleUniversity("Strathmore University", "Kenya", "Africa", 1961, "Business")))
	require.NoError(t, repo.Create(context.Background(), sampleUniversity("University of Oxford", "United Kingdom", "Europe", 1096, "Law")))
	svc := newTestService(t, repo)

	f, err := BuildFilter("country=KENYA")
	require.NoError(t, err)
	result, err := svc.List(context.Background(), f, shared.ResolvePage("1", "10"))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Len(t, result.Items, 2)

	f, err = BuildFilter("program=law")
	require.NoError(t, err)
	result, err = svc.List(context.Background(), f, shared.ResolvePage("", ""))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
}

func TestListPaginates(t *testing.T) {
	repo := newMockRepo()
	for i := 0; i < 25; i++ {
		u := sampleUniversity("College "+strconv.Itoa(100+i), "Kenya", "Africa", 1900+i, "Arts")
		require.NoError(t, repo.Create(context.Background(), u))
	}
	svc := newTestService(t, repo)

	result, err := svc.List(context.Background(), Filter{}, shared.ResolvePage("3", "10"))
	require.NoError(t, err)
	assert.Equal(t, 25, result.Total)
	assert.Len(t, result.Items, 5)
}

func TestListUsesCacheUntilMutation(t *testing.T) {
	repo := newMockRepo()
	require.NoError(t, repo.Create(context.Background(), sampleUniversity("University of Ghana", "Ghana", "Africa", 1948, "Law")))
	svc := newTestService(t, repo)
	page := shared.ResolvePage("1", "10")

	_, err := svc.List(context.Background(), Filter{}, page)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), Filter{}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second read should hit the cache")

	// A mutation bumps the cache version; the next read goes to storage.
	require.NoError(t, svc.Create(context.Background(), sampleUniversity("Ashesi University", "Ghana", "Africa", 2002, "Engineering")))
	result, err := svc.List(context.Background(), Filter{}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, 2, result.Total)
}

func TestListEmptyResultHasEmptySlice(t *testing.T) {
	svc := newTestService(t, newMockRepo())
	result, err := svc.List(context.Background(), Filter{}, shared.ResolvePage("", ""))
	require.NoError(t, err)
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Zero(t, result.Total)
}

func TestGetNotFound(t *testing.T) {
	svc := newTestService(t, newMockRepo())
	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
