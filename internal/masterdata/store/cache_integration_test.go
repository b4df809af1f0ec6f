//go:build integration

package store_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"auditadmin/internal/masterdata"
	"auditadmin/internal/masterdata/models"
	"auditadmin/internal/masterdata/store"
	id "auditadmin/pkg/domain"
	"auditadmin/pkg/paging"
	"auditadmin/pkg/testutil/containers"
)

// countingStore wraps an inner store and counts List calls so tests can tell
// cache hits from misses.
type countingStore struct {
	store.Store
	listCalls int
}

func (c *countingStore) List(ctx context.Context, groupID id.GroupID, filter store.ListFilter) ([]*models.Record, int, error) {
	c.listCalls++
	return c.Store.List(ctx, groupID, filter)
}

type CachedStoreSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	inner   *countingStore
	cached  *store.Cached
	groupID id.GroupID
	desc    masterdata.Descriptor
}

func TestCachedStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CachedStoreSuite))
}

func (s *CachedStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	for _, desc := range masterdata.Registry() {
		if desc.Resource == "picklists" {
			s.desc = desc
		}
	}
}

func (s *CachedStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.redis.FlushAll(ctx))

	hub := store.NewInMemoryHub()
	s.inner = &countingStore{Store: hub.For(s.desc)}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.cached = store.NewCached(s.inner, s.redis.Client, s.desc, time.Minute, logger)
	s.groupID = id.GroupID(uuid.New())
}

func (s *CachedStoreSuite) newRecord(name string) *models.Record {
	now := time.Now().UTC()
	return &models.Record{
		ID:        id.RecordID(uuid.New()),
		GroupID:   s.groupID,
		Name:      name,
		Active:    true,
		CreatedBy: id.UserID(uuid.New()),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *CachedStoreSuite) TestListServedFromCache() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Create(ctx, s.newRecord("Priority")))

	filter := store.ListFilter{Page: paging.Params{Page: 1, Size: 25}}

	records, total, err := s.cached.List(ctx, s.groupID, filter)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Len(records, 1)
	s.Equal(1, s.inner.listCalls, "first list hits the store")

	records, total, err = s.cached.List(ctx, s.groupID, filter)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Len(records, 1)
	s.Equal(1, s.inner.listCalls, "second list is served from cache")
}

func (s *CachedStoreSuite) TestMutationInvalidates() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Create(ctx, s.newRecord("Priority")))

	filter := store.ListFilter{Page: paging.Params{Page: 1, Size: 25}}
	_, _, err := s.cached.List(ctx, s.groupID, filter)
	s.Require().NoError(err)

	s.Require().NoError(s.cached.Create(ctx, s.newRecord("Severity")))

	_, total, err := s.cached.List(ctx, s.groupID, filter)
	s.Require().NoError(err)
	s.Equal(2, total, "list after create sees the new record")
	s.Equal(2, s.inner.listCalls, "invalidation forced a store read")
}

func (s *CachedStoreSuite) TestFilteredListsBypassCache() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Create(ctx, s.newRecord("Priority")))

	filter := store.ListFilter{Search: "prio", Page: paging.Params{Page: 1, Size: 25}}
	for i := 0; i < 2; i++ {
		_, _, err := s.cached.List(ctx, s.groupID, filter)
		s.Require().NoError(err)
	}
	s.Equal(2, s.inner.listCalls, "searches always hit the store")
}

func (s *CachedStoreSuite) TestGroupsCachedSeparately() {
	ctx := context.Background()
	s.Require().NoError(s.cached.Create(ctx, s.newRecord("Priority")))

	filter := store.ListFilter{Page: paging.Params{Page: 1, Size: 25}}
	_, total, err := s.cached.List(ctx, s.groupID, filter)
	s.Require().NoError(err)
	s.Equal(1, total)

	_, total, err = s.cached.List(ctx, id.GroupID(uuid.New()), filter)
	s.Require().NoError(err)
	s.Zero(total, "another group's cache entry is distinct")
}
