//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/dmytrokrutii/mod-consortia/internal/consortium/models"
	"github.com/dmytrokrutii/mod-consortia/internal/consortium/store"
	"github.com/dmytrokrutii/mod-consortia/pkg/platform/sentinel"
	"github.com/dmytrokrutii/mod-consortia/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "user_tenant", "tenant", "consortium")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestInsertAndFind() {
	ctx := context.Background()
	consortium := models.Consortium{ID: uuid.New(), Name: "MOBIUS"}

	s.Require().NoError(s.store.Insert(ctx, consortium))

	found, err := s.store.FindByID(ctx, consortium.ID)
	s.Require().NoError(err)
	s.Equal(consortium, found)

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)

	_, err = s.store.FindByID(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateInsert() {
	ctx := context.Background()
	consortium := models.Consortium{ID: uuid.New(), Name: "MOBIUS"}

	s.Require().NoError(s.store.Insert(ctx, consortium))
	s.ErrorIs(s.store.Insert(ctx, consortium), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestUpdate() {
	ctx := context.Background()
	consortium := models.Consortium{ID: uuid.New(), Name: "MOBIUS"}
	s.Require().NoError(s.store.Insert(ctx, consortium))

	consortium.Name = "MOBIUS Renamed"
	s.Require().NoError(s.store.Update(ctx, consortium))

	found, err := s.store.FindByID(ctx, consortium.ID)
	s.Require().NoError(err)
	s.Equal("MOBIUS Renamed", found.Name)

	ghost := models.Consortium{ID: uuid.New(), Name: "Ghost"}
	s.ErrorIs(s.store.Update(ctx, ghost), sentinel.ErrNotFound)
}

// TestConcurrentInsertSameID verifies that racing registrations of the same
// consortium resolve to exactly one winner.
func (s *PostgresStoreSuite) TestConcurrentInsertSameID() {
	ctx := context.Background()
	consortium := models.Consortium{ID: uuid.New(), Name: "MOBIUS"}
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(ctx, consortium)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load(), "all others should get conflict error")

	count, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
}
