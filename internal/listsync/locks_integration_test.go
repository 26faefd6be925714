//go:build integration

package listsync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vigil/internal/listsync"
	"vigil/pkg/testutil/containers"
)

type RedisLockerSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	locker *listsync.RedisLocker
}

func TestRedisLockerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockerSuite))
}

func (s *RedisLockerSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.locker = listsync.NewRedisLocker(s.redis.Client)
}

func (s *RedisLockerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockerSuite) TestLockExcludesSecondHolder() {
	ctx := context.Background()

	release, err := s.locker.TryLock(ctx, "EU", time.Minute)
	s.Require().NoError(err)

	_, err = s.locker.TryLock(ctx, "EU", time.Minute)
	s.Require().ErrorIs(err, listsync.ErrSyncInProgress)

	release()

	release2, err := s.locker.TryLock(ctx, "EU", time.Minute)
	s.Require().NoError(err)
	release2()
}

func (s *RedisLockerSuite) TestLocksArePerList() {
	ctx := context.Background()

	releaseEU, err := s.locker.TryLock(ctx, "EU", time.Minute)
	s.Require().NoError(err)
	defer releaseEU()

	releaseOFAC, err := s.locker.TryLock(ctx, "OFAC", time.Minute)
	s.Require().NoError(err)
	releaseOFAC()
}

func (s *RedisLockerSuite) TestExpiredLockCanBeRetaken() {
	ctx := context.Background()

	_, err := s.locker.TryLock(ctx, "EU", 50*time.Millisecond)
	s.Require().NoError(err)

	time.Sleep(100 * time.Millisecond)

	release, err := s.locker.TryLock(ctx, "EU", time.Minute)
	s.Require().NoError(err)
	release()
}
