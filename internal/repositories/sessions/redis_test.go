package sessions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/alchemy"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/KirkDiggler/cultivation-idle/internal/repositories/characters"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mock redismock.ClientMock
	repo Repository
	now  time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	var client *redis.Client
	client, s.mock = redismock.NewClientMock()
	s.now = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	s.repo = NewRedisRepository(&RedisRepoConfig{
		Client: client,
		Clock:  clock.NewFake(s.now),
	})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.Require().NoError(s.mock.ExpectationsWereMet())
}

func (s *RedisRepoTestSuite) session(id string, start time.Time) *alchemy.Session {
	return alchemy.NewSession(id, "char-1", "qi_pill", start, start.Add(time.Hour), 0.6)
}

func (s *RedisRepoTestSuite) TestGet() {
	sess := s.session("s-1", s.now)
	data, err := encode(sess)
	s.Require().NoError(err)

	s.mock.ExpectGet(Key("s-1")).SetVal(data)

	got, err := s.repo.Get(context.Background(), "s-1")
	s.Require().NoError(err)
	s.Equal(alchemy.StatusInProgress, got.Status)
	s.True(got.FinishAt.Equal(s.now.Add(time.Hour)))
	s.InDelta(0.6, got.SuccessRate, 1e-9)
}

func (s *RedisRepoTestSuite) TestGetMissing() {
	s.mock.ExpectGet(Key("s-404")).RedisNil()

	_, err := s.repo.Get(context.Background(), "s-404")
	s.True(engerr.IsNotFound(err))
}

func (s *RedisRepoTestSuite) TestGetCorrupt() {
	s.mock.ExpectGet(Key("s-1")).SetVal("{broken")

	_, err := s.repo.Get(context.Background(), "s-1")
	s.Equal(engerr.CodeInvalidState, engerr.GetCode(err))
}

func (s *RedisRepoTestSuite) TestGetStoreDown() {
	s.mock.ExpectGet(Key("s-1")).SetErr(errors.New("connection refused"))

	_, err := s.repo.Get(context.Background(), "s-1")
	s.True(engerr.IsStoreUnavailable(err))
}

func (s *RedisRepoTestSuite) TestCountActive() {
	s.mock.ExpectSCard(activeKey("char-1")).SetVal(2)

	n, err := s.repo.CountActive(context.Background(), "char-1")
	s.Require().NoError(err)
	s.Equal(2, n)
}

func (s *RedisRepoTestSuite) TestListByOwner() {
	s.mock.MatchExpectationsInOrder(false)

	late, err := encode(s.session("s-2", s.now.Add(time.Minute)))
	s.Require().NoError(err)
	early, err := encode(s.session("s-1", s.now))
	s.Require().NoError(err)

	s.mock.ExpectSMembers(ownerKey("char-1")).SetVal([]string{"s-2", "s-1"})
	s.mock.ExpectGet(Key("s-2")).SetVal(late)
	s.mock.ExpectGet(Key("s-1")).SetVal(early)

	list, err := s.repo.ListByOwner(context.Background(), "char-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("s-1", list[0].ID)
	s.Equal("s-2", list[1].ID)
}

func (s *RedisRepoTestSuite) TestCreateRequiresID() {
	_, err := s.repo.CreateWithDeduction(context.Background(), &alchemy.Session{}, nil, 3)
	s.Equal(engerr.CodeInvalidArgument, engerr.GetCode(err))
}

func (s *RedisRepoTestSuite) owner() string {
	ch := character.NewCharacter("char-1", "Disciple")
	ch.Experience = 40
	ch.AddResource("spirit_herb", 27)
	data, err := characters.Encode(ch)
	s.Require().NoError(err)
	return data
}

func (s *RedisRepoTestSuite) TestCreateReplayWritesNothing() {
	sess := s.session("s-1", s.now)
	data, err := encode(sess)
	s.Require().NoError(err)

	s.mock.ExpectWatch(Key("s-1"), characters.Key("char-1"), activeKey("char-1"))
	s.mock.ExpectGet(Key("s-1")).SetVal(data)
	s.mock.ExpectGet(characters.Key("char-1")).SetVal(s.owner())

	owner, err := s.repo.CreateWithDeduction(context.Background(), sess, map[string]int64{"spirit_herb": 3}, 3)
	s.Require().NoError(err)
	s.Equal(int64(27), owner.Resource("spirit_herb"))
}

func (s *RedisRepoTestSuite) TestCreateRejectsDifferentSessionUnderSameID() {
	stored, err := encode(s.session("s-1", s.now.Add(-time.Hour)))
	s.Require().NoError(err)

	s.mock.ExpectWatch(Key("s-1"), characters.Key("char-1"), activeKey("char-1"))
	s.mock.ExpectGet(Key("s-1")).SetVal(stored)

	_, err = s.repo.CreateWithDeduction(context.Background(), s.session("s-1", s.now), nil, 3)
	s.Equal(engerr.CodeAlreadyExists, engerr.GetCode(err))
}

func (s *RedisRepoTestSuite) TestCompleteReplayReturnsStoredOutcome() {
	at := s.now.Add(time.Hour)
	common := alchemy.QualityCommon
	out := alchemy.Outcome{Success: true, Quality: &common, ItemID: "qi_pill", ExpGained: 40}

	sess := s.session("s-1", s.now)
	s.Require().True(sess.Complete(out, at))
	data, err := encode(sess)
	s.Require().NoError(err)

	s.mock.ExpectWatch(Key("s-1"), characters.Key("char-1"))
	s.mock.ExpectGet(Key("s-1")).SetVal(data)
	s.mock.ExpectGet(characters.Key("char-1")).SetVal(s.owner())

	resolved, owner, err := s.repo.Complete(context.Background(), "char-1", "s-1", out, at)
	s.Require().NoError(err)
	s.Equal(alchemy.StatusCompleted, resolved.Status)
	s.Equal(int64(40), owner.Experience)
}

func (s *RedisRepoTestSuite) TestCompleteWithDifferentOutcomeIsAlreadyCollected() {
	at := s.now.Add(time.Hour)
	sess := s.session("s-1", s.now)
	s.Require().True(sess.Complete(alchemy.Outcome{ExpGained: 20}, at))
	data, err := encode(sess)
	s.Require().NoError(err)

	s.mock.ExpectWatch(Key("s-1"), characters.Key("char-1"))
	s.mock.ExpectGet(Key("s-1")).SetVal(data)

	_, _, err = s.repo.Complete(context.Background(), "char-1", "s-1", alchemy.Outcome{ExpGained: 20}, at.Add(time.Second))
	s.Equal(engerr.CodeAlreadyCollected, engerr.GetCode(err))
}

func TestRedisRepoSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}
