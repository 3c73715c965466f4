package characters

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KirkDiggler/cultivation-idle/internal/clock"
	"github.com/KirkDiggler/cultivation-idle/internal/domain/character"
	engerr "github.com/KirkDiggler/cultivation-idle/internal/errors"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisRepoTestSuite struct {
	suite.Suite
	client *redis.Client
	mock   redismock.ClientMock
	clock  *clock.Fake
	repo   Repository
	now    time.Time
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.now = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	s.client, s.mock = redismock.NewClientMock()
	s.clock = clock.NewFake(s.now)
	s.repo = NewRedisRepository(&RedisRepoConfig{
		Client: s.client,
		Clock:  s.clock,
	})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) stored(id string) (*character.Character, string) {
	ch := character.NewCharacter(id, "Lin")
	ch.CreatedAt = s.now
	ch.UpdatedAt = s.now
	ch.AddResource(character.ResourceSpiritStones, 7)
	data, err := Encode(ch)
	s.Require().NoError(err)
	return ch, data
}

func (s *RedisRepoTestSuite) TestCreate() {
	ctx := context.Background()
	ch, data := s.stored("char-1")

	s.mock.ExpectTxPipeline()
	s.mock.ExpectSetNX("character:char-1", data, 0).SetVal(true)
	s.mock.ExpectSAdd(allCharactersKey, "char-1").SetVal(1)
	s.mock.ExpectTxPipelineExec()

	s.NoError(s.repo.Create(ctx, ch))
}

func (s *RedisRepoTestSuite) TestCreate_AlreadyExists() {
	ctx := context.Background()
	ch, data := s.stored("char-1")

	s.mock.ExpectTxPipeline()
	s.mock.ExpectSetNX("character:char-1", data, 0).SetVal(false)
	s.mock.ExpectSAdd(allCharactersKey, "char-1").SetVal(0)
	s.mock.ExpectTxPipelineExec()

	err := s.repo.Create(ctx, ch)
	s.Equal(engerr.CodeAlreadyExists, engerr.GetCode(err))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	_, data := s.stored("char-1")

	s.mock.ExpectGet("character:char-1").SetVal(data)
	got, err := s.repo.Get(ctx, "char-1")
	s.Require().NoError(err)
	s.Equal("char-1", got.ID)
	s.Equal(int64(7), got.Resource(character.ResourceSpiritStones))

	s.mock.ExpectGet("character:missing").RedisNil()
	_, err = s.repo.Get(ctx, "missing")
	s.True(engerr.IsNotFound(err))

	s.mock.ExpectGet("character:char-1").SetErr(errors.New("i/o timeout"))
	_, err = s.repo.Get(ctx, "char-1")
	s.True(engerr.IsStoreUnavailable(err))

	s.mock.ExpectGet("character:corrupt").SetVal("{not json")
	_, err = s.repo.Get(ctx, "corrupt")
	s.Equal(engerr.CodeInvalidState, engerr.GetCode(err))
}

func (s *RedisRepoTestSuite) TestUpdate() {
	ctx := context.Background()
	ch, _ := s.stored("char-1")

	later := s.clock.Advance(time.Minute)
	ch.Experience = 99
	expected := ch.Clone()
	expected.UpdatedAt = later
	data, err := Encode(expected)
	s.Require().NoError(err)

	s.mock.ExpectSetXX("character:char-1", data, 0).SetVal(true)
	s.NoError(s.repo.Update(ctx, ch))

	s.mock.ExpectSetXX("character:char-1", data, 0).SetVal(false)
	s.True(engerr.IsNotFound(s.repo.Update(ctx, ch)))
}

func (s *RedisRepoTestSuite) TestDelete() {
	ctx := context.Background()

	s.mock.ExpectTxPipeline()
	s.mock.ExpectDel("character:char-1").SetVal(1)
	s.mock.ExpectSRem(allCharactersKey, "char-1").SetVal(1)
	s.mock.ExpectTxPipelineExec()
	s.NoError(s.repo.Delete(ctx, "char-1"))
}

func (s *RedisRepoTestSuite) TestList() {
	ctx := context.Background()
	_, data1 := s.stored("char-1")
	_, data2 := s.stored("char-2")

	s.mock.MatchExpectationsInOrder(false)
	s.mock.ExpectSMembers(allCharactersKey).SetVal([]string{"char-2", "char-1"})
	s.mock.ExpectGet("character:char-1").SetVal(data1)
	s.mock.ExpectGet("character:char-2").SetVal(data2)

	all, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("char-1", all[0].ID)
	s.Equal("char-2", all[1].ID)
}
