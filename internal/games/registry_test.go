package games

import (
	"fmt"
	"testing"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (s *RegistryTestSuite) SetupTest() {
	s.registry = NewRegistry()
}

func (s *RegistryTestSuite) TestNewRegistry() {
	registry := NewRegistry()

	s.NotNil(registry, "Registry should not be nil")
	s.Empty(registry.List(""), "Registry should start empty")
}

func (s *RegistryTestSuite) TestRegister() {
	err := s.registry.Register(Entry{ID: "Test_Game", Name: "Test Game", Playable: true})
	s.NoError(err, "Should register game without error")

	entry, err := s.registry.Get("test_game")
	s.NoError(err)
	s.Equal("Test Game", entry.Name)
	s.True(entry.Playable)
}

func (s *RegistryTestSuite) TestRegisterDuplicate() {
	s.Require().NoError(s.registry.Register(Entry{ID: "test_game"}))

	err := s.registry.Register(Entry{ID: "TEST_GAME"})

	s.Error(err, "Should return error when registering duplicate game")
	s.True(types.IsGameError(err, types.ErrInvalidAction), "Should return InvalidAction error")
}

func (s *RegistryTestSuite) TestRegisterMissingID() {
	err := s.registry.Register(Entry{Name: "Nameless"})

	s.True(types.IsGameError(err, types.ErrInvalidArgument))
}

func (s *RegistryTestSuite) TestGetNotFound() {
	entry, err := s.registry.Get("nonexistent_game")

	s.Error(err, "Should return error for nonexistent game")
	s.Empty(entry.ID)
	s.True(types.IsGameError(err, types.ErrGameNotFound), "Should return GameNotFound error")
}

func (s *RegistryTestSuite) TestListKeepsOrder() {
	ids := []string{"game1", "game2", "game3"}
	for _, id := range ids {
		s.Require().NoError(s.registry.Register(Entry{ID: id, Category: "cards"}))
	}

	listed := s.registry.List("")
	s.Require().Len(listed, 3)
	for i, e := range listed {
		s.Equal(ids[i], e.ID)
	}

	listed[0].Name = "changed"
	entry, _ := s.registry.Get("game1")
	s.Empty(entry.Name, "List should return a copy")
}

func (s *RegistryTestSuite) TestListByCategory() {
	lobby := DefaultLobby()

	blackjack := lobby.List("blackjack")
	s.Len(blackjack, 2)
	s.Len(lobby.List("all"), 4)
	s.Empty(lobby.List("roulette"))
}

func (s *RegistryTestSuite) TestDefaultLobbyPlayable() {
	lobby := DefaultLobby()

	for id, want := range map[string]bool{
		"blackjack":    true,
		"blackjack-3d": true,
		"poker":        false,
		"baccarat":     false,
	} {
		got, err := lobby.Playable(id)
		s.NoError(err)
		s.Equal(want, got, id)
	}

	_, err := lobby.Playable("roulette")
	s.True(types.IsGameError(err, types.ErrGameNotFound))
}

func (s *RegistryTestSuite) TestConcurrentAccess() {
	done := make(chan bool)
	numGoroutines := 10
	numOperations := 100

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			for j := 0; j < numOperations; j++ {
				if j%2 == 0 {
					_ = s.registry.Register(Entry{ID: fmt.Sprintf("game_%d_%d", id, j)})
				} else {
					s.registry.List("")
				}
			}
			done <- true
		}(i)
	}

	for i := 0; i < numGoroutines; i++ {
		<-done
	}

	s.Len(s.registry.List(""), numGoroutines*numOperations/2)
}
