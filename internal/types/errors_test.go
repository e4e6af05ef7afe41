package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (s *ErrorTestSuite) TestNewGameError() {
	err := NewGameError(ErrInsufficientFunds, "not enough points")

	s.Equal(ErrInsufficientFunds, err.Code, "Error code should match")
	s.Equal("not enough points", err.Message, "Error message should match")
	s.Nil(err.Err, "Underlying error should be nil")
}

func (s *ErrorTestSuite) TestWrapError() {
	underlying := errors.New("connection refused")

	err := WrapError(ErrNetworkError, "backend unreachable", underlying)

	s.Equal(ErrNetworkError, err.Code)
	s.Equal(underlying, err.Err)
	s.True(errors.Is(err, underlying), "errors.Is should see the wrapped cause")
}

func (s *ErrorTestSuite) TestErrorString() {
	testCases := []struct {
		name     string
		err      *GameError
		expected string
	}{
		{
			name:     "Simple error",
			err:      NewGameError(ErrInvalidBet, "bet must be positive"),
			expected: "INVALID_BET: bet must be positive",
		},
		{
			name:     "Wrapped error",
			err:      WrapError(ErrDatabaseError, "save profile", errors.New("disk full")),
			expected: "DATABASE_ERROR: save profile (disk full)",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, tc.err.Error())
		})
	}
}

func (s *ErrorTestSuite) TestIsGameErrorThroughWrapping() {
	gameErr := NewGameError(ErrInvalidCredentials, "wrong password")
	wrapped := fmt.Errorf("login: %w", gameErr)

	testCases := []struct {
		name     string
		err      error
		code     ErrorCode
		expected bool
	}{
		{"direct match", gameErr, ErrInvalidCredentials, true},
		{"wrapped match", wrapped, ErrInvalidCredentials, true},
		{"wrong code", wrapped, ErrUserExists, false},
		{"plain error", errors.New("boom"), ErrInvalidCredentials, false},
		{"nil error", nil, ErrInvalidCredentials, false},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.expected, IsGameError(tc.err, tc.code))
		})
	}
}

func (s *ErrorTestSuite) TestErrorsIsMatchesByCode() {
	err := fmt.Errorf("round: %w", NewGameError(ErrInvalidState, "round already ended"))

	s.True(errors.Is(err, NewGameError(ErrInvalidState, "")))
	s.False(errors.Is(err, NewGameError(ErrInvalidBet, "")))
}

func (s *ErrorTestSuite) TestCodeOf() {
	s.Equal(ErrSyncFailed, CodeOf(WrapError(ErrSyncFailed, "sync", errors.New("timeout"))))
	s.Equal(ErrInternalError, CodeOf(errors.New("anything")))
}
