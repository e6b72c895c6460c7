package main

import (
	"context"
	"errors"
	"fmt"
)

// Code shape accepted by the server.
const (
	codeLength = 4
	codeDigits = "123456"
)

var (
	errNoSession    = errors.New("no active game")
	errInvalidGuess = errors.New("invalid guess")
)

// feedback is the server's verdict on one guess: Black counts exact-position
// matches, White counts right digits in the wrong position.
type feedback struct {
	Black int `json:"black"`
	White int `json:"white"`
}

func (f feedback) won() bool { return f.Black == codeLength }

// gameAPI is the subset of the remote game server used by a session.
type gameAPI interface {
	createGame(ctx context.Context) (string, error)
	submitGuess(ctx context.Context, gameID, guess string) (feedback, error)
	deleteGame(ctx context.Context, gameID string) error
}

// validGuess reports whether s is exactly codeLength digits from codeDigits.
func validGuess(s string) bool {
	if len(s) != codeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < codeDigits[0] || s[i] > codeDigits[len(codeDigits)-1] {
			return false
		}
	}
	return true
}

// session owns the single active game id. It is not safe for concurrent use;
// callers serialise access.
type session struct {
	api gameAPI
	log *logger
	id  string
}

func newSession(api gameAPI, log *logger) *session {
	return &session{api: api, log: log}
}

// active reports whether a game is in progress.
func (s *session) active() bool { return s.id != "" }

// gameID returns the current game id, or "" when none is active.
func (s *session) gameID() string { return s.id }

// start creates a new game. A game already in progress is deleted first; a
// failed deletion is logged and does not block the new game.
func (s *session) start(ctx context.Context) (id string, err error) {
	if s.active() {
		prev, derr := s.end(ctx)
		if derr != nil {
			s.log.warnf("replacing game %s: delete failed (%s): %v", prev, failureKind(derr), derr)
		}
	}

	id, err = s.api.createGame(ctx)
	if err != nil {
		s.log.warnf("create game failed (%s): %v", failureKind(err), err)
		return "", err
	}
	s.id = id
	s.log.debugf("game %s created", id)
	return id, nil
}

// guessResult is the outcome of one accepted guess.
type guessResult struct {
	GameID    string
	Feedback  feedback
	Won       bool
	DeleteErr error
}

// guess validates g locally and submits it. A failed submission leaves the
// session untouched. On a win the game is deleted and the session cleared;
// DeleteErr reports the deletion outcome.
func (s *session) guess(ctx context.Context, g string) (guessResult, error) {
	if !s.active() {
		return guessResult{}, errNoSession
	}
	if !validGuess(g) {
		return guessResult{}, fmt.Errorf("%w: %q", errInvalidGuess, g)
	}

	id := s.id
	fb, err := s.api.submitGuess(ctx, id, g)
	if err != nil {
		s.log.warnf("guess %s for game %s failed (%s): %v", g, id, failureKind(err), err)
		return guessResult{}, err
	}
	s.log.debugf("game %s guess %s: black=%d white=%d", id, g, fb.Black, fb.White)

	res := guessResult{GameID: id, Feedback: fb, Won: fb.won()}
	if res.Won {
		_, res.DeleteErr = s.end(ctx)
	}
	return res, nil
}

// end deletes the active game and clears the session whatever the server
// answers. It returns the id that was cleared.
func (s *session) end(ctx context.Context) (string, error) {
	if !s.active() {
		return "", errNoSession
	}
	id := s.id
	s.id = ""

	if err := s.api.deleteGame(ctx, id); err != nil {
		s.log.warnf("delete game %s failed (%s): %v", id, failureKind(err), err)
		return id, err
	}
	s.log.infof("game %s deleted", id)
	return id, nil
}
