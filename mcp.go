package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const mcpInstructions = `Mastermind over MCP.

Guess a secret code of 4 digits, each between 1 and 6. After each guess the
server answers with black (right digit, right position) and white (right
digit, wrong position). Four blacks win; the game is then deleted.

Tools: new_game, guess, delete_game, status. Only one game is active at a
time; new_game replaces the current one.`

// gameStatus describes the active game, if any.
type gameStatus struct {
	Active bool   `json:"active" jsonschema:"whether a game is in progress"`
	GameID string `json:"game_id,omitempty" jsonschema:"id of the game in progress"`
}

// guessInput is the guess tool argument.
type guessInput struct {
	Guess string `json:"guess" jsonschema:"four digits, each between 1 and 6, e.g. 1234"`
}

// guessOutput is the guess tool result.
type guessOutput struct {
	GameID  string `json:"game_id" jsonschema:"game the guess was played in"`
	Black   int    `json:"black" jsonschema:"digits in the right position"`
	White   int    `json:"white" jsonschema:"right digits in the wrong position"`
	Won     bool   `json:"won" jsonschema:"true when all four digits are in place"`
	Deleted bool   `json:"deleted,omitempty" jsonschema:"after a win, whether the server confirmed deletion"`
}

// deleteOutput is the delete_game tool result.
type deleteOutput struct {
	GameID    string `json:"game_id"`
	Confirmed bool   `json:"confirmed" jsonschema:"whether the server confirmed deletion; the local game is cleared either way"`
}

// mcpFront exposes a session as MCP tools. Tool calls may arrive
// concurrently, so mu serialises access to the session.
type mcpFront struct {
	mu        sync.Mutex
	sess      *session
	log       *logger
	exitGrace time.Duration
	server    *mcp.Server
}

func newMCPFront(sess *session, log *logger, exitGrace time.Duration) *mcpFront {
	f := &mcpFront{sess: sess, log: log, exitGrace: exitGrace}
	f.server = mcp.NewServer(&mcp.Implementation{Name: appName, Version: appVersion}, &mcp.ServerOptions{
		Instructions: mcpInstructions,
	})

	mcp.AddTool(f.server, &mcp.Tool{
		Name:        "new_game",
		Description: "Start a new Mastermind game, replacing any game in progress",
	}, f.handleNewGame)
	mcp.AddTool(f.server, &mcp.Tool{
		Name:        "guess",
		Description: "Submit a 4-digit guess (digits 1-6) for the active game",
	}, f.handleGuess)
	mcp.AddTool(f.server, &mcp.Tool{
		Name:        "delete_game",
		Description: "Delete the active game",
	}, f.handleDeleteGame)
	mcp.AddTool(f.server, &mcp.Tool{
		Name:        "status",
		Description: "Report whether a game is active and its id",
	}, f.handleStatus)
	return f
}

// serve runs the MCP server on t until the client disconnects or ctx ends,
// then deletes any game left active.
func (f *mcpFront) serve(ctx context.Context, t mcp.Transport) error {
	err := f.server.Run(ctx, t)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	f.cleanup(ctx)
	return err
}

func (f *mcpFront) cleanup(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.sess.active() {
		return
	}
	dctx := context.WithoutCancel(ctx)
	if f.exitGrace > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(dctx, f.exitGrace)
		defer cancel()
	}
	_, _ = f.sess.end(dctx)
}

func (f *mcpFront) handleNewGame(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, gameStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, err := f.sess.start(ctx)
	if err != nil {
		return nil, gameStatus{}, fmt.Errorf("create game: %w", err)
	}
	return nil, gameStatus{Active: true, GameID: id}, nil
}

func (f *mcpFront) handleGuess(ctx context.Context, _ *mcp.CallToolRequest, in guessInput) (*mcp.CallToolResult, guessOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	res, err := f.sess.guess(ctx, in.Guess)
	switch {
	case errors.Is(err, errNoSession):
		return nil, guessOutput{}, errors.New("no active game: call new_game first")
	case errors.Is(err, errInvalidGuess):
		return nil, guessOutput{}, fmt.Errorf("invalid guess %q: use 4 digits between 1 and 6", in.Guess)
	case err != nil:
		return nil, guessOutput{}, fmt.Errorf("submit guess: %w", err)
	}

	out := guessOutput{
		GameID: res.GameID,
		Black:  res.Feedback.Black,
		White:  res.Feedback.White,
		Won:    res.Won,
	}
	if res.Won {
		out.Deleted = res.DeleteErr == nil
	}
	return nil, out, nil
}

func (f *mcpFront) handleDeleteGame(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, deleteOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, err := f.sess.end(ctx)
	if errors.Is(err, errNoSession) {
		return nil, deleteOutput{}, errors.New("no active game to delete")
	}
	return nil, deleteOutput{GameID: id, Confirmed: err == nil}, nil
}

func (f *mcpFront) handleStatus(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, gameStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil, gameStatus{Active: f.sess.active(), GameID: f.sess.gameID()}, nil
}
