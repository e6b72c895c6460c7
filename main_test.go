package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	for _, arg := range []string{"help", "-h", "--help"} {
		var out bytes.Buffer
		err := run(context.Background(), quietLogger(), []string{arg}, strings.NewReader(""), &out)
		require.NoError(t, err, arg)
		assert.Contains(t, out.String(), "Usage:")
		assert.Contains(t, out.String(), "mastermind mcp")
	}
}

func TestRun_SubcommandHelp(t *testing.T) {
	for _, args := range [][]string{{"play", "--help"}, {"play", "-h"}, {"mcp", "-h"}, {"-help"}} {
		var out bytes.Buffer
		err := run(context.Background(), quietLogger(), args, strings.NewReader(""), &out)
		require.NoError(t, err, args)
		assert.Contains(t, out.String(), "Usage:", args)
		assert.NotContains(t, out.String(), "Welcome to Mastermind", args)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), quietLogger(), []string{"solve"}, strings.NewReader(""), io.Discard)
	assert.EqualError(t, err, "unknown command: solve")
}

func TestRun_PlayAgainstServer(t *testing.T) {
	fs, srv := newFakeGameServer(t, "6611")
	path := writeConfig(t, `{"base_url": "`+srv.URL+`", "request_timeout": "5s"}`)

	var out bytes.Buffer
	in := strings.NewReader("NEW GAME\n6611\nexit\n")
	require.NoError(t, run(context.Background(), quietLogger(), []string{"play", "--config", path}, in, &out))

	assert.Contains(t, out.String(), "You win!")
	assert.Equal(t, 0, fs.liveGames())
}

func TestRun_FlagsWithoutSubcommand(t *testing.T) {
	_, srv := newFakeGameServer(t, "1234")
	path := writeConfig(t, `{"base_url": "`+srv.URL+`"}`)

	var out bytes.Buffer
	err := run(context.Background(), quietLogger(), []string{"--config", path, "--debug"}, strings.NewReader("exit\n"), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Welcome to Mastermind")
}

func TestRun_BadConfig(t *testing.T) {
	path := writeConfig(t, `{"base_url": "not a url"}`)
	err := run(context.Background(), quietLogger(), []string{"play", "--config", path}, strings.NewReader(""), io.Discard)
	assert.Error(t, err)

	err = run(context.Background(), quietLogger(), []string{"play", "--nope"}, strings.NewReader(""), io.Discard)
	assert.Error(t, err)

	err = run(context.Background(), quietLogger(), []string{"play", "extra"}, strings.NewReader(""), io.Discard)
	assert.Error(t, err)
}
