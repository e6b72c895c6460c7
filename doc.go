// Package main implements mastermind, an interactive command-line client for
// a remote Mastermind game server.
//
// # Features
//
//   - Interactive loop: "new game", 4-digit guesses, "delete game", "exit"
//   - One active game per process, deleted on win, on exit and on interrupt
//   - MCP stdio server exposing the same game as tools for agents
//
// # Usage
//
//	mastermind [play] [--config PATH] [--debug]
//	mastermind mcp [--config PATH] [--debug]
//
// # Configuration
//
// Built-in defaults need no setup. An optional JSON file (mastermind.json or
// --config) and MASTERMIND_* environment variables override them; a .env file
// in the working directory is loaded first.
package main
