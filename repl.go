package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Interactive commands, matched case-insensitively.
const (
	cmdNewGame    = "new game"
	cmdDeleteGame = "delete game"
	cmdExit       = "exit"
	cmdHelp       = "help"
)

// Messages printed by the command loop.
const (
	msgNoActiveGame   = "No active game. Type 'new game' to start a new game."
	msgNothingDelete  = "No active game to delete."
	msgInvalidInput   = "Invalid input. Use 4 digits between 1–6, or type 'delete game' or 'exit'."
	msgCreateFailed   = "Failed to create a new game."
	msgGuessFailed    = "Failed to submit guess."
	msgWin            = "You win!"
	msgAnotherGame    = "Type 'new game' to start another game."
	msgStartGuessing  = "Start guessing!"
	fmtGameCreated    = "New game created. Game ID: %s"
	fmtFeedback       = "Result → Black: %d, White: %d"
	fmtDeleted        = "Game %s deleted successfully"
	fmtDeleteUnproved = "Could not confirm deletion of game %s on the server."
)

// repl reads one command per line and drives a session. Every command runs
// to completion before the next line is read.
type repl struct {
	sess      *session
	in        io.Reader
	out       io.Writer
	log       *logger
	spin      *spinner
	exitGrace time.Duration
}

func newREPL(sess *session, in io.Reader, out io.Writer, log *logger, exitGrace time.Duration) *repl {
	return &repl{
		sess:      sess,
		in:        in,
		out:       out,
		log:       log,
		spin:      newSpinner(out),
		exitGrace: exitGrace,
	}
}

// maxLineLen caps how much of one input line is kept. The rest of a longer
// line is discarded and the whole line is handled as one command.
const maxLineLen = 4096

// line is one read from input; err is set once on a read failure.
type line struct {
	text string
	err  error
}

// readLines feeds input lines to a channel so the loop can also watch ctx.
// The channel is closed at end of input; closing done stops the reader.
func (r *repl) readLines(done <-chan struct{}) <-chan line {
	ch := make(chan line)
	send := func(l line) bool {
		select {
		case ch <- l:
			return true
		case <-done:
			return false
		}
	}
	go func() {
		defer close(ch)
		br := bufio.NewReader(r.in)
		for {
			text, err := readLine(br, maxLineLen)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					send(line{err: err})
				}
				return
			}
			if !send(line{text: text}) {
				return
			}
		}
	}()
	return ch
}

// readLine returns the next line without its line ending, keeping at most
// limit bytes of it.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var buf []byte
	for {
		chunk, more, err := br.ReadLine()
		if err != nil {
			if len(buf) > 0 {
				return string(buf), nil
			}
			return "", err
		}
		if n := limit - len(buf); n > 0 {
			buf = append(buf, chunk[:min(n, len(chunk))]...)
		}
		if !more {
			return string(buf), nil
		}
	}
}

// run prints the banner and processes commands until exit, end of input or
// ctx cancellation. An active game is deleted before returning.
func (r *repl) run(ctx context.Context) error {
	r.printBanner()
	done := make(chan struct{})
	defer close(done)
	lines := r.readLines(done)

	for {
		r.print("\n> ")

		var l line
		var ok bool
		select {
		case <-ctx.Done():
			r.println("")
			r.shutdown(ctx)
			return nil
		case l, ok = <-lines:
		}
		if !ok {
			r.println("")
			r.shutdown(ctx)
			return nil
		}
		if l.err != nil {
			r.shutdown(ctx)
			return fmt.Errorf("read input: %w", l.err)
		}

		if quit := r.dispatch(ctx, l.text); quit {
			return nil
		}
		if ctx.Err() != nil {
			r.shutdown(ctx)
			return nil
		}
	}
}

// dispatch handles one input line and reports whether the loop should stop.
func (r *repl) dispatch(ctx context.Context, raw string) bool {
	input := strings.TrimSpace(raw)
	r.log.debugf("command %q (active game: %t)", input, r.sess.active())

	switch strings.ToLower(input) {
	case cmdExit:
		r.shutdown(ctx)
		return true
	case cmdDeleteGame:
		r.deleteGame(ctx)
	case cmdNewGame:
		r.newGame(ctx)
	case cmdHelp:
		r.printBanner()
	default:
		r.guess(ctx, input)
	}
	return false
}

func (r *repl) newGame(ctx context.Context) {
	if r.sess.active() {
		r.spin.Start("Deleting game...")
		id, err := r.sess.end(ctx)
		r.spin.Stop()
		r.reportDelete(id, err)
	}

	r.spin.Start("Creating game...")
	id, err := r.sess.start(ctx)
	r.spin.Stop()
	if err != nil {
		r.println(msgCreateFailed)
		return
	}
	r.printf(fmtGameCreated+"\n", id)
	r.println(msgStartGuessing)
}

func (r *repl) guess(ctx context.Context, input string) {
	if !r.sess.active() {
		r.println(msgNoActiveGame)
		return
	}
	if !validGuess(input) {
		r.println(msgInvalidInput)
		return
	}

	r.spin.Start("Checking guess...")
	res, err := r.sess.guess(ctx, input)
	r.spin.Stop()
	if err != nil {
		r.println(msgGuessFailed)
		return
	}

	r.printf(fmtFeedback+"\n", res.Feedback.Black, res.Feedback.White)
	if res.Won {
		r.println(msgWin)
		r.reportDelete(res.GameID, res.DeleteErr)
		r.println(msgAnotherGame)
	}
}

func (r *repl) deleteGame(ctx context.Context) {
	if !r.sess.active() {
		r.println(msgNothingDelete)
		return
	}
	r.spin.Start("Deleting game...")
	id, err := r.sess.end(ctx)
	r.spin.Stop()
	r.reportDelete(id, err)
}

// shutdown deletes an active game, waiting at most exitGrace (0 waits until
// the request completes). It runs even when ctx is already cancelled.
func (r *repl) shutdown(ctx context.Context) {
	if !r.sess.active() {
		return
	}
	dctx := context.WithoutCancel(ctx)
	if r.exitGrace > 0 {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(dctx, r.exitGrace)
		defer cancel()
	}
	id, err := r.sess.end(dctx)
	r.reportDelete(id, err)
}

func (r *repl) reportDelete(id string, err error) {
	if err != nil {
		r.printf(fmtDeleteUnproved+"\n", id)
		return
	}
	r.printf(fmtDeleted+"\n", id)
}

func (r *repl) printBanner() {
	r.println("Welcome to Mastermind")
	r.println("Commands:")
	r.println("  new game    → start a new game")
	r.println("  delete game → delete the current game")
	r.println("  exit        → quit the program")
	r.println("  help        → show this help")
	r.println("Enter 4-digit guesses when a game is active (digits 1–6)")
}

func (r *repl) print(s string)                 { _, _ = fmt.Fprint(r.out, s) }
func (r *repl) println(s string)               { _, _ = fmt.Fprintln(r.out, s) }
func (r *repl) printf(format string, a ...any) { _, _ = fmt.Fprintf(r.out, format, a...) }
