// Package cli provides the plain line-oriented terminal interface for the
// glyph generator, used for scripts, pipes, and --plain.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/glyphcore/session"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI over stdin and stdout.
func New(s *session.Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run shows the intro, then loops: prompt, input, dispatch, output.
// It returns when input ends or /quit is entered.
func (c *CLI) Run(ctx context.Context) {
	defs := c.Session.Defs
	if defs.Content.Intro != "" {
		c.printLine(defs.Content.Intro)
		c.printLine("")
	}
	c.printResult(c.Session.Engine.Step("types").Output)

	scanner := bufio.NewScanner(c.In)
	for {
		if ctx.Err() != nil {
			return
		}
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		reply := c.Session.Submit(ctx, input)
		if reply.System && len(reply.Lines) == 1 {
			c.printSystem(reply.Lines[0])
		} else {
			c.printResult(reply.Lines)
		}
		if reply.Quit {
			return
		}
	}
}

func (c *CLI) printResult(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
