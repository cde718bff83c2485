/*
 * rv32sdb - Command dispatcher: a name -> handler table. Commands are
 * matched by exact name; the command set is small and fixed, so prefix
 * abbreviation buys nothing.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package sdb

import (
	"errors"
	"io"
	"log/slog"
)

// handler processes one command's argument text. It returns quit=true to
// end the REPL loop (the "q" command).
type handler func(args *cmdLine, m *Machine, out io.Writer) (quit bool, err error)

type cmdEntry struct {
	name string
	help string
	fn   handler
}

var cmdTable []cmdEntry

func init() {
	cmdTable = []cmdEntry{
		{name: "help", help: "help [cmd] - display information about commands", fn: cmdHelp},
		{name: "c", help: "c - continue execution until halted", fn: cmdContinue},
		{name: "q", help: "q - exit the debugger", fn: cmdQuit},
		{name: "si", help: "si [N] - step N instructions (default 1)", fn: cmdStep},
		{name: "info", help: "info r|w - print registers or watchpoints", fn: cmdInfo},
		{name: "x", help: "x N EXPR - print N words starting at EXPR", fn: cmdExamine},
		{name: "p", help: "p EXPR - evaluate EXPR", fn: cmdPrint},
		{name: "w", help: "w EXPR - set a watchpoint on EXPR", fn: cmdWatch},
		{name: "d", help: "d N - delete watchpoint N", fn: cmdDelete},
		{name: "t_expr", help: "t_expr FILE - run an expression test file", fn: cmdTExpr},
	}
}

// ErrUnknownCommand is returned for an input line whose leading word names
// no entry in cmdTable.
var ErrUnknownCommand = errors.New("sdb: unknown command")

func lookup(name string) *cmdEntry {
	for i := range cmdTable {
		if cmdTable[i].name == name {
			return &cmdTable[i]
		}
	}
	return nil
}

// ProcessCommand splits line on its leading word, dispatches to the matching
// handler with the remainder as argument text, and reports whether the REPL
// loop should exit.
func ProcessCommand(line string, m *Machine, out io.Writer) (quit bool, err error) {
	l := &cmdLine{line: line}
	name := l.getWord()
	if name == "" {
		return false, nil
	}

	e := lookup(name)
	if e == nil {
		return false, ErrUnknownCommand
	}

	slog.Debug("sdb command", "name", name)
	return e.fn(l, m, out)
}

// CompleteCmd returns every command name sharing commandLine's prefix, fed to
// liner.SetCompleter by the REPL.
func CompleteCmd(commandLine string) []string {
	var out []string
	for _, e := range cmdTable {
		if len(e.name) >= len(commandLine) && e.name[:len(commandLine)] == commandLine {
			out = append(out, e.name)
		}
	}
	return out
}
