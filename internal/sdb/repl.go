/*
 * rv32sdb - REPL front-end.
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
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// ConsoleReader drives the interactive REPL: prompt, history, tab-completion
// over command names, clean exit on Ctrl-C/Ctrl-D (liner.ErrPromptAborted).
func ConsoleReader(m *Machine, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		return CompleteCmd(l)
	})

	for {
		input, err := line.Prompt("(sdb) ")
		if err == nil {
			line.AppendHistory(input)
			quit, cmdErr := ProcessCommand(input, m, out)
			if cmdErr != nil {
				fmt.Fprintln(out, "Error: "+cmdErr.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		slog.Error("sdb: error reading line", "error", err)
		return err
	}
}

// RunBatch feeds path's lines to the dispatcher one at a time, non-
// interactively. Blank lines and lines starting with '#' are skipped. It
// stops at the first "q" or the first command that halts the run (decode
// failure, diff-test mismatch), whichever comes first.
func RunBatch(path string, m *Machine, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		quit, err := ProcessCommand(line, m, out)
		if err != nil {
			fmt.Fprintln(out, "Error: "+err.Error())
		}
		if quit || m.Fatal() != nil {
			break
		}
	}
	return scanner.Err()
}
