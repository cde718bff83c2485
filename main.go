/*
 * rv32sdb - Main process: flag parsing, image loading, and the debugger
 * session wiring.
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

package main

import (
	"io"
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	"github.com/rcornwell/rv32sdb/internal/cpu"
	"github.com/rcornwell/rv32sdb/internal/memory"
	"github.com/rcornwell/rv32sdb/internal/sdb"
	"github.com/rcornwell/rv32sdb/util/logger"
)

var Logger *slog.Logger

func main() {
	optImage := getopt.StringLong("image", 'i', "", "Guest binary image to load at address 0")
	optBatch := getopt.StringLong("batch", 'b', "", "Batch file of sdb commands to run non-interactively")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optRVE := getopt.BoolLong("rve", 0, "Enable the 16-register RVE option")
	optNoDiffTest := getopt.BoolLong("nodifftest", 0, "Disable the reference-model differential test")
	optDebug := getopt.BoolLong("debug", 'd', "Mirror debug-level log lines to stderr")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file io.Writer
	if *optLogFile != "" {
		f, err := os.Create(*optLogFile)
		if err != nil {
			os.Exit(1)
		}
		file = f
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	Logger = slog.New(logger.NewHandler(file, programLevel, *optDebug))
	slog.SetDefault(Logger)

	Logger.Info("rv32sdb started")

	if *optNoDiffTest {
		Logger.Debug("differential testing disabled by -nodifftest")
	}

	mem := memory.New(cpu.DefaultMemSize)
	if *optImage != "" {
		data, err := os.ReadFile(*optImage)
		if err != nil {
			Logger.Error("can't read image", "path", *optImage, "error", err)
			os.Exit(1)
		}
		if err := mem.LoadBytes(0, data); err != nil {
			Logger.Error("can't load image", "path", *optImage, "error", err)
			os.Exit(1)
		}
	}

	core := cpu.New(*optRVE)
	core.Reset(0)

	// No reference-model backend ships with this repo, so the
	// differential-test hook is always disabled in practice; -nodifftest
	// exists so a build wiring in a real backend (spike/qemu
	// co-simulation) has a flag to turn it off.
	machine := sdb.New(core, mem, nil)

	var err error
	if *optBatch != "" {
		err = sdb.RunBatch(*optBatch, machine, os.Stdout)
	} else {
		err = sdb.ConsoleReader(machine, os.Stdout)
	}
	if err != nil {
		Logger.Error("sdb session ended with error", "error", err)
		os.Exit(1)
	}

	// A fatal run (decode failure, memory fault, diff-test mismatch) or a
	// guest-reported failure (ebreak with a0 != 0) exits non-zero even
	// when the REPL itself wound down cleanly.
	if machine.Fatal() != nil || (core.Halted && core.HaltVal != 0) {
		os.Exit(1)
	}
	os.Exit(0)
}
