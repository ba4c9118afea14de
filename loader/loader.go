// Package loader parses the textual program file format (§6) and writes
// the decoded words into a machine's memory.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"decvm/mem"
	"decvm/word"
)

// UserMemStart is the first address of user space; _start must name an
// address at or beyond it.
const UserMemStart = 300

// Result reports what a successful Load did, for the shell's "load"
// command to echo back to the user.
type Result struct {
	Name               string
	StartAddress       int
	InstructionsLoaded int
	DeclaredWordCount  int
}

// Load reads a program in the line-oriented text format from r and writes
// each decoded instruction word into bus starting at the declared
// _start address. It returns the count of instructions loaded, the start
// address and the declared name and word count in the Result; Load itself
// never touches a CPU, only the Bus, so the shell/machine layer is
// responsible for applying RB/RL/SP/RX after a successful load.
func Load(r io.Reader, bus *mem.Bus) (Result, error) {
	scanner := bufio.NewScanner(r)

	var res Result
	haveStart := false
	loaded := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "_start"):
			n, err := parseIntField(line, "_start")
			if err != nil {
				return Result{}, fmt.Errorf("loader: invalid _start line %q: %w", line, err)
			}
			if n < UserMemStart {
				return Result{}, fmt.Errorf("loader: _start %d falls in reserved OS memory (< %d)", n, UserMemStart)
			}
			res.StartAddress = n
			haveStart = true

		case strings.HasPrefix(line, ".NumeroPalabras"):
			n, err := parseIntField(line, ".NumeroPalabras")
			if err == nil {
				res.DeclaredWordCount = n
			}

		case strings.HasPrefix(line, ".NombreProg"):
			res.Name = strings.TrimSpace(strings.TrimPrefix(line, ".NombreProg"))

		case strings.HasPrefix(line, "."):
			continue // section delimiter

		case strings.HasPrefix(line, "/"):
			continue // comment

		default:
			v, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				continue
			}
			if !haveStart {
				return Result{}, fmt.Errorf("loader: instruction line %q precedes _start", line)
			}
			addr := res.StartAddress + loaded
			if addr >= mem.Size {
				return Result{}, fmt.Errorf("loader: program exceeds available memory at word %d", loaded)
			}
			if err := bus.Write(addr, word.FromInt(v)); err != nil {
				return Result{}, err
			}
			loaded++
		}
	}

	if err := scanner.Err(); err != nil {
		return Result{}, err
	}
	if !haveStart {
		return Result{}, fmt.Errorf("loader: program file is missing _start")
	}

	res.InstructionsLoaded = loaded
	return res, nil
}

func parseIntField(line, prefix string) (int, error) {
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) == 0 {
		return 0, fmt.Errorf("missing value after %s", prefix)
	}
	return strconv.Atoi(fields[0])
}
