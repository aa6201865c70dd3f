package protocol

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/corekv/corekv/internal/core"
)

// ReadCommand reads one request line and decodes it. The returned error is
// only ever an I/O error (EOF on client hangup); a well-framed line that fails
// to decode comes back as an Unknown command, never an error.
func ReadCommand(r *bufio.Reader) (core.Command, error) {
	line, err := readLine(r)
	if err != nil {
		return core.Command{}, err
	}
	return ParseCommand(line), nil
}

// ParseCommand maps one request line onto the command set. Command words are
// case-insensitive; keys and values are not.
func ParseCommand(line string) core.Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return core.Command{Type: core.CmdUnknown}
	}
	switch strings.ToUpper(fields[0]) {
	case "SET":
		if len(fields) < 3 {
			break
		}
		return core.Command{
			Type:  core.CmdSet,
			Key:   fields[1],
			Value: parseValue(strings.Join(fields[2:], " ")),
		}
	case "GET":
		if len(fields) != 2 {
			break
		}
		return core.Command{Type: core.CmdGet, Key: fields[1]}
	case "FLUSHALL":
		if len(fields) != 1 {
			break
		}
		return core.Command{Type: core.CmdFlushAll}
	case "INCR":
		return parseDelta(core.CmdIncr, fields)
	case "DECR":
		return parseDelta(core.CmdDecr, fields)
	}
	return core.Command{Type: core.CmdUnknown}
}

// parseValue decides what a SET stores. An integer-shaped token becomes an
// Integer so a later INCR on it behaves the way redis users expect; anything
// else is stored verbatim as a String.
func parseValue(raw string) core.Value {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return core.Integer(n)
	}
	return core.String(raw)
}

func parseDelta(typ core.CommandType, fields []string) core.Command {
	switch len(fields) {
	case 2:
		return core.Command{Type: typ, Key: fields[1]}
	case 3:
		by, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return core.Command{Type: core.CmdUnknown}
		}
		return core.Command{Type: typ, Key: fields[1], By: by, HasBy: true}
	default:
		return core.Command{Type: core.CmdUnknown}
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}
