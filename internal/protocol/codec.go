package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/corekv/corekv/internal/core"
)

// WriteValue encodes one reply value. Ok and errors go out as RESP simple
// strings and errors, integers as ":n", stored strings as bulk strings so the
// payload survives any byte content.
func WriteValue(w *bufio.Writer, v core.Value) error {
	switch v.Kind {
	case core.ValueOk:
		_, err := w.WriteString("+OK\r\n")
		return err
	case core.ValueString:
		if _, err := w.WriteString(fmt.Sprintf("$%d\r\n", len(v.Str))); err != nil {
			return err
		}
		if _, err := w.WriteString(v.Str); err != nil {
			return err
		}
		_, err := w.WriteString("\r\n")
		return err
	case core.ValueInteger:
		_, err := w.WriteString(":" + strconv.FormatInt(v.Int, 10) + "\r\n")
		return err
	case core.ValueError:
		_, err := w.WriteString("-" + v.Str + "\r\n")
		return err
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidReply, int(v.Kind))
	}
}

// ReadValue parses one encoded reply back into a value. The cli, the bench
// tool and the tests use it; the server never does.
func ReadValue(r *bufio.Reader) (core.Value, error) {
	line, err := readLine(r)
	if err != nil {
		return core.Value{}, err
	}
	if line == "" {
		return core.Value{}, ErrInvalidReply
	}
	marker, rest := line[0], line[1:]
	switch marker {
	case '+':
		if rest != "OK" {
			return core.Value{}, fmt.Errorf("%w: %q", ErrInvalidReply, line)
		}
		return core.Ok(), nil
	case '-':
		return core.Error(rest), nil
	case ':':
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: %q", ErrInvalidReply, line)
		}
		return core.Integer(n), nil
	case '$':
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return core.Value{}, fmt.Errorf("%w: %q", ErrInvalidReply, line)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return core.Value{}, err
		}
		if err := expectCRLF(r); err != nil {
			return core.Value{}, err
		}
		return core.String(string(buf)), nil
	default:
		return core.Value{}, fmt.Errorf("%w: %q", ErrInvalidReply, line)
	}
}

// EncodeValue is WriteValue into a string, for transports that frame whole
// messages themselves (the websocket endpoint).
func EncodeValue(v core.Value) (string, error) {
	var sb strings.Builder
	w := bufio.NewWriter(&sb)
	if err := WriteValue(w, v); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func expectCRLF(r *bufio.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	if b == '\r' {
		b, err = r.ReadByte()
		if err != nil {
			return err
		}
	}
	if b != '\n' {
		return ErrInvalidReply
	}
	return nil
}
