package main

import (
	"bufio"
	"flag"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/corekv/corekv/internal/config"
	"github.com/corekv/corekv/internal/core"
	"github.com/corekv/corekv/internal/protocol"
)

func main() {
	addr := flag.String("addr", config.DefaultListenAddr, "server address")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	if flag.NArg() > 0 {
		if err := send(writer, strings.Join(flag.Args(), " ")); err != nil {
			fmt.Fprintf(os.Stderr, "send: %v\n", err)
			os.Exit(1)
		}
		val, err := protocol.ReadValue(reader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			os.Exit(1)
		}
		printValue(val)
		return
	}

	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "QUIT") || strings.EqualFold(line, "EXIT") {
			return
		}
		if err := send(writer, line); err != nil {
			fmt.Fprintf(os.Stderr, "send: %v\n", err)
			continue
		}
		val, err := protocol.ReadValue(reader)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read: %v\n", err)
			return
		}
		printValue(val)
	}
}

func send(w *bufio.Writer, line string) error {
	if _, err := w.WriteString(line + "\n"); err != nil {
		return err
	}
	return w.Flush()
}

func printValue(v core.Value) {
	switch v.Kind {
	case core.ValueOk:
		fmt.Println("OK")
	case core.ValueString:
		fmt.Println(v.Str)
	case core.ValueInteger:
		fmt.Println(v.Int)
	case core.ValueError:
		fmt.Println("(error)", v.Str)
	default:
		fmt.Println("(error) unknown reply")
	}
}
