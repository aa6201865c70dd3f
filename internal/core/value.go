package core

import "fmt"

type ValueKind int

const (
	ValueOk ValueKind = iota
	ValueString
	ValueInteger
	ValueError
)

// Value is both what the store holds and what the dispatcher returns.
// Ok and Error values are transient results and are never stored.
type Value struct {
	Kind ValueKind
	Str  string
	Int  int64
}

func Ok() Value {
	return Value{Kind: ValueOk}
}

func String(s string) Value {
	return Value{Kind: ValueString, Str: s}
}

func Integer(n int64) Value {
	return Value{Kind: ValueInteger, Int: n}
}

func Error(msg string) Value {
	return Value{Kind: ValueError, Str: msg}
}

func (v Value) IsError() bool {
	return v.Kind == ValueError
}

func (v Value) String() string {
	switch v.Kind {
	case ValueOk:
		return "OK"
	case ValueString:
		return v.Str
	case ValueInteger:
		return fmt.Sprintf("%d", v.Int)
	case ValueError:
		return "ERR " + v.Str
	default:
		return fmt.Sprintf("value(kind=%d)", int(v.Kind))
	}
}
