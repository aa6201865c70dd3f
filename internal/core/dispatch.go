package core

// Store is the entire database state. It is owned by the actor goroutine and
// must never be touched from anywhere but a Dispatch call made by that goroutine.
type Store map[string]Value

// Dispatch executes one command against the store and returns the reply value.
// Every failure is an ordinary Error value; Dispatch never panics and never blocks.
func Dispatch(st Store, cmd Command) Value {
	switch cmd.Type {
	case CmdSet:
		st[cmd.Key] = cmd.Value
		return Ok()
	case CmdGet:
		v, ok := st[cmd.Key]
		if !ok {
			return Error("(nil)")
		}
		return v
	case CmdFlushAll:
		for k := range st {
			delete(st, k)
		}
		return Ok()
	case CmdIncr:
		return applyDelta(st, cmd, +1)
	case CmdDecr:
		return applyDelta(st, cmd, -1)
	default:
		return Error("Unknown core cmd")
	}
}

// applyDelta is the shared INCR/DECR read-modify-write. A missing key is seeded
// with sign*1 regardless of the requested amount; the amount only applies to
// keys that already hold an integer. Changing that would be a behavior break
// for existing clients, so it stays.
func applyDelta(st Store, cmd Command, sign int64) Value {
	prev, ok := st[cmd.Key]
	if !ok {
		seeded := Integer(sign)
		st[cmd.Key] = seeded
		return seeded
	}
	if prev.Kind != ValueInteger {
		return Error("NaN")
	}
	by := int64(1)
	if cmd.HasBy {
		by = cmd.By
	}
	next := Integer(prev.Int + sign*by)
	st[cmd.Key] = next
	return next
}
