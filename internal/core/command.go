package core

type CommandType int

// CmdUnknown is deliberately the zero value: anything the decoder does not
// recognize dispatches to the unknown-command arm instead of a random one.
const (
	CmdUnknown CommandType = iota
	CmdSet
	CmdGet
	CmdFlushAll
	CmdIncr
	CmdDecr
)

type Command struct {
	Type  CommandType
	Key   string
	Value Value // Set only

	// Incr/Decr amount. HasBy distinguishes "INCR k" from "INCR k 1".
	By    int64
	HasBy bool
}
