// Package protocol is the wire boundary: it decodes request lines into core
// commands and encodes core values into reply bytes. It owns no semantics;
// malformed input becomes an Unknown command so the dispatcher stays the one
// place that decides what a command means.
package protocol

import "errors"

var ErrInvalidReply = errors.New("protocol: invalid reply")
