// Package log defines the small injectable logging surface used by the
// engine to report tolerated failures (the NoCodec-during-choice-
// resolution case in spec §7), without forcing
// a concrete logging library on every caller.
package log

import "fmt"

// Logger is the engine's logging collaborator. Hosts may satisfy it with
// the standard library's *log.Logger, zap's SugaredLogger, or anything
// else shaped like Printf.
type Logger interface {
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
}

// Nop discards every message. It is the default Logger when none is
// supplied to driver.New, so the engine is silent unless a caller opts in.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Warnf(string, ...any)  {}

// Std writes to the standard "fmt" Printf-family output via a prefix;
// useful for the cmd/boxctl demo and ad-hoc debugging.
type Std struct {
	Prefix string
}

func (s Std) Debugf(format string, args ...any) {
	fmt.Printf(s.Prefix+"debug: "+format+"\n", args...)
}

func (s Std) Warnf(format string, args ...any) {
	fmt.Printf(s.Prefix+"warn: "+format+"\n", args...)
}
