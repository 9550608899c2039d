package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Command is a player input: rotate the active ring or move the ring selector
type Command string

const (
	RotateRight Command = "right" // active ring +1
	RotateLeft  Command = "left"  // active ring -1
	SelectOut   Command = "up"    // selector toward the outer ring
	SelectIn    Command = "down"  // selector toward the center
)

var ErrUnknownCommand = errors.New("unknown command")

var commandAliases = map[string]Command{
	"right": RotateRight,
	"cw":    RotateRight,
	"left":  RotateLeft,
	"ccw":   RotateLeft,
	"up":    SelectOut,
	"out":   SelectOut,
	"down":  SelectIn,
	"in":    SelectIn,
}

// ParseCommand normalizes a command string, accepting the cw/ccw/out/in aliases
func ParseCommand(raw string) (Command, error) {
	cmd, ok := commandAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, raw)
	}
	return cmd, nil
}

// IsRotation reports whether the command turns a ring
func (c Command) IsRotation() bool {
	return c == RotateRight || c == RotateLeft
}

// Delta is the signed step of the command: slots for rotations, rings for selection
func (c Command) Delta() int {
	switch c {
	case RotateRight, SelectOut:
		return 1
	case RotateLeft, SelectIn:
		return -1
	}
	return 0
}

// AllCommands lists the canonical commands in a stable order
func AllCommands() []string {
	return []string{string(RotateLeft), string(RotateRight), string(SelectOut), string(SelectIn)}
}
