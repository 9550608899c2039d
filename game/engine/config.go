package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ValidateLevelConfig checks a level for the preconditions the router relies on
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	// Validate rings and elements
	if _, err := NewBoard(config.Elements); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	if CountElements(config, Line) == 0 {
		return fmt.Errorf("config validation: level must contain at least one line")
	}

	// Validate goals
	if len(config.Goals) == 0 {
		return fmt.Errorf("config validation: level must define at least one goal")
	}
	seen := make(map[int]bool)
	for i, goal := range config.Goals {
		if goal < 0 || goal >= NumPositions {
			return fmt.Errorf("config validation: goal %d slot %d out of range [0,%d)", i, goal, NumPositions)
		}
		if seen[goal] {
			return fmt.Errorf("config validation: goal slot %d listed twice", goal)
		}
		seen[goal] = true
	}

	// Validate format strings
	msgs := config.Messages
	templates := []struct {
		field string
		text  string
		args  []argKind
	}{
		{"rotated", msgs.Rotated, []argKind{intArg, intArg, intArg}},
		{"victory", msgs.Victory, []argKind{intArg}},
		{"ring_selected", msgs.RingSelected, []argKind{intArg}},
		{"ring_limit", msgs.RingLimit, []argKind{intArg}},
		{"bad_command", msgs.BadCommand, []argKind{stringArg}},
	}
	for _, tmpl := range templates {
		if tmpl.text == "" {
			continue
		}
		if err := checkTemplate(tmpl.text, tmpl.args); err != nil {
			return fmt.Errorf("config validation: messages.%s: %w", tmpl.field, err)
		}
	}

	return nil
}

type argKind int

const (
	intArg argKind = iota
	stringArg
)

// checkTemplate requires one printf verb per argument, in order, each
// compatible with the argument's kind. %% is a literal percent sign.
func checkTemplate(text string, args []argKind) error {
	var verbs []rune
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++
		for i < len(runes) && strings.ContainsRune("+-# 0123456789.", runes[i]) {
			i++
		}
		if i >= len(runes) {
			return fmt.Errorf("template %q ends inside a verb", text)
		}
		if runes[i] == '%' {
			continue
		}
		verbs = append(verbs, runes[i])
	}

	if len(verbs) != len(args) {
		return fmt.Errorf("template %q has %d verbs, want %d", text, len(verbs), len(args))
	}
	for i, verb := range verbs {
		allowed := "dv"
		if args[i] == stringArg {
			allowed = "qsv"
		}
		if !strings.ContainsRune(allowed, verb) {
			return fmt.Errorf("template %q verb %d is %%%c, want one of %%%s", text, i+1, verb, strings.Join(strings.Split(allowed, ""), " %"))
		}
	}
	return nil
}

// LoadLevelConfig loads and validates a level from a JSON file
func LoadLevelConfig(path string) (*LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config LevelConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateLevelConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// DefaultLevelConfig returns the built-in level. It is solved by turning the
// inner ring three slots left and the middle ring one slot right.
func DefaultLevelConfig() *LevelConfig {
	return &LevelConfig{
		Name:        "default",
		Description: "Two lines, two goals, one wall per ring",
		Elements: [][]Element{
			{{Type: Wall, Position: 8}},
			{{Type: Line, Position: 0}, {Type: Wall, Position: 9}},
			{{Type: Line, Position: 8}, {Type: Wall, Position: 4}},
		},
		Goals: []int{2, 7},
	}
}

// withDefaultMessages returns a copy of config with empty messages filled in
func withDefaultMessages(config *LevelConfig) *LevelConfig {
	c := *config
	if c.Messages.Welcome == "" {
		c.Messages.Welcome = "Rotate the rings until every goal is lit."
	}
	if c.Messages.Rotated == "" {
		c.Messages.Rotated = "Ring %d rotated. Goals lit: %d/%d"
	}
	if c.Messages.RingSelected == "" {
		c.Messages.RingSelected = "Ring %d selected"
	}
	if c.Messages.RingLimit == "" {
		c.Messages.RingLimit = "Can't move the selector past ring %d"
	}
	if c.Messages.Victory == "" {
		c.Messages.Victory = "All %d goals lit! You win!"
	}
	if c.Messages.BadCommand == "" {
		c.Messages.BadCommand = "Unknown command %q"
	}
	return &c
}
