// Command analyze prints a quick, human-readable report for each level in
// the levels directory: element counts, the initial route of every line, the
// lit goals, and the shortest command sequence that lights every goal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/wricardo/ringlight/game/engine"
)

// boardState is one node of the solution search: the net rotation of every
// ring plus the selected ring.
type boardState struct {
	offsets [engine.NumRings]int
	ring    int
}

type searchStep struct {
	prev    boardState
	command string
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "report routes and shortest solutions for Ringlight levels",
		ArgsUsage: "[level ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "levels-dir",
				Value:   "levels",
				Usage:   "directory holding level JSON files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.BoolFlag{
				Name:  "no-solve",
				Usage: "skip the shortest solution search",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("levels-dir")
			names := cmd.Args().Slice()
			if len(names) == 0 {
				found, err := levelNames(dir)
				if err != nil {
					return err
				}
				names = found
			}

			for _, name := range names {
				fmt.Fprintf(cmd.Writer, "\n=== Analyzing %s ===\n", name)
				config, err := engine.LoadLevelConfig(filepath.Join(dir, strings.TrimSuffix(name, ".json")+".json"))
				if err != nil {
					fmt.Fprintf(cmd.Writer, "Error loading level: %v\n", err)
					continue
				}
				if err := analyzeLevel(cmd.Writer, config, !cmd.Bool("no-solve")); err != nil {
					fmt.Fprintf(cmd.Writer, "Error analyzing level: %v\n", err)
				}
			}
			return nil
		},
	}
}

func levelNames(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no levels found in %s", dir)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

func analyzeLevel(w io.Writer, config *engine.LevelConfig, solve bool) error {
	eng, err := engine.NewEngine(config)
	if err != nil {
		return err
	}
	state := eng.GetState()

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	if config.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", config.Description)
	}
	fmt.Fprintf(w, "Lines: %d, Walls: %d, Goals: %v\n",
		engine.CountElements(config, engine.Line), engine.CountElements(config, engine.Wall), config.Goals)

	fmt.Fprintln(w, "Initial routes:")
	for _, line := range state.Lines {
		fmt.Fprintf(w, "  (%d,%d) -> (%d,%d) %s\n",
			line.Start.Ring, line.Start.Slot, line.Terminal.Ring, line.Terminal.Slot, line.Outcome)
	}
	fmt.Fprintf(w, "Lit goals: %v (%d/%d)\n", state.Illuminated, len(state.Illuminated), len(state.Goals))

	if state.Victory {
		fmt.Fprintln(w, "WARNING: level starts solved")
	}

	if !solve {
		return nil
	}

	commands, ok, err := shortestSolution(config, eng.GetActiveRing())
	if err != nil {
		return err
	}
	switch {
	case !ok:
		fmt.Fprintln(w, "WARNING: no command sequence lights every goal")
	case len(commands) == 0:
		fmt.Fprintln(w, "Shortest solution: none needed")
	default:
		fmt.Fprintf(w, "Shortest solution (%d moves): %s\n", len(commands), strings.Join(commands, " "))
	}
	return nil
}

// shortestSolution searches breadth first over every reachable board state.
// There are NumPositions^NumRings rotations times NumRings selector positions,
// so the search always terminates.
func shortestSolution(config *engine.LevelConfig, startRing int) ([]string, bool, error) {
	goals := engine.GoalSet(config.Goals)
	solved := func(s boardState) (bool, error) {
		board, err := engine.NewBoard(config.Elements)
		if err != nil {
			return false, err
		}
		for ring, offset := range s.offsets {
			board.Rotate(ring, offset)
		}
		return engine.ResolveGoals(board.Lines(), board.OccupancyIndex(), goals).Won, nil
	}

	start := boardState{ring: startRing}
	won, err := solved(start)
	if err != nil {
		return nil, false, err
	}
	if won {
		return []string{}, true, nil
	}

	visited := mapset.New[boardState]()
	visited.Put(start)
	parents := make(map[boardState]searchStep)

	pending := queue.New[boardState]()
	pending.Enqueue(start)

	for !pending.Empty() {
		current := pending.Dequeue()

		for _, raw := range engine.AllCommands() {
			next, ok := apply(current, raw)
			if !ok || visited.Has(next) {
				continue
			}
			visited.Put(next)
			parents[next] = searchStep{prev: current, command: raw}

			won, err := solved(next)
			if err != nil {
				return nil, false, err
			}
			if won {
				return unwind(parents, start, next), true, nil
			}
			pending.Enqueue(next)
		}
	}

	return nil, false, nil
}

// apply mirrors GameEngine.Move on a bare state. Selector moves past the
// innermost or outermost ring are rejected.
func apply(s boardState, raw string) (boardState, bool) {
	cmd, err := engine.ParseCommand(raw)
	if err != nil {
		return s, false
	}

	if cmd.IsRotation() {
		s.offsets[s.ring] = (s.offsets[s.ring] + cmd.Delta() + engine.NumPositions) % engine.NumPositions
		return s, true
	}

	target := s.ring + cmd.Delta()
	if target < 0 || target > engine.OuterRing {
		return s, false
	}
	s.ring = target
	return s, true
}

func unwind(parents map[boardState]searchStep, start, end boardState) []string {
	var commands []string
	for s := end; s != start; s = parents[s].prev {
		commands = append(commands, parents[s].command)
	}
	for i, j := 0, len(commands)-1; i < j; i, j = i+1, j-1 {
		commands[i], commands[j] = commands[j], commands[i]
	}
	return commands
}
