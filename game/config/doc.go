// Package config provides level and process configuration for the Ringlight server.
//
// The config package handles:
//   - Loading levels from JSON files with caching
//   - Level validation at load time
//   - Default level selection and fallback
//   - Level discovery and listing
//   - Environment settings (LoadSettings)
//
// Level Format:
//
// Levels are stored as JSON files in the levels directory. Each level defines
// the elements of the three rings (innermost first), the goal gate slots, and
// optional message templates:
//
//	{
//	  "name": "easy",
//	  "description": "One line, one wall, one goal",
//	  "elements": [[], [{"type": "wall", "position": 0}], [{"type": "line", "position": 0}]],
//	  "goals": [6]
//	}
//
// Usage:
//
//	manager, err := config.NewManager("levels", "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	level, err := manager.LoadConfig("easy")
//	levels, err := manager.ListConfigs()
//
// When the requested default is missing the first valid level in the directory
// is used, and the built-in level when the directory has none.
package config
