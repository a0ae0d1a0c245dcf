// Package config provides the configuration of the rope engine.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← ROPECORE_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ropecore.toml or ropecore.yaml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Environment variables map onto settings by section and camel-cased
// name: ROPECORE_NATIVE_MMAP_THRESHOLD sets native.mmapThreshold.
//
// A loaded Config builds the runtime pieces it describes: the logger, the
// aliasing guard options, the native arena options, the encoding registry,
// the rope cache and the script state options. Watch reloads the file when
// it changes.
//
// # Sub-packages
//
//   - loader: raw TOML, YAML and environment loading into maps
//   - watcher: fsnotify based change notification for config files
package config
