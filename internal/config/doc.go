// Package config defines the runtime settings of abnmatch: where the store
// lives, how the language model is reached, and how large each matching pass
// may grow. Values come from defaults, an optional YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config
