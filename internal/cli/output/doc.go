// Package output renders console results as tables, JSON or YAML, and
// draws flash messages and the loading spinner.
package output
