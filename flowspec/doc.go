// Package flowspec loads flow definitions from JSON and YAML files and
// discovers runnable flows in a directory.
package flowspec
