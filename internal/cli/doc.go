// Package cli formats command output for suitectl.
//
// Every listing command supports four output formats selected with -o:
// table (default), wide, json and yaml. Tables are rendered with
// go-pretty in a borderless kubectl-like style so they can be piped to
// grep or awk; json and yaml print the same JSON-tagged structures.
package cli
