// Package template renders notification messages with text/template and
// the sprig function library.
package template
