// Package watcher reports changes to suite files in a suites directory
// using fsnotify, debouncing bursts of writes to the same file.
package watcher
