// Package basic provides the general purpose node types: constants,
// watchers, console logging, the process environment and the bridges to
// graph globals.
package basic
