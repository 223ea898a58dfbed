// Package math provides arithmetic node types.
package math
