// Package hcl loads graph definitions written in HCL into the
// format-agnostic config.Model.
//
// A definition may span several files; every .hcl file found under the
// given paths is parsed and its blocks are merged:
//
//	graph { max_nodes = 100 }
//	node "a" {
//	  type       = "basic/const"
//	  properties = { value = 5 }
//	}
//	link {
//	  from = "a.value"
//	  to   = "sum.a"
//	}
//
// Property and global values are arbitrary HCL expressions. They are
// evaluated once at load time against a context exposing the process
// environment as env.NAME, then converted to plain Go values.
package hcl
