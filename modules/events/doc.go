// Package events provides node types that produce and route triggers.
//
// Time is virtual: events/timer measures intervals on the graph's fixed
// clock, which advances by Config.FixedTimeLapse per step, so a run is
// reproducible regardless of wall time.
package events
