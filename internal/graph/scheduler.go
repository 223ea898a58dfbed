package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// runState belongs to one Start call. A tick goroutine whose runState is no
// longer current does nothing.
type runState struct {
	id     string
	done   chan struct{}
	exited chan struct{}
}

// Start arms a timer that runs one step per interval on a separate
// goroutine and fires OnStart on every node. It is a no-op when the graph
// is already running. The returned channel is closed once the timer
// goroutine has exited. Cancelling ctx stops the graph.
//
// Start takes the loop lock, so it must not be called from inside Do or
// from a node callback.
func (g *Graph) Start(ctx context.Context, interval time.Duration) <-chan struct{} {
	g.loop.Lock()
	defer g.loop.Unlock()

	if g.status == StatusRunning && g.run != nil {
		return g.run.exited
	}
	if interval <= 0 {
		interval = time.Millisecond
	}

	_, span := tracer.Start(ctx, "graph.Start", trace.WithAttributes(
		attribute.Int("nodes", len(g.nodes)),
		attribute.String("interval", interval.String()),
	))
	defer span.End()

	rs := &runState{
		id:     uuid.NewString()[:12],
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	g.status = StatusRunning
	g.run = rs
	g.SendEventToAllNodes(NodeEventStart, nil)
	g.startTime = g.now()
	g.globalTime = 0

	g.logger.Info("Graph started.", "run_id", rs.id, "interval", interval, "nodes", len(g.nodes))
	g.broadcast(EventStart)

	go g.tickLoop(ctx, rs, interval)
	return rs.exited
}

func (g *Graph) tickLoop(ctx context.Context, rs *runState, interval time.Duration) {
	defer close(rs.exited)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.done:
			return
		case <-ctx.Done():
			g.Do(func() {
				if g.run == rs {
					g.Stop()
				}
			})
			return
		case <-ticker.C:
			g.loop.Lock()
			if g.run != rs {
				g.loop.Unlock()
				return
			}
			_ = g.RunStep(1, false)
			g.loop.Unlock()
		}
	}
}

// Do runs fn between ticks. Goroutines other than the timer must use it to
// touch a running graph.
func (g *Graph) Do(fn func()) {
	g.loop.Lock()
	defer g.loop.Unlock()
	fn()
}

// Stop disarms the timer and fires OnStop on every node. A tick already in
// progress completes. Stop is a no-op on a stopped graph. While the timer
// is armed, callers outside node callbacks go through Do.
func (g *Graph) Stop() {
	if g.status != StatusRunning {
		return
	}
	g.status = StatusStopped
	runID := ""
	if g.run != nil {
		runID = g.run.id
		close(g.run.done)
		g.run = nil
	}
	g.SendEventToAllNodes(NodeEventStop, nil)

	g.logger.Info("Graph stopped.", "run_id", runID, "iteration", g.iteration)
	g.broadcast(EventStop)
}

// RunStep executes num steps over the cached executable nodes in mode
// ModeAlways, advancing the fixed clock after each.
//
// In the default mode a failing or panicking callback marks the graph as
// faulted and stops it; RunStep itself returns nil and the fault is
// available from LastFault. With unsafe set the error is returned, panics
// propagate and the graph keeps its status.
func (g *Graph) RunStep(num int, unsafe bool) error {
	if num <= 0 {
		num = 1
	}
	start := g.now()
	if !g.startTime.IsZero() {
		g.globalTime = start.Sub(g.startTime).Seconds()
	}

	var err error
	if unsafe {
		err = g.steps(num)
		if err != nil {
			g.metrics.recordStep(g.now().Sub(start), num, err)
			return err
		}
	} else {
		err = g.safeSteps(num)
	}

	elapsed := g.now().Sub(start)
	g.elapsedTime = elapsed.Seconds()
	g.iteration++
	g.metrics.recordStep(elapsed, num, err)

	if err == nil {
		g.faulted = false
		return nil
	}

	g.faulted = true
	g.lastFault = err
	g.logger.Error("Execution fault, stopping graph.", "iteration", g.iteration, "error", err)
	g.broadcast(EventFault, err)
	g.Stop()
	return nil
}

func (g *Graph) steps(num int) error {
	for range num {
		for _, n := range g.executable {
			// A callback earlier in this step may have removed n.
			if n.graph != g || n.Mode != ModeAlways {
				continue
			}
			g.executing = n
			if err := n.behavior.(Executor).OnExecute(n, nil); err != nil {
				g.executing = nil
				return executionError(n, err)
			}
		}
		g.executing = nil
		g.fixedTime += g.config.FixedTimeLapse
		if g.afterStep != nil {
			g.afterStep(g)
		}
	}
	if g.afterExecute != nil {
		g.afterExecute(g)
	}
	return nil
}

func (g *Graph) safeSteps(num int) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ee := &ExecutionError{Panic: r, Err: fmt.Errorf("panic: %v", r)}
		if n := g.executing; n != nil {
			ee.NodeID = n.id
			ee.NodeType = n.typ
		}
		g.executing = nil
		err = ee
	}()
	return g.steps(num)
}

// executionError attributes err to n unless it already carries a node.
func executionError(n *Node, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return err
	}
	return &ExecutionError{NodeID: n.id, NodeType: n.typ, Err: err}
}
