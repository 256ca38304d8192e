package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/effects"
	"github.com/dynroute/dynroute/engine"
	"github.com/dynroute/dynroute/geom"
)

// Scenario is the YAML description of one routing run: a graph,
// optional effects, an optional clock advance, and a route request.
type Scenario struct {
	Nodes   []nodeYAML   `yaml:"nodes"`
	Edges   []edgeYAML   `yaml:"edges"`
	Effects []effectYAML `yaml:"effects"`
	Advance float64      `yaml:"advance"`
	Route   routeYAML    `yaml:"route"`
}

type nodeYAML struct {
	ID string  `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

type edgeYAML struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
	// TwoWay also adds the reverse edge with the same weight.
	TwoWay bool `yaml:"two_way"`
}

type effectYAML struct {
	Kind      string        `yaml:"kind"` // congestion | blockage | signal
	Intensity string        `yaml:"intensity"`
	Segment   segmentYAML   `yaml:"segment"`
	At        pointYAML     `yaml:"at"`
	Durations durationsYAML `yaml:"durations"`
}

type segmentYAML struct {
	A pointYAML `yaml:"a"`
	B pointYAML `yaml:"b"`
}

type pointYAML struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type durationsYAML struct {
	Red    float64 `yaml:"red"`
	Green  float64 `yaml:"green"`
	Yellow float64 `yaml:"yellow"`
}

type routeYAML struct {
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
	Waypoints []string `yaml:"waypoints"`
	Optimize  bool     `yaml:"optimize"`
}

// loadScenario parses a scenario file.
func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	return &sc, nil
}

// apply stands the scenario up on an engine: topology first, then
// effects, then the clock, then the route request.
func (sc *Scenario) apply(e *engine.Engine) error {
	nodes := make([]core.NodeSpec, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		nodes = append(nodes, core.NodeSpec{ID: n.ID, X: n.X, Y: n.Y})
	}
	edges := make([]core.EdgeSpec, 0, len(sc.Edges))
	for _, ed := range sc.Edges {
		edges = append(edges, core.EdgeSpec{From: ed.From, To: ed.To, Weight: ed.Weight})
		if ed.TwoWay {
			edges = append(edges, core.EdgeSpec{From: ed.To, To: ed.From, Weight: ed.Weight})
		}
	}
	if err := e.Load(nodes, edges); err != nil {
		return err
	}

	for i, ef := range sc.Effects {
		if err := sc.applyEffect(e, ef); err != nil {
			return fmt.Errorf("effect %d (%s): %w", i, ef.Kind, err)
		}
	}
	if sc.Advance > 0 {
		e.Advance(sc.Advance)
	}

	if err := e.SetStartEnd(sc.Route.Start, sc.Route.End); err != nil {
		return err
	}
	for _, w := range sc.Route.Waypoints {
		if err := e.AddWaypoint(w); err != nil {
			return err
		}
	}
	e.OptimizeOrder(sc.Route.Optimize)

	return nil
}

func (sc *Scenario) applyEffect(e *engine.Engine, ef effectYAML) error {
	seg := geom.Segment{
		A: geom.Point{X: ef.Segment.A.X, Y: ef.Segment.A.Y},
		B: geom.Point{X: ef.Segment.B.X, Y: ef.Segment.B.Y},
	}

	switch ef.Kind {
	case "congestion":
		intensity, err := parseIntensity(ef.Intensity)
		if err != nil {
			return err
		}
		_, err = e.ApplyCongestion(seg, intensity)

		return err
	case "blockage":
		_, err := e.ApplyBlockage(seg)

		return err
	case "signal":
		_, err := e.ApplySignal(
			geom.Point{X: ef.At.X, Y: ef.At.Y},
			effects.SignalDurations{
				Red:    ef.Durations.Red,
				Green:  ef.Durations.Green,
				Yellow: ef.Durations.Yellow,
			})

		return err
	default:
		return fmt.Errorf("%w: kind %q", effects.ErrInvalidEffect, ef.Kind)
	}
}

func parseIntensity(s string) (effects.Intensity, error) {
	switch s {
	case "light":
		return effects.Light, nil
	case "", "moderate":
		return effects.Moderate, nil
	case "heavy":
		return effects.Heavy, nil
	default:
		return 0, fmt.Errorf("%w: intensity %q", effects.ErrBadIntensity, s)
	}
}
