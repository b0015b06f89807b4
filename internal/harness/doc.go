// Package harness runs layout scenarios against a headless app.
//
// A scenario loads a layout, drives the app through resizes, asset
// completions, clock advances and input, then checks the final state.
// Every run uses a manual clock, a manual asset loader and an in-memory
// journal, so the same scenario always produces the same trace.
//
// # Scenario Format
//
//	name: enter_and_rotate
//	description: "Load, enter the game, then rotate to portrait"
//	layout: ../layout.cue
//	viewport: {width: 1920, height: 1080}
//	steps:
//	  - load: sound_low.png
//	  - advance: 100ms
//	  - key: Enter
//	  - click: sound
//	  - resize: {width: 1080, height: 1920}
//	assertions:
//	  - type: state
//	    state: idle
//	  - type: position
//	    label: reels
//	    x: 540
//	    y: 1260
//
// The layout path is relative to the scenario file.
//
// # Steps
//
// Each step sets exactly one field:
//
//   - resize: changes the viewport
//   - advance: moves the manual clock by a Go duration
//   - load: resolves a pending asset ("*" resolves everything pending)
//   - fail: fails a pending asset
//   - click: clicks an element by label
//   - key: presses a key
//   - pointer: presses the pointer at {x, y}
//   - send: sends an actor event by name
//
// The app is settled after every step.
//
// # Assertion Types
//
//   - state: the actor state
//   - progress: the load progress
//   - visible: whether a node (or the LoadScreen) is visible
//   - style: the current style
//   - position: a node's x and y
//   - sound: whether sound is on
//   - trace_contains: an event was applied
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/enter.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
