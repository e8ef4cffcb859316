package silhouette

import (
	"encoding/json"
	"fmt"
)

// replayStep is a single action in a replay script.
type replayStep struct {
	Action string  `json:"action"`
	Label  string  `json:"label,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Z      float64 `json:"z,omitempty"`
	Yaw    float64 `json:"yaw,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// replayScript is the top-level JSON structure for a replay script.
type replayScript struct {
	Steps []replayStep `json:"steps"`
}

// TapResult records the outcome of a scripted tap.
type TapResult struct {
	Label string  `json:"label,omitempty"`
	Frame int     `json:"frame"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Hit   bool    `json:"hit"`
	Node  NodeID  `json:"node,omitempty"`
	Image string  `json:"image,omitempty"`
}

// ReplayRunner plays a scripted sequence of camera moves, turns and taps
// against an Engine, one step per frame. It drives regression tests of the
// hit-testing pipeline without a live AR session.
//
// Actions:
//
//	{"action": "move", "x": 0, "y": 1.6, "z": 0}  set the camera position
//	{"action": "turn", "yaw": 0.5}                set the camera yaw
//	{"action": "tap", "x": 320, "y": 240}         hit test a screen point
//	{"action": "wait", "frames": 3}               idle for frames
type ReplayRunner struct {
	steps     []replayStep
	cursor    int
	waitCount int
	frame     int
	done      bool
	results   []TapResult
}

// LoadReplayScript parses a JSON replay script.
func LoadReplayScript(jsonData []byte) (*ReplayRunner, error) {
	var script replayScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse replay script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse replay script: no steps")
	}
	for i, st := range script.Steps {
		switch st.Action {
		case "move", "turn", "tap", "wait":
		default:
			return nil, fmt.Errorf("parse replay script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &ReplayRunner{steps: script.Steps}, nil
}

// Done reports whether every step has run.
func (r *ReplayRunner) Done() bool {
	return r.done
}

// Results returns the recorded taps in script order.
func (r *ReplayRunner) Results() []TapResult {
	return r.results
}

// Step advances the script by one frame. Camera steps apply before the
// engine's Tick; taps are tested after it, against this frame's outlines.
func (r *ReplayRunner) Step(e *Engine, cam *PerspectiveCamera) {
	if r.done {
		return
	}
	r.frame++

	if r.waitCount > 0 {
		r.waitCount--
		e.Tick()
		r.finishIfDrained()
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		cam.SetPosition(Vec3{X: st.X, Y: st.Y, Z: st.Z})
	case "turn":
		cam.SetYaw(st.Yaw)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	e.Tick()

	if st.Action == "tap" {
		res := TapResult{Label: st.Label, Frame: r.frame, X: st.X, Y: st.Y}
		if h := e.HitTest(st.X, st.Y); h != nil {
			res.Hit = true
			res.Node = h.Node
			res.Image = h.Image
		}
		r.results = append(r.results, res)
	}

	r.finishIfDrained()
}

func (r *ReplayRunner) finishIfDrained() {
	if r.cursor >= len(r.steps) && r.waitCount == 0 {
		r.done = true
	}
}

// Run steps the script until it is done or maxFrames frames have elapsed,
// and returns the tap results.
func (r *ReplayRunner) Run(e *Engine, cam *PerspectiveCamera, maxFrames int) []TapResult {
	for i := 0; i < maxFrames && !r.done; i++ {
		r.Step(e, cam)
	}
	return r.results
}
