// Command signcoach is a demo host loop: it loads the sign catalog and
// tunables, wires the orchestrator, and drives it with synthetic hand
// telemetry that drifts toward the target sign, printing the feedback the
// learner would see.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/handslab/signcoach/internal/config"
	"github.com/handslab/signcoach/internal/curl"
	"github.com/handslab/signcoach/internal/dynamic"
	"github.com/handslab/signcoach/internal/evaluate"
	"github.com/handslab/signcoach/internal/feedback"
	"github.com/handslab/signcoach/internal/hand"
	"github.com/handslab/signcoach/internal/profile"
	"github.com/handslab/signcoach/internal/stabilize"
)

func main() {
	var (
		dbPath  string
		tunPath string
		sign    string
		frames  int
		tickMs  int
		seed    int64
	)

	root := &cobra.Command{
		Use:           "signcoach",
		Short:         "Run a scripted feedback session against one sign",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dbPath, tunPath, sign, frames, tickMs, seed)
		},
	}
	root.Flags().StringVar(&dbPath, "catalog", "signcoach.db", "path to the sign catalog database")
	root.Flags().StringVar(&tunPath, "tunables", "", "optional YAML tunables override")
	root.Flags().StringVar(&sign, "sign", "", "target sign name (required)")
	root.Flags().IntVar(&frames, "frames", 300, "number of synthetic frames")
	root.Flags().IntVar(&tickMs, "tick-ms", 33, "milliseconds per frame")
	root.Flags().Int64Var(&seed, "seed", 1, "noise seed")
	_ = root.MarkFlagRequired("sign")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #region run

func run(dbPath, tunPath, sign string, frames, tickMs int, seed int64) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	tun := config.DefaultTunables()
	if tunPath != "" {
		if tun, err = config.LoadTunables(tunPath); err != nil {
			return err
		}
	}

	catalog, err := profile.OpenCatalog(dbPath)
	if err != nil {
		return err
	}
	registry, err := catalog.LoadRegistry()
	catalog.Close()
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", zap.Int("profiles", registry.Len()))

	estimator := curl.NewEstimator(tun.Curl)
	orch := feedback.New(feedback.Params{
		Registry:   registry,
		Evaluator:  evaluate.NewEvaluator(tun.Evaluator),
		Stabilizer: stabilize.NewStabilizer(tun.Stabilizer),
		Engine:     dynamic.NewEngine(tun.Dynamic),
		Config:     tun.Orchestrator,
		Logger:     logger,
	})

	target, _ := registry.Lookup(sign)
	source := newScriptedSource(target, rand.New(rand.NewSource(seed)))

	now := time.Now()
	orch.SetActive(true, now)
	orch.SetSign(sign, now)

	for i := 0; i < frames; i++ {
		now = now.Add(time.Duration(tickMs) * time.Millisecond)
		source.step(float32(i) / float32(frames))

		snap := estimator.BuildSnapshot(source)
		orch.Tick(now, snap, source.performed())

		for _, ev := range orch.DrainEvents() {
			printEvent(ev, i)
		}
	}
	return nil
}

func printEvent(ev feedback.Event, frame int) {
	switch ev.Kind {
	case feedback.EventMessageChanged:
		fmt.Printf("[%4d] messages: %s\n", frame, strings.Join(ev.Messages, " | "))
	case feedback.EventStateChanged:
		fmt.Printf("[%4d] state: %s\n", frame, ev.State)
	case feedback.EventOverlayChanged:
		fmt.Printf("[%4d] overlay: %v\n", frame, ev.Overlay)
	case feedback.EventAttemptFinished:
		fmt.Printf("[%4d] attempt %s finished, success=%v\n", frame, ev.AttemptID, ev.Succeeded)
	}
}

// #endregion run

// #region scripted-source

// scriptedSource synthesizes joint poses for a hand that starts flat and
// drifts toward the target profile's curl midpoints, with tracking noise
// and occasional single-frame dropouts.
type scriptedSource struct {
	target   *profile.Profile
	rng      *rand.Rand
	curls    [hand.FingerCount]float32
	dropout  hand.JointID
	dropping bool
	done     bool
}

func newScriptedSource(target *profile.Profile, rng *rand.Rand) *scriptedSource {
	return &scriptedSource{target: target, rng: rng}
}

// step advances the scripted hand; t runs 0→1 over the session.
func (s *scriptedSource) step(t float32) {
	for _, f := range hand.AllFingers {
		goal := float32(0.1)
		if s.target != nil && s.target.Fingers[f].Curl.Enabled {
			goal = s.target.Fingers[f].Curl.Midpoint()
		}
		blend := hand.Clamp01(t * 1.6)
		noise := (s.rng.Float32() - 0.5) * 0.04
		s.curls[f] = hand.Clamp01(0.1 + (goal-0.1)*blend + noise)
	}

	// One random joint drops out for one frame now and then.
	s.dropping = s.rng.Float32() < 0.03
	if s.dropping {
		s.dropout = hand.JointID{
			Finger: hand.Finger(s.rng.Intn(hand.FingerCount)),
			Part:   hand.JointPart(s.rng.Intn(hand.JointPartCount)),
		}
	}
	s.done = t > 0.9
}

func (s *scriptedSource) performed() bool { return s.done }

// TryGetJointPose lays each finger out as a planar chain whose bend angle
// reproduces the scripted curl.
func (s *scriptedSource) TryGetJointPose(id hand.JointID) (hand.Pose, bool) {
	if s.dropping && id == s.dropout {
		return hand.Pose{}, false
	}

	base := hand.Vec3{X: float32(id.Finger) * 0.025}
	segment := float32(0.03)

	// Inverse of the curl mapping: bend angle per joint.
	bend := float64(s.curls[id.Finger]) * 120 * math.Pi / 180

	pos := base
	dir := hand.Vec3{Y: 1}
	for p := hand.Proximal; p < id.Part; p++ {
		pos = pos.Add(dir.Scale(segment))
		dir = rotateXY(dir, bend)
	}
	return hand.Pose{Position: pos}, true
}

func (s *scriptedSource) TryGetPalmPose() (hand.Pose, bool) {
	return hand.Pose{Forward: hand.Vec3{Z: 1}}, true
}

func rotateXY(v hand.Vec3, rad float64) hand.Vec3 {
	sin, cos := math.Sin(rad), math.Cos(rad)
	return hand.Vec3{
		X: v.X*float32(cos) - v.Y*float32(sin),
		Y: v.X*float32(sin) + v.Y*float32(cos),
		Z: v.Z,
	}
}

// #endregion scripted-source
