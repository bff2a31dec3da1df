package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/handslab/signcoach/internal/hand"
)

// #region document-types

// Document is the serializable form of a Profile, used both for YAML
// authoring files and for the JSON column in the sqlite catalog.
type Document struct {
	SignName    string                   `yaml:"sign_name" json:"sign_name"`
	Description string                   `yaml:"description,omitempty" json:"description,omitempty"`
	Fingers     map[string]FingerDoc     `yaml:"fingers" json:"fingers"`
	Thumb       ThumbDoc                 `yaml:"thumb,omitempty" json:"thumb,omitempty"`
	Orientation *OrientationDoc          `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// FingerDoc mirrors FingerConstraint.
type FingerDoc struct {
	Curl          *CurlDoc    `yaml:"curl,omitempty" json:"curl,omitempty"`
	Spread        *SpreadDoc  `yaml:"spread,omitempty" json:"spread,omitempty"`
	ExpectedState string      `yaml:"expected_state,omitempty" json:"expected_state,omitempty"`
	Messages      MessagesDoc `yaml:"messages,omitempty" json:"messages,omitempty"`
}

// CurlDoc mirrors CurlConstraint; presence implies enabled.
type CurlDoc struct {
	Min      float32 `yaml:"min" json:"min"`
	Max      float32 `yaml:"max" json:"max"`
	Severity string  `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// SpreadDoc mirrors SpreadConstraint; presence implies enabled.
type SpreadDoc struct {
	MinAngle float32 `yaml:"min_angle" json:"min_angle"`
	MaxAngle float32 `yaml:"max_angle" json:"max_angle"`
	Severity string  `yaml:"severity,omitempty" json:"severity,omitempty"`
}

// MessagesDoc mirrors Messages.
type MessagesDoc struct {
	NeedsCurve  string `yaml:"needs_curve,omitempty" json:"needs_curve,omitempty"`
	NeedsFist   string `yaml:"needs_fist,omitempty" json:"needs_fist,omitempty"`
	TooMuchCurl string `yaml:"too_much_curl,omitempty" json:"too_much_curl,omitempty"`
	NeedsExtend string `yaml:"needs_extend,omitempty" json:"needs_extend,omitempty"`
	Generic     string `yaml:"generic,omitempty" json:"generic,omitempty"`
}

// ThumbDoc mirrors ThumbChecks.
type ThumbDoc struct {
	ShouldTouchIndex      bool   `yaml:"should_touch_index,omitempty" json:"should_touch_index,omitempty"`
	ShouldTouchMiddle     bool   `yaml:"should_touch_middle,omitempty" json:"should_touch_middle,omitempty"`
	ShouldTouchRing       bool   `yaml:"should_touch_ring,omitempty" json:"should_touch_ring,omitempty"`
	ShouldTouchPinky      bool   `yaml:"should_touch_pinky,omitempty" json:"should_touch_pinky,omitempty"`
	ShouldAvoidTouch      bool   `yaml:"should_avoid_touch,omitempty" json:"should_avoid_touch,omitempty"`
	ShouldBeOverFingers   bool   `yaml:"should_be_over_fingers,omitempty" json:"should_be_over_fingers,omitempty"`
	ShouldBeBesideFingers bool   `yaml:"should_be_beside_fingers,omitempty" json:"should_be_beside_fingers,omitempty"`
	TouchSeverity         string `yaml:"touch_severity,omitempty" json:"touch_severity,omitempty"`
}

// OrientationDoc mirrors Orientation; presence implies enabled.
type OrientationDoc struct {
	Forward      [3]float32 `yaml:"forward" json:"forward"`
	ToleranceDeg float32    `yaml:"tolerance_deg" json:"tolerance_deg"`
}

// #endregion document-types

// #region to-profile

// ToProfile builds and validates a runtime Profile from the document.
func (d *Document) ToProfile() (*Profile, error) {
	p := &Profile{
		SignName:    d.SignName,
		Description: d.Description,
	}

	for name, fd := range d.Fingers {
		f, err := fingerByName(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.SignName, err)
		}
		fc := FingerConstraint{
			ExpectedState: hand.ShapeState(fd.ExpectedState),
			Messages: Messages{
				NeedsCurve:  fd.Messages.NeedsCurve,
				NeedsFist:   fd.Messages.NeedsFist,
				TooMuchCurl: fd.Messages.TooMuchCurl,
				NeedsExtend: fd.Messages.NeedsExtend,
				Generic:     fd.Messages.Generic,
			},
		}
		if fd.Curl != nil {
			fc.Curl = CurlConstraint{
				Min:      fd.Curl.Min,
				Max:      fd.Curl.Max,
				Enabled:  true,
				Severity: severityByName(fd.Curl.Severity, hand.SeverityMajor),
			}
		}
		if fd.Spread != nil {
			fc.Spread = SpreadConstraint{
				MinAngle: fd.Spread.MinAngle,
				MaxAngle: fd.Spread.MaxAngle,
				Enabled:  true,
				Severity: severityByName(fd.Spread.Severity, hand.SeverityMinor),
			}
		}
		p.Fingers[f] = fc
	}

	p.Thumb = ThumbChecks{
		ShouldTouchIndex:      d.Thumb.ShouldTouchIndex,
		ShouldTouchMiddle:     d.Thumb.ShouldTouchMiddle,
		ShouldTouchRing:       d.Thumb.ShouldTouchRing,
		ShouldTouchPinky:      d.Thumb.ShouldTouchPinky,
		ShouldAvoidTouch:      d.Thumb.ShouldAvoidTouch,
		ShouldBeOverFingers:   d.Thumb.ShouldBeOverFingers,
		ShouldBeBesideFingers: d.Thumb.ShouldBeBesideFingers,
		TouchSeverity:         severityByName(d.Thumb.TouchSeverity, hand.SeverityMajor),
	}

	if d.Orientation != nil {
		p.Orientation = Orientation{
			Enabled: true,
			ExpectedForward: hand.Vec3{
				X: d.Orientation.Forward[0],
				Y: d.Orientation.Forward[1],
				Z: d.Orientation.Forward[2],
			}.Normalized(),
			ToleranceDeg: d.Orientation.ToleranceDeg,
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// FromProfile converts a runtime Profile back into its serializable form.
func FromProfile(p *Profile) *Document {
	d := &Document{
		SignName:    p.SignName,
		Description: p.Description,
		Fingers:     make(map[string]FingerDoc, hand.FingerCount),
	}
	for _, f := range hand.AllFingers {
		fc := p.Fingers[f]
		if !fc.Curl.Enabled && !fc.Spread.Enabled && fc.ExpectedState == "" && fc.Messages == (Messages{}) {
			continue
		}
		fd := FingerDoc{
			ExpectedState: string(fc.ExpectedState),
			Messages: MessagesDoc{
				NeedsCurve:  fc.Messages.NeedsCurve,
				NeedsFist:   fc.Messages.NeedsFist,
				TooMuchCurl: fc.Messages.TooMuchCurl,
				NeedsExtend: fc.Messages.NeedsExtend,
				Generic:     fc.Messages.Generic,
			},
		}
		if fc.Curl.Enabled {
			fd.Curl = &CurlDoc{Min: fc.Curl.Min, Max: fc.Curl.Max, Severity: fc.Curl.Severity.String()}
		}
		if fc.Spread.Enabled {
			fd.Spread = &SpreadDoc{MinAngle: fc.Spread.MinAngle, MaxAngle: fc.Spread.MaxAngle, Severity: fc.Spread.Severity.String()}
		}
		d.Fingers[f.String()] = fd
	}
	d.Thumb = ThumbDoc{
		ShouldTouchIndex:      p.Thumb.ShouldTouchIndex,
		ShouldTouchMiddle:     p.Thumb.ShouldTouchMiddle,
		ShouldTouchRing:       p.Thumb.ShouldTouchRing,
		ShouldTouchPinky:      p.Thumb.ShouldTouchPinky,
		ShouldAvoidTouch:      p.Thumb.ShouldAvoidTouch,
		ShouldBeOverFingers:   p.Thumb.ShouldBeOverFingers,
		ShouldBeBesideFingers: p.Thumb.ShouldBeBesideFingers,
		TouchSeverity:         p.Thumb.TouchSeverity.String(),
	}
	if p.Orientation.Enabled {
		fwd := p.Orientation.ExpectedForward
		d.Orientation = &OrientationDoc{
			Forward:      [3]float32{fwd.X, fwd.Y, fwd.Z},
			ToleranceDeg: p.Orientation.ToleranceDeg,
		}
	}
	return d
}

// #endregion to-profile

// #region yaml-loading

// LoadDocument reads one YAML profile document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if doc.SignName == "" {
		doc.SignName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &doc, nil
}

// LoadDir reads every .yaml/.yml profile document in a directory, sorted by
// filename for deterministic ordering.
func LoadDir(dir string) ([]*Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read profile dir %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	docs := make([]*Document, 0, len(names))
	for _, name := range names {
		doc, err := LoadDocument(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// #endregion yaml-loading

// #region name-helpers

func fingerByName(name string) (hand.Finger, error) {
	for _, f := range hand.AllFingers {
		if f.String() == strings.ToLower(name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown finger %q", name)
}

func severityByName(name string, fallback hand.Severity) hand.Severity {
	switch strings.ToLower(name) {
	case "minor":
		return hand.SeverityMinor
	case "major":
		return hand.SeverityMajor
	case "none":
		return hand.SeverityNone
	case "":
		return fallback
	default:
		return fallback
	}
}

// #endregion name-helpers
