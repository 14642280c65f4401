package beam

import "fmt"

// AnomalyKind names a locally recoverable geometric failure.
type AnomalyKind int

const (
	AnomalyNearClip            AnomalyKind = iota // vertex left at zero depth after near clipping
	AnomalyFocalInPlane                           // beam origin lies in its own frustum plane
	AnomalyMissingIntersection                    // frustum clip expected a crossing and found none
	AnomalyUnprojectable                          // clipped face could not be cast back onto its plane
	AnomalyNoFrontFace                            // faces visible but none unobstructed
	AnomalySplitCrossing                          // face edge line did not cross the working boundary twice
	AnomalyConstruction                           // a derived beam could not be built
)

func (k AnomalyKind) String() string {
	switch k {
	case AnomalyNearClip:
		return "near-clip"
	case AnomalyFocalInPlane:
		return "focal-in-plane"
	case AnomalyMissingIntersection:
		return "missing-intersection"
	case AnomalyUnprojectable:
		return "unprojectable"
	case AnomalyNoFrontFace:
		return "no-front-face"
	case AnomalySplitCrossing:
		return "split-crossing"
	case AnomalyConstruction:
		return "construction"
	default:
		return fmt.Sprintf("AnomalyKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k AnomalyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Severity grades an anomaly.
type Severity int

const (
	SeverityError   Severity = iota // result is degraded
	SeverityWarning                 // result is usable
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// NoFace marks an anomaly that is not tied to a scene face.
const NoFace = -1

// Anomaly describes a recoverable problem met while projecting, clipping,
// resolving or splitting.
type Anomaly struct {
	Kind     AnomalyKind `json:"kind"`
	Severity Severity    `json:"severity"`
	FaceID   int         `json:"face"`
	Message  string      `json:"message"`
}

func (a Anomaly) Error() string {
	if a.FaceID == NoFace {
		return fmt.Sprintf("[%s] %s: %s", a.Severity, a.Kind, a.Message)
	}
	return fmt.Sprintf("[%s] %s: face %d: %s", a.Severity, a.Kind, a.FaceID, a.Message)
}

func newAnomaly(kind AnomalyKind, sev Severity, format string, args ...any) Anomaly {
	return Anomaly{Kind: kind, Severity: sev, FaceID: NoFace, Message: fmt.Sprintf(format, args...)}
}

// withFace tags every anomaly that has no face yet.
func withFace(as []Anomaly, id int) []Anomaly {
	for i := range as {
		if as[i].FaceID == NoFace {
			as[i].FaceID = id
		}
	}
	return as
}

// joinAnomalies returns a new slice holding a followed by b. Neither input
// shares storage with the result.
func joinAnomalies(a, b []Anomaly) []Anomaly {
	out := make([]Anomaly, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
