package scene

import (
	"fmt"
	"strings"
)

// SubjectType classifies an element of the generated scene.
type SubjectType string

const (
	SubjectLandmark    SubjectType = "Landmark"
	SubjectEnvironment SubjectType = "Environment"
)

// Subject is one element of the scene. All four fields are mandatory in the
// model's output and stay mandatory through composition.
type Subject struct {
	Type        SubjectType `json:"type" jsonschema:"enum=Landmark,enum=Environment"`
	Description string      `json:"description"`
	Pose        string      `json:"pose"`
	Position    string      `json:"position"`
}

// Description is the structured scene the language model returns.
type Description struct {
	Scene        string    `json:"scene"`
	Subjects     []Subject `json:"subjects"`
	ColorPalette []string  `json:"color_palette" jsonschema:"minItems=3,maxItems=3"`
	Lighting     string    `json:"lighting"`
	Mood         string    `json:"mood"`
}

// Request captures the sparse user input plus the rendering hints derived
// from the requested dimensions.
type Request struct {
	City        string
	Weather     string
	Moment      string
	Width       int
	Height      int
	Ratio       string
	Orientation string
	Framing     string
}

// Validate checks the parsed description against the structural contract:
// every field populated, a three-entry palette, at least one landmark and
// exactly one environment subject. Schema enforcement is delegated to the
// provider; this guards against models that satisfy the schema but not the
// contract.
func (d *Description) Validate() error {
	if strings.TrimSpace(d.Scene) == "" {
		return &MalformedError{Reason: "missing scene"}
	}
	if len(d.Subjects) == 0 {
		return &MalformedError{Reason: "missing subjects"}
	}
	landmarks, environments := 0, 0
	for i, s := range d.Subjects {
		switch s.Type {
		case SubjectLandmark:
			landmarks++
		case SubjectEnvironment:
			environments++
		default:
			return &MalformedError{Reason: fmt.Sprintf("subject %d has unknown type %q", i, s.Type)}
		}
		if strings.TrimSpace(s.Description) == "" || strings.TrimSpace(s.Pose) == "" || strings.TrimSpace(s.Position) == "" {
			return &MalformedError{Reason: fmt.Sprintf("subject %d is missing a mandatory field", i)}
		}
	}
	if landmarks < 1 {
		return &MalformedError{Reason: "no landmark subject"}
	}
	if environments != 1 {
		return &MalformedError{Reason: fmt.Sprintf("expected exactly one environment subject, got %d", environments)}
	}
	if len(d.ColorPalette) != 3 {
		return &MalformedError{Reason: fmt.Sprintf("color palette must have 3 entries, got %d", len(d.ColorPalette))}
	}
	for i, c := range d.ColorPalette {
		if strings.TrimSpace(c) == "" {
			return &MalformedError{Reason: fmt.Sprintf("color palette entry %d is empty", i)}
		}
	}
	if strings.TrimSpace(d.Lighting) == "" {
		return &MalformedError{Reason: "missing lighting"}
	}
	if strings.TrimSpace(d.Mood) == "" {
		return &MalformedError{Reason: "missing mood"}
	}
	return nil
}
