package wallpaper

import (
	"fmt"
	"strings"

	"wallgen/internal/aspect"
	"wallgen/internal/providers/scene"
)

// Fixed fragments appended after the model-produced content. The renderer
// weighs earlier prompt content more heavily, so the volatile scene
// description leads and the invariant branding trails. Do not reorder.
const (
	styleFragment       = "Stylized 3D miniature diorama, soft clay-render surfaces, rounded toy-scale geometry, crisp edges, subtle ambient occlusion, high detail."
	compositionFragment = "Centered floating-island composition with generous negative space around the platform."
	cameraFragment      = "Three-quarter isometric aerial view, fixed perspective, everything in sharp focus."
	platformFragment    = "The whole diorama rests on a single floating platform; nothing extends past its edges."
	environmentFragment = "Clean soft-gradient sky backdrop, no text, no watermarks, no logos, no people."
)

// The two synthetic subjects are prepended to the model's subject list so the
// platform and the urban layout outrank whatever the model dreamt up.
var platformSubject = scene.Subject{
	Type:        scene.SubjectEnvironment,
	Description: "a thick floating rounded-square platform carrying the entire miniature city, layered earth strata visible beneath its edges",
	Pose:        "hovering perfectly level",
	Position:    "anchoring the lower half of the frame",
}

var urbanLayoutSubject = scene.Subject{
	Type:        scene.SubjectEnvironment,
	Description: "a dense toy-scale street grid of small buildings, lanes, and vegetation filling the platform around the landmark",
	Pose:        "laid out in tidy miniature blocks",
	Position:    "covering the platform surface",
}

// ComposedPrompt is the final instruction sent to the render queue. It lives
// only for the duration of one request.
type ComposedPrompt struct {
	Scene        string
	Subjects     []scene.Subject
	ColorPalette []string
	Lighting     string
	Mood         string
	Style        string
	Composition  string
	Camera       string
	Platform     string
	Environment  string
}

// Compose merges the model-produced description with the fixed style
// invariants. Pure; the field order of the result mirrors the serialization
// order in String.
func Compose(desc *scene.Description, profile aspect.Profile) ComposedPrompt {
	subjects := make([]scene.Subject, 0, len(desc.Subjects)+2)
	subjects = append(subjects, platformSubject, urbanLayoutSubject)
	subjects = append(subjects, desc.Subjects...)
	return ComposedPrompt{
		Scene:        desc.Scene,
		Subjects:     subjects,
		ColorPalette: append([]string(nil), desc.ColorPalette...),
		Lighting:     desc.Lighting,
		Mood:         desc.Mood,
		Style:        styleFragment,
		Composition:  strings.TrimSpace(compositionFragment + " " + profile.Framing),
		Camera:       cameraFragment,
		Platform:     platformFragment,
		Environment:  environmentFragment,
	}
}

// String serializes the composed prompt into the single string submitted to
// the render queue, preserving the priority order of its fields.
func (p ComposedPrompt) String() string {
	sb := &strings.Builder{}
	sb.WriteString(strings.TrimSpace(p.Scene))
	for _, s := range p.Subjects {
		fmt.Fprintf(sb, " %s: %s, %s, %s.", s.Type, s.Description, s.Pose, s.Position)
	}
	fmt.Fprintf(sb, " Color palette: %s.", strings.Join(p.ColorPalette, ", "))
	fmt.Fprintf(sb, " Lighting: %s", terminated(p.Lighting))
	fmt.Fprintf(sb, " Mood: %s", terminated(p.Mood))
	for _, fragment := range []string{p.Style, p.Composition, p.Camera, p.Platform, p.Environment} {
		if fragment != "" {
			sb.WriteString(" " + fragment)
		}
	}
	return sb.String()
}

func terminated(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, ".") {
		return s
	}
	return s + "."
}
