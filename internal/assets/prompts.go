// Package assets provides the embedded prompt templates for the generation
// pipeline. Templates are stored as text files under prompts/ and embedded at
// compile time; the dynamic ones are pre-parsed with template.Must so a
// malformed template fails at program startup rather than at call time.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// --- Static prompts (no dynamic data) ---

// ScreenwriterSystemPrompt is the persona system instruction used for the
// analysis and drafting model calls.
//
//go:embed prompts/screenwriter-system.txt
var ScreenwriterSystemPrompt string

// AnalyzeStillPrompt asks the model to read a photograph as a production
// still: likely genre, mood, comparable films, story hooks.
//
//go:embed prompts/analyze-still.txt
var AnalyzeStillPrompt string

// --- Dynamic prompt templates ---

//go:embed prompts/screenplay-scene.txt
var screenplaySceneTemplate string

//go:embed prompts/structure-scene.txt
var structureSceneTemplate string

var (
	sceneTmpl     = template.Must(template.New("scene").Parse(screenplaySceneTemplate))
	structureTmpl = template.Must(template.New("structure").Parse(structureSceneTemplate))
)

// ScenePromptData holds the dynamic data injected into the scene drafting prompt.
type ScenePromptData struct {
	// Genre constrains the scene to a genre when already known. Empty on a
	// first-pass generation; the template omits the genre section then.
	Genre string

	// Analysis is the still analysis produced by the previous pipeline stage.
	Analysis string
}

// RenderScenePrompt renders the scene drafting prompt with the given genre
// and analysis context.
func RenderScenePrompt(data ScenePromptData) string {
	return renderTemplate(sceneTmpl, data)
}

// RenderStructurePrompt renders the scene structuring prompt around the
// drafted screenplay text.
func RenderStructurePrompt(screenplay string) string {
	return renderTemplate(structureTmpl, struct{ Screenplay string }{Screenplay: screenplay})
}

// renderTemplate executes a pre-parsed template with the given data.
func renderTemplate(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	// Execution errors are not expected with these templates; return whatever
	// was rendered.
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
