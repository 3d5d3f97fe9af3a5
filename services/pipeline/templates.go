package pipeline

import (
	"os"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/nijaru/yt-notes/models"
)

const translatePrompt = `You are an expert translator with deep cultural and linguistic knowledge.
I will provide you with a transcript. Your task is to translate it into English with absolute accuracy, preserving:
- Full meaning and context (no omissions, no additions).
- Tone and style (formal/informal, emotional/neutral as in original).
- Nuances, idioms, and cultural expressions (adapt appropriately while keeping intent).
- Speaker's voice (same perspective, no rewriting into third-person).
Do not summarize or simplify. The translation should read naturally in the target language but stay as close as possible to the original intent.

Transcript:
{{.Transcript}}
`

const topicsPrompt = `You are an assistant that extracts the 5 most important topics discussed in a video transcript or summary.

Rules:
- Summarize into exactly 5 major points.
- Each point should represent a key topic or concept, not small details.
- Keep wording concise and focused on the technical content.
- Do not phrase them as questions or opinions.
- Output should be a numbered list.
- Show only points that are discussed in the transcript.
Here is the transcript:
{{.Transcript}}
`

const notesPrompt = `You are an assistant that turns a video transcript into clear, structured study notes in markdown.

Rules:
- Start with a short H1 title naming the main subject.
- Use H2 sections, one per major theme, in the order they appear.
- Under each section, use concise bullet points; one idea per bullet.
- Keep definitions, formulas, code and numbers exactly as stated.
- End with a "Key Takeaways" section of 3-5 bullets.
- Include only information present in the transcript. Do not add outside facts.
- Write in English.

Transcript:
{{.Transcript}}
`

// placeholderProbe is rendered into a template to confirm it uses the
// transcript exactly where a transcript is expected.
const placeholderProbe = "\x00transcript-probe\x00"

type promptData struct {
	Transcript string
}

// Templates holds the parsed instruction template for every stage.
type Templates struct {
	byStage map[models.Stage]*template.Template
}

// DefaultTemplates returns the templates shipped with the binary.
func DefaultTemplates() *Templates {
	t, err := NewTemplates(map[models.Stage]string{
		models.StageTranslate: translatePrompt,
		models.StageTopics:    topicsPrompt,
		models.StageNotes:     notesPrompt,
	})
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTemplates returns the shipped templates, replacing the notes
// template with the contents of notesPath when it is set.
func LoadTemplates(notesPath string) (*Templates, error) {
	sources := map[models.Stage]string{
		models.StageTranslate: translatePrompt,
		models.StageTopics:    topicsPrompt,
		models.StageNotes:     notesPrompt,
	}

	if notesPath != "" {
		data, err := os.ReadFile(notesPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read notes template %s", notesPath)
		}
		sources[models.StageNotes] = string(data)
	}

	return NewTemplates(sources)
}

// NewTemplates parses and validates one template per stage. Every stage
// needs a template and every template must render the transcript.
func NewTemplates(sources map[models.Stage]string) (*Templates, error) {
	t := &Templates{byStage: make(map[models.Stage]*template.Template, len(sources))}

	for _, stage := range models.AllStages {
		src, ok := sources[stage]
		if !ok {
			return nil, errors.Errorf("no template for stage %s", stage)
		}

		tmpl, err := template.New(string(stage)).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s template", stage)
		}

		var sb strings.Builder
		if err := tmpl.Execute(&sb, promptData{Transcript: placeholderProbe}); err != nil {
			return nil, errors.Wrapf(err, "render %s template", stage)
		}
		if !strings.Contains(sb.String(), placeholderProbe) {
			return nil, errors.Errorf("%s template does not include {{.Transcript}}", stage)
		}

		t.byStage[stage] = tmpl
	}

	return t, nil
}

// Render fills the stage template with the transcript text.
func (t *Templates) Render(stage models.Stage, transcript string) (string, error) {
	tmpl, ok := t.byStage[stage]
	if !ok {
		return "", errors.Errorf("unknown stage %s", stage)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, promptData{Transcript: transcript}); err != nil {
		return "", errors.Wrapf(err, "render %s prompt", stage)
	}
	return sb.String(), nil
}
