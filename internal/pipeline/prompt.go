// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"text/template"
)

// Sections are the headings the answer prompt asks the model to use, in
// order.
var Sections = []string{"Definition", "Background", "Important Details", "Notes"}

var answerPromptTmpl = template.Must(template.New("answer").Parse(`
You are a helpful assistant. Use the Wikipedia content below to answer the question.

Wikipedia Page: {{.Title}}

Content:
{{.Content}}

User Question: "{{.Question}}"

Provide a clear, structured answer using this format:
{{range .Sections}}- {{.}}
{{end}}`))

// RenderAnswerPrompt builds the final generation prompt.
func RenderAnswerPrompt(title, content, question string) (string, error) {
	var buf bytes.Buffer
	err := answerPromptTmpl.Execute(&buf, struct {
		Title, Content, Question string
		Sections                 []string
	}{title, content, question, Sections})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
