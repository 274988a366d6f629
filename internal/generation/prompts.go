package generation

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/bookofmonth/bookofmonth-api/internal/domain"
)

const (
	// searchTermsContentLimit and categorizeContentLimit bound how much of an
	// article is sent for the cheap classification prompts.
	searchTermsContentLimit = 200
	categorizeContentLimit  = 300
)

type promptData struct {
	Text       string
	Title      string
	AgeRange   domain.AgeRange
	Count      int
	Categories string
}

var prompts = template.Must(template.New("prompts").Parse(`
{{define "verify_fact"}}Is the following statement factually accurate? Answer with only "true" or "false".

Statement: {{.Text}}{{end}}

{{define "filter_safety"}}Is the following news content appropriate for children aged 4 to 12? Content involving graphic violence, explicit material, self-harm or frightening detail is not appropriate. Answer with only "true" or "false".

Content: {{.Text}}{{end}}

{{define "adapt"}}You are a storyteller who writes news for curious children aged {{.AgeRange}}. Rewrite the article below so that it:
1. Opens with a hook that makes the reader want to keep going.
2. Explains big numbers and hard ideas with vivid comparisons from a child's everyday life.
3. Includes two or three "wow" facts from the article.
4. Uses short, punchy sentences and words a {{.AgeRange}} year old knows.
5. Ends with a question or thought that sparks curiosity.
6. Keeps a warm, positive tone without changing the facts.

Return only the rewritten article.

Article: {{.Text}}{{end}}

{{define "educational_context"}}Write two or three enthusiastic sentences that give a child background on this topic. Include one surprising "No way!" fact. Return only the sentences.

Topic: {{.Text}}{{end}}

{{define "questions"}}Write {{.Count}} questions for children about the article below. Mix these kinds:
- "Quiz: <question>? A) ... B) ... C) ... D) ..."
- "Think About It: <open question>"
- "What Would You Do?: <scenario question>"
Put each question on its own line with no numbering and no extra text.

Article: {{.Text}}{{end}}

{{define "fun_facts"}}List three to five short, surprising fun facts a child would enjoy from the article below. Put each fact on its own line with no numbering and no extra text.

Article: {{.Text}}{{end}}

{{define "search_terms"}}Suggest media search queries for a children's news article. Respond with only a JSON object of the form {"youtube_query": "<5 to 10 words>", "image_query": "<2 to 4 words>"}.

Title: {{.Title}}
Content: {{.Text}}{{end}}

{{define "categorize"}}Classify the news article below into exactly one of these categories: {{.Categories}}. Respond with only the category name.

Title: {{.Title}}
Content: {{.Text}}{{end}}
`))

func renderPrompt(name string, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s prompt template: %w", name, err)
	}
	return buf.String(), nil
}

// truncateRunes shortens s to at most limit runes.
func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func categoryNames() string {
	all := domain.AllCategories()
	names := make([]string, 0, len(all))
	for _, c := range all {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}
