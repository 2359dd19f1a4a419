package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apperrors "quizly/api/internal/errors"
)

var (
	fenceRe        = regexp.MustCompile("```[a-zA-Z0-9_+-]*")
	questionLineRe = regexp.MustCompile(`^(?i:q(?:uestion)?\s*)?(\d+)[.):](?:\s+|$)(.*)$`)
	answerLineRe   = regexp.MustCompile(`(?i)^(?:correct\s+answer|correct\s+option|answer|correct)\s*[:\-]\s*(.+)$`)
	optionLabelRe  = regexp.MustCompile(`^(?:\(([A-Da-d])\)\s*|([A-Da-d])[):]\s*|([A-Da-d])\.\s+)(.*)$`)
	bulletRe       = regexp.MustCompile(`^[-*•]\s+`)
)

var (
	textKeys     = []string{"question", "text", "prompt", "title"}
	optionKeys   = []string{"options", "choices"}
	answerKeys   = []string{"answerText", "answer_text", "answer", "correctAnswer", "correct_answer", "correct"}
	questionKeys = []string{"questions", "questionsArray", "quiz", "items", "data"}
)

// rawQuestion is an extracted but not yet normalized question. answer holds a
// string, a json.Number, or an int option index.
type rawQuestion struct {
	text    string
	options []string
	answer  any
}

type extractor struct {
	shape   ParsedAs
	extract func(string) (items []rawQuestion, recognized bool, err error)
}

var extractors = []extractor{
	{ParsedAsArray, extractArray},
	{ParsedAsObject, extractObject},
	{ParsedAsTextList, extractTextList},
}

// Parse turns raw model output into questions. Strategies are tried in order:
// the first JSON array of question objects, then a JSON object wrapping a
// question list, then a numbered plain-text list.
func Parse(raw string) (*ParseResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.InvalidInput("provider response is empty")
	}

	text := StripFences(raw)
	sawEmpty := false
	for _, ex := range extractors {
		items, recognized, err := ex.extract(text)
		if err != nil {
			return nil, err
		}
		if !recognized {
			continue
		}
		if len(items) == 0 {
			sawEmpty = true
			continue
		}
		return &ParseResult{Questions: normalizeQuestions(items), ParsedAs: ex.shape}, nil
	}

	if sawEmpty {
		return nil, apperrors.EmptyResult()
	}
	return nil, apperrors.Parse("no quiz structure found in provider response")
}

// StripFences removes Markdown code fence markers, including language tags.
func StripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// extractArray returns the first array holding at least one question item.
// Arrays of plain option objects are skipped so a single question object is
// left to extractObject. An array of objects that never closes means the
// output was cut off and fails the parse.
func extractArray(text string) ([]rawQuestion, bool, error) {
	recognized := false
	for start := strings.IndexByte(text, '['); start >= 0; start = nextIndex(text, '[', start) {
		end := balancedEnd(text, start)
		if end < 0 {
			if opensObject(text, start) {
				return nil, false, apperrors.Parse("provider response is truncated")
			}
			continue
		}
		var values []any
		if err := decodeJSON(text[start:end], &values); err != nil {
			continue
		}
		if len(values) == 0 {
			recognized = true
			continue
		}
		if !hasQuestionItem(values) {
			continue
		}
		return questionObjects(values), true, nil
	}
	return nil, recognized, nil
}

// opensObject reports whether the array at start begins with an object.
func opensObject(text string, start int) bool {
	rest := strings.TrimLeft(text[start+1:], " \t\r\n")
	return strings.HasPrefix(rest, "{")
}

func extractObject(text string) ([]rawQuestion, bool, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; start = nextIndex(text, '{', start) {
		end := balancedEnd(text, start)
		if end < 0 {
			continue
		}
		var obj map[string]any
		if err := decodeJSON(text[start:end], &obj); err != nil {
			continue
		}
		for _, key := range questionKeys {
			if list, ok := obj[key].([]any); ok {
				return questionObjects(list), true, nil
			}
		}
		if looksLikeQuestion(obj) {
			return []rawQuestion{toRawQuestion(obj)}, true, nil
		}
	}
	return nil, false, nil
}

// extractTextList reads numbered questions followed by option lines. Numbered
// lines with no options under them are prose, not questions.
func extractTextList(text string) ([]rawQuestion, bool, error) {
	var items []rawQuestion
	current := -1
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		if line == "" {
			continue
		}
		if m := questionLineRe.FindStringSubmatch(line); m != nil {
			items = append(items, rawQuestion{text: strings.TrimSpace(m[2])})
			current = len(items) - 1
			continue
		}
		if current < 0 {
			continue
		}
		q := &items[current]
		if m := answerLineRe.FindStringSubmatch(line); m != nil {
			if q.answer == nil {
				q.answer = textListAnswer(m[1])
			}
			continue
		}
		if q.answer == nil && len(q.options) < 4 {
			q.options = append(q.options, stripOptionLabel(line))
		}
	}

	questions := items[:0]
	for _, q := range items {
		if len(q.options) > 0 {
			questions = append(questions, q)
		}
	}
	return questions, len(questions) > 0, nil
}

// textListAnswer converts "B", "(b)", "B) Paris" into an option index and
// anything else into answer text.
func textListAnswer(v string) any {
	v = strings.TrimSpace(v)
	if idx, ok := letterIndex(v); ok {
		return idx
	}
	if m := optionLabelRe.FindStringSubmatch(v); m != nil {
		if idx, ok := letterIndex(m[1] + m[2] + m[3]); ok {
			return idx
		}
	}
	return v
}

func stripOptionLabel(line string) string {
	line = bulletRe.ReplaceAllString(line, "")
	if m := optionLabelRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[4])
	}
	return line
}

func questionObjects(values []any) []rawQuestion {
	var items []rawQuestion
	for _, v := range values {
		if obj, ok := v.(map[string]any); ok {
			items = append(items, toRawQuestion(obj))
		}
	}
	return items
}

func hasQuestionItem(values []any) bool {
	for _, v := range values {
		if obj, ok := v.(map[string]any); ok && isQuestionItem(obj) {
			return true
		}
	}
	return false
}

// isQuestionItem reports whether obj carries options or an answer. Option
// objects such as {"text":"Paris"} have neither.
func isQuestionItem(obj map[string]any) bool {
	for _, key := range optionKeys {
		if _, ok := obj[key]; ok {
			return true
		}
	}
	for _, key := range answerKeys {
		switch v := obj[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return true
			}
		case json.Number:
			return true
		}
	}
	return false
}

func looksLikeQuestion(obj map[string]any) bool {
	_, hasText := firstString(obj, textKeys)
	for _, key := range optionKeys {
		if _, ok := obj[key]; ok {
			return hasText
		}
	}
	return false
}

func toRawQuestion(obj map[string]any) rawQuestion {
	q := rawQuestion{}
	q.text, _ = firstString(obj, textKeys)
	for _, key := range optionKeys {
		if v, ok := obj[key]; ok {
			q.options = toOptions(v)
			break
		}
	}
	for _, key := range answerKeys {
		switch v := obj[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				q.answer = v
			}
		case json.Number:
			q.answer = v
		}
		if q.answer != nil {
			break
		}
	}
	return q
}

// toOptions keeps one slot per source value, blank when the value has no
// text, so letter and index answers still line up with their positions.
func toOptions(v any) []string {
	var options []string
	switch vals := v.(type) {
	case []any:
		for _, item := range vals {
			options = append(options, scalarString(item))
		}
	case map[string]any:
		keys := make([]string, 0, len(vals))
		for k := range vals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			options = append(options, scalarString(vals[k]))
		}
	}
	return options
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		s, _ := firstString(val, []string{"text", "label", "value", "option"})
		return s
	default:
		return ""
	}
}

func firstString(obj map[string]any, keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func normalizeQuestions(items []rawQuestion) []Question {
	questions := make([]Question, 0, len(items))
	for i, item := range items {
		text := item.text
		if text == "" {
			text = fmt.Sprintf("Question %d", i+1)
		}
		answer := resolveAnswer(item.answer, item.options)
		options := compactOptions(item.options)
		if answer == "" && len(options) > 0 {
			answer = options[0]
		}
		questions = append(questions, Question{
			Text:          text,
			Options:       options,
			CorrectAnswer: answer,
		})
	}
	return questions
}

// compactOptions drops blank slots once answers have been resolved.
func compactOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

func decodeJSON(s string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return dec.Decode(v)
}

func nextIndex(s string, c byte, after int) int {
	i := strings.IndexByte(s[after+1:], c)
	if i < 0 {
		return -1
	}
	return after + 1 + i
}

// balancedEnd returns the index just past the bracket closing the one at
// start, or -1. Brackets inside JSON string literals are ignored.
func balancedEnd(s string, start int) int {
	open := s[start]
	var closing byte = ']'
	if open == '{' {
		closing = '}'
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}
