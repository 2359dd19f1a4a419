package quiz

import (
	"reflect"
	"testing"

	apperrors "quizly/api/internal/errors"
)

func mustParse(t *testing.T, raw string) *ParseResult {
	t.Helper()
	result, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	return result
}

func TestParseJSONArray(t *testing.T) {
	raw := `[{"question":"2+2?","options":["3","4","5","6"],"answerText":"4"}]`

	result := mustParse(t, raw)
	if result.ParsedAs != ParsedAsArray {
		t.Fatalf("expected array shape, got %s", result.ParsedAs)
	}
	want := []Question{{Text: "2+2?", Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "4"}}
	if !reflect.DeepEqual(result.Questions, want) {
		t.Fatalf("unexpected questions: %+v", result.Questions)
	}
}

func TestParseArrayKeepsEveryQuestion(t *testing.T) {
	raw := "Here is your quiz:\n```json\n[\n" +
		`{"question":"Capital of France?","options":["Paris","Rome","Madrid","Berlin"],"answerText":"Paris"},` + "\n" +
		`{"question":"Largest planet?","options":["Mars","Jupiter","Venus","Earth"],"answer":"B"},` + "\n" +
		`{"question":"Boiling point of water in C?","options":["90","100","110","120"],"correctAnswer":1}` + "\n" +
		"]\n```\nGood luck!"

	result := mustParse(t, raw)
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(result.Questions))
	}
	wantAnswers := []string{"Paris", "Jupiter", "100"}
	for i, q := range result.Questions {
		if q.Text == "" {
			t.Fatalf("question %d has empty text", i)
		}
		if q.CorrectAnswer != wantAnswers[i] {
			t.Fatalf("question %d: expected answer %q, got %q", i, wantAnswers[i], q.CorrectAnswer)
		}
	}
}

func TestParseSkipsBracketsInProse(t *testing.T) {
	raw := `Answers are in [brackets] below. [1, 2] [{"question":"Q?","options":["a","b"],"answerText":"b"}]`

	result := mustParse(t, raw)
	if len(result.Questions) != 1 || result.Questions[0].CorrectAnswer != "b" {
		t.Fatalf("unexpected questions: %+v", result.Questions)
	}
}

func TestParseIgnoresBracketsInsideStrings(t *testing.T) {
	raw := `[{"question":"Which slice literal is valid? ]","options":["[]int{}","[int]","{}","()"],"answerText":"[]int{}"}]`

	result := mustParse(t, raw)
	if result.Questions[0].Text != "Which slice literal is valid? ]" {
		t.Fatalf("unexpected text %q", result.Questions[0].Text)
	}
	if result.Questions[0].CorrectAnswer != "[]int{}" {
		t.Fatalf("unexpected answer %q", result.Questions[0].CorrectAnswer)
	}
}

func TestParseObjectWrappers(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"questions", `{"questions":[{"question":"Q1","options":["A1","B1","C1","D1"],"correctAnswer":"C"}]}`},
		{"questionsArray", `{"questionsArray":[{"question":"Q1","options":["A1","B1","C1","D1"],"correctAnswer":"C"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mustParse(t, tt.raw)
			if len(result.Questions) != 1 {
				t.Fatalf("expected 1 question, got %d", len(result.Questions))
			}
			if result.Questions[0].CorrectAnswer != "C1" {
				t.Fatalf("expected letter C to map to C1, got %q", result.Questions[0].CorrectAnswer)
			}
		})
	}
}

func TestParseSingleQuestionObject(t *testing.T) {
	raw := `{"question":"Is Go compiled?","options":["yes","no"],"answer":"yes"}`

	result := mustParse(t, raw)
	if result.ParsedAs != ParsedAsObject {
		t.Fatalf("expected object shape, got %s", result.ParsedAs)
	}
	if result.Questions[0].CorrectAnswer != "yes" {
		t.Fatalf("unexpected answer %q", result.Questions[0].CorrectAnswer)
	}
}

func TestParseSingleQuestionWithOptionObjects(t *testing.T) {
	raw := `{"question":"Capital of France?","options":[{"text":"Berlin"},{"text":"Paris"},{"text":"Madrid"},{"text":"Rome"}],"answer":"B"}`

	result := mustParse(t, raw)
	if result.ParsedAs != ParsedAsObject {
		t.Fatalf("expected object shape, got %s", result.ParsedAs)
	}
	want := []Question{{Text: "Capital of France?", Options: []string{"Berlin", "Paris", "Madrid", "Rome"}, CorrectAnswer: "Paris"}}
	if !reflect.DeepEqual(result.Questions, want) {
		t.Fatalf("unexpected questions: %+v", result.Questions)
	}
}

func TestParseBlankOptionsKeepAnswerPositions(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		options []string
		want    string
	}{
		{
			name:    "letter",
			raw:     `[{"question":"Q","options":["","Paris","Rome","Berlin"],"answer":"C"}]`,
			options: []string{"Paris", "Rome", "Berlin"},
			want:    "Rome",
		},
		{
			name:    "index",
			raw:     `[{"question":"Q","options":["Paris",null,"Rome","Berlin"],"correctAnswer":2}]`,
			options: []string{"Paris", "Rome", "Berlin"},
			want:    "Rome",
		},
		{
			name:    "letter on blank slot",
			raw:     `[{"question":"Q","options":["Paris","","Rome","Berlin"],"answer":"B"}]`,
			options: []string{"Paris", "Rome", "Berlin"},
			want:    "Paris",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := mustParse(t, tt.raw).Questions[0]
			if !reflect.DeepEqual(q.Options, tt.options) {
				t.Fatalf("unexpected options %v", q.Options)
			}
			if q.CorrectAnswer != tt.want {
				t.Fatalf("expected answer %q, got %q", tt.want, q.CorrectAnswer)
			}
		})
	}
}

func TestParseLetterKeyedOptions(t *testing.T) {
	raw := `[{"question":"Pick B","options":{"B":"second","A":"first","D":"fourth","C":"third"},"answer":"B"}]`

	result := mustParse(t, raw)
	q := result.Questions[0]
	if !reflect.DeepEqual(q.Options, []string{"first", "second", "third", "fourth"}) {
		t.Fatalf("unexpected options %v", q.Options)
	}
	if q.CorrectAnswer != "second" {
		t.Fatalf("unexpected answer %q", q.CorrectAnswer)
	}
}

func TestParseTextList(t *testing.T) {
	raw := `1. What is the capital of France?
A) Berlin
B) Paris
C) Madrid
D) Rome
Correct answer: B

2. **Which gas do plants absorb?**
A. Oxygen
B. Nitrogen
C. Carbon dioxide
D. Helium
Answer: Carbon dioxide
Explanation: photosynthesis.`

	result := mustParse(t, raw)
	if result.ParsedAs != ParsedAsTextList {
		t.Fatalf("expected text list shape, got %s", result.ParsedAs)
	}
	want := []Question{
		{Text: "What is the capital of France?", Options: []string{"Berlin", "Paris", "Madrid", "Rome"}, CorrectAnswer: "Paris"},
		{Text: "Which gas do plants absorb?", Options: []string{"Oxygen", "Nitrogen", "Carbon dioxide", "Helium"}, CorrectAnswer: "Carbon dioxide"},
	}
	if !reflect.DeepEqual(result.Questions, want) {
		t.Fatalf("unexpected questions:\n%+v", result.Questions)
	}
}

func TestParseTextListAnswerWithLabelAndText(t *testing.T) {
	raw := "Question 1: Pick the even number\n(a) 1\n(b) 2\n(c) 3\n(d) 5\nCorrect answer: b) 2"

	result := mustParse(t, raw)
	if result.Questions[0].CorrectAnswer != "2" {
		t.Fatalf("unexpected answer %q", result.Questions[0].CorrectAnswer)
	}
}

func TestParseDefaults(t *testing.T) {
	raw := `[{"options":["x","y","z","w"]},{"question":"No options"}]`

	result := mustParse(t, raw)
	if result.Questions[0].Text != "Question 1" {
		t.Fatalf("expected placeholder text, got %q", result.Questions[0].Text)
	}
	if result.Questions[0].CorrectAnswer != "x" {
		t.Fatalf("expected first option as default answer, got %q", result.Questions[0].CorrectAnswer)
	}
	if result.Questions[1].Options == nil || len(result.Questions[1].Options) != 0 {
		t.Fatalf("expected empty options, got %#v", result.Questions[1].Options)
	}
	if result.Questions[1].CorrectAnswer != "" {
		t.Fatalf("expected empty answer without options, got %q", result.Questions[1].CorrectAnswer)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind apperrors.Kind
	}{
		{"blank", "   \n", apperrors.KindInvalidInput},
		{"refusal", "I cannot help with that.", apperrors.KindParse},
		{"broken json", `[{"question": "unterminated`, apperrors.KindParse},
		{"truncated array", `[{"question":"Q1","options":["a","b"],"answerText":"a"},{"question":"Q2","options":["a","b"],"answerText":"b"},{"question":"Q3","opt`, apperrors.KindParse},
		{"numbered prose", "I cannot help with that. Reasons:\n1. Policy\n2. Safety", apperrors.KindParse},
		{"empty array", "```json\n[]\n```", apperrors.KindEmptyResult},
		{"empty wrapper", `{"questions": []}`, apperrors.KindEmptyResult},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			if !apperrors.IsKind(err, tt.kind) {
				t.Fatalf("expected %s, got %v", tt.kind, err)
			}
		})
	}
}

func TestStripFences(t *testing.T) {
	got := StripFences("```json\n[1]\n```\n")
	if got != "[1]" {
		t.Fatalf("expected fences removed, got %q", got)
	}
	if got := StripFences("  plain  "); got != "plain" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
}
