package quiz

// Question is a single multiple-choice item served to clients.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// ParsedAs records which extraction strategy produced a parse result.
type ParsedAs int

const (
	ParsedAsArray ParsedAs = iota + 1
	ParsedAsObject
	ParsedAsTextList
)

func (p ParsedAs) String() string {
	switch p {
	case ParsedAsArray:
		return "array"
	case ParsedAsObject:
		return "object"
	case ParsedAsTextList:
		return "text_list"
	default:
		return "unknown"
	}
}

type ParseResult struct {
	Questions []Question
	ParsedAs  ParsedAs
}
