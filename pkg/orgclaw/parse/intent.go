package parse

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// TaskType is the coarse category the parser model assigns to a message.
type TaskType string

const (
	TaskReminder  TaskType = "reminder"
	TaskEvent     TaskType = "event"
	TaskRecurring TaskType = "recurring"
	TaskList      TaskType = "list"
	TaskQuery     TaskType = "query"
	TaskMedia     TaskType = "media"
	TaskGeneral   TaskType = "general"
)

var validTaskTypes = map[TaskType]bool{
	TaskReminder:  true,
	TaskEvent:     true,
	TaskRecurring: true,
	TaskList:      true,
	TaskQuery:     true,
	TaskMedia:     true,
	TaskGeneral:   true,
}

// Entity is a typed fragment the parser model extracted from the message.
type Entity struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// IntentClassification is the JSON contract with the parser model profile.
type IntentClassification struct {
	TaskType              TaskType `json:"task_type"`
	Confidence            float64  `json:"confidence"`
	Entities              []Entity `json:"entities,omitempty"`
	RequiresClarification bool     `json:"requires_clarification"`
	SuggestedFollowUp     string   `json:"suggested_follow_up,omitempty"`
}

// ClarificationThreshold is the confidence below which the router asks the
// user instead of acting.
const ClarificationThreshold = 0.7

var errNoJSON = errors.New("parse: no JSON object in model output")

// DecodeIntent parses the parser model's raw output, tolerating markdown
// fences and prose around the JSON object. Unknown task types degrade to
// general; confidence is clamped to [0,1] and the clarification flag is
// forced on below the threshold.
func DecodeIntent(raw string) (*IntentClassification, error) {
	obj, ok := extractJSONObject(raw)
	if !ok {
		return nil, errNoJSON
	}
	var ic IntentClassification
	if err := json.Unmarshal([]byte(obj), &ic); err != nil {
		return nil, err
	}
	if !validTaskTypes[ic.TaskType] {
		ic.TaskType = TaskGeneral
	}
	if ic.Confidence < 0 {
		ic.Confidence = 0
	}
	if ic.Confidence > 1 {
		ic.Confidence = 1
	}
	if ic.Confidence < ClarificationThreshold {
		ic.RequiresClarification = true
	}
	return &ic, nil
}

// extractJSONObject returns the outermost {...} span of s.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

var reLangSwitch = regexp.MustCompile(`\b(?:falar|fala|fale|responder?|responda|hablar|habla|hablame|speak|talk|answer|reply)(?: comigo| conmigo| to me| with me)?(?: em| en| in)? ` +
	`(portugues do brasil|portugues brasileiro|brasileiro|portugues de portugal|portugues europeu|portugues|portuguese|espanhol|espanol|spanish|ingles|english)\b`)

// LanguageTag holds the result of a language-switch phrase.
type LanguageTag string

const (
	LangPortuguesePT LanguageTag = "pt-PT"
	LangPortugueseBR LanguageTag = "pt-BR"
	LangSpanish      LanguageTag = "es"
	LangEnglish      LanguageTag = "en"
)

// LanguageSwitch detects explicit "speak X" requests. Bare "português" maps
// to pt-PT; callers already on pt-BR keep their variant for bare matches by
// checking Specific.
type LanguageSwitchResult struct {
	Language LanguageTag
	// Specific is false for bare "português"/"portuguese" where the regional
	// variant was not stated.
	Specific bool
}

func LanguageSwitch(text string) (LanguageSwitchResult, bool) {
	folded := foldAligned([]rune(strings.TrimSpace(text)))
	m := reLangSwitch.FindStringSubmatch(folded)
	if m == nil {
		return LanguageSwitchResult{}, false
	}
	switch m[1] {
	case "portugues do brasil", "portugues brasileiro", "brasileiro":
		return LanguageSwitchResult{Language: LangPortugueseBR, Specific: true}, true
	case "portugues de portugal", "portugues europeu":
		return LanguageSwitchResult{Language: LangPortuguesePT, Specific: true}, true
	case "portugues", "portuguese":
		return LanguageSwitchResult{Language: LangPortuguesePT, Specific: false}, true
	case "espanhol", "espanol", "spanish":
		return LanguageSwitchResult{Language: LangSpanish, Specific: true}, true
	case "ingles", "english":
		return LanguageSwitchResult{Language: LangEnglish, Specific: true}, true
	}
	return LanguageSwitchResult{}, false
}
