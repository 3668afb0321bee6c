package questionbank

import "time"

// Kind distinguishes Likert statements from multiple-choice scenarios.
type Kind string

const (
	KindStatement Kind = "statement"
	KindScenario  Kind = "scenario"
)

// Intake field kinds.
const (
	IntakeText  = "text"
	IntakeScale = "scale"
	IntakeBool  = "bool"
)

// Likert bounds for statement answers.
const (
	MinLikert = 1
	MaxLikert = 5
)

// Category is one scored dimension of an assessment.
type Category struct {
	ID    string `yaml:"id" validate:"required"`
	Label string `yaml:"label" validate:"required"`
}

// ScenarioOption is a selectable answer of a scenario question. Selecting it
// adds Weight to every category in Categories.
type ScenarioOption struct {
	ID         string   `yaml:"id" validate:"required"`
	QuestionID string   `yaml:"-"`
	Text       string   `yaml:"text" validate:"required"`
	Categories []string `yaml:"categories" validate:"required,min=1,dive,required"`
	Weight     float64  `yaml:"weight" validate:"gte=0"`
	Order      int      `yaml:"order"`
}

type Question struct {
	ID            string           `yaml:"id" validate:"required"`
	Kind          Kind             `yaml:"kind" validate:"required,oneof=statement scenario"`
	Text          string           `yaml:"text" validate:"required"`
	Category      string           `yaml:"category"`
	ReverseScored bool             `yaml:"reverse_scored"`
	Weight        float64          `yaml:"weight" validate:"gte=0"`
	Order         int              `yaml:"order"`
	Options       []ScenarioOption `yaml:"options" validate:"dive"`
}

// IntakeField describes one micro-intake attribute collected before scoring.
type IntakeField struct {
	Key       string `yaml:"key" validate:"required"`
	Kind      string `yaml:"kind" validate:"required,oneof=text scale bool"`
	Min       *int   `yaml:"min"`
	Max       *int   `yaml:"max"`
	MaxLength int    `yaml:"max_length" validate:"gte=0"`
	Required  bool   `yaml:"required"`
}

// bankFile is the on-disk layout of a bank.
type bankFile struct {
	Type            string        `yaml:"type" validate:"required"`
	Version         int           `yaml:"version" validate:"required,gt=0"`
	Title           string        `yaml:"title" validate:"required"`
	RetakeAfterDays int           `yaml:"retake_after_days" validate:"required,gt=0"`
	Categories      []Category    `yaml:"categories" validate:"required,min=1,dive"`
	Intake          []IntakeField `yaml:"intake" validate:"dive"`
	Questions       []Question    `yaml:"questions" validate:"required,min=1,dive"`
}

// Bank is the immutable question bank of one assessment type. Accessors hand
// out copies so callers cannot mutate the loaded configuration.
type Bank struct {
	assessmentType string
	version        int
	title          string
	retakeAfter    time.Duration
	categories     []Category
	intake         []IntakeField
	questions      []Question
	byID           map[string]int
}

func (b *Bank) Type() string               { return b.assessmentType }
func (b *Bank) Version() int               { return b.version }
func (b *Bank) Title() string              { return b.title }
func (b *Bank) RetakeAfter() time.Duration { return b.retakeAfter }
func (b *Bank) Len() int                   { return len(b.questions) }

// Categories returns the declared categories ordered by id.
func (b *Bank) Categories() []Category {
	out := make([]Category, len(b.categories))
	copy(out, b.categories)
	return out
}

// CategoryIDs returns the declared category ids in lexicographic order.
func (b *Bank) CategoryIDs() []string {
	out := make([]string, len(b.categories))
	for i, c := range b.categories {
		out[i] = c.ID
	}
	return out
}

// CategoryLabel returns the display label of a category, or the id itself.
func (b *Bank) CategoryLabel(id string) string {
	for _, c := range b.categories {
		if c.ID == id {
			return c.Label
		}
	}
	return id
}

func (b *Bank) Intake() []IntakeField {
	out := make([]IntakeField, len(b.intake))
	copy(out, b.intake)
	return out
}

// Questions returns the ordered question list.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

// Question looks up a question by id.
func (b *Bank) Question(id string) (Question, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return Question{}, false
	}
	return cloneQuestion(b.questions[idx]), true
}

// ScenarioOptions returns the ordered options of a scenario question. It
// returns nil for statements and unknown ids.
func (b *Bank) ScenarioOptions(questionID string) []ScenarioOption {
	q, ok := b.Question(questionID)
	if !ok {
		return nil
	}
	return q.Options
}

// Option finds a single option of a scenario question.
func (b *Bank) Option(questionID, optionID string) (ScenarioOption, bool) {
	idx, ok := b.byID[questionID]
	if !ok {
		return ScenarioOption{}, false
	}
	for _, opt := range b.questions[idx].Options {
		if opt.ID == optionID {
			return cloneOption(opt), true
		}
	}
	return ScenarioOption{}, false
}

func cloneQuestion(q Question) Question {
	if q.Options != nil {
		opts := make([]ScenarioOption, len(q.Options))
		for i, o := range q.Options {
			opts[i] = cloneOption(o)
		}
		q.Options = opts
	}
	return q
}

func cloneOption(o ScenarioOption) ScenarioOption {
	cats := make([]string, len(o.Categories))
	copy(cats, o.Categories)
	o.Categories = cats
	return o
}
