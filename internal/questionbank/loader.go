package questionbank

import (
	"bytes"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultWeight = 1.0

var validate = validator.New()

// Parse decodes and validates one bank document. source is only used in
// error messages.
func Parse(data []byte, source string) (*Bank, error) {
	var file bankFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, errors.Wrapf(err, "decoding question bank %s", source)
	}
	if err := validate.Struct(&file); err != nil {
		return nil, errors.Wrapf(err, "validating question bank %s", source)
	}
	bank, err := build(file)
	if err != nil {
		return nil, errors.Wrapf(err, "question bank %s", source)
	}
	return bank, nil
}

func build(file bankFile) (*Bank, error) {
	declared := make(map[string]bool, len(file.Categories))
	for _, c := range file.Categories {
		if declared[c.ID] {
			return nil, errors.Errorf("duplicate category %q", c.ID)
		}
		declared[c.ID] = true
	}

	intakeKeys := make(map[string]bool, len(file.Intake))
	for _, f := range file.Intake {
		if intakeKeys[f.Key] {
			return nil, errors.Errorf("duplicate intake field %q", f.Key)
		}
		intakeKeys[f.Key] = true
		if f.Kind == IntakeScale && (f.Min == nil || f.Max == nil || *f.Min > *f.Max) {
			return nil, errors.Errorf("intake field %q: scale fields need min <= max", f.Key)
		}
	}

	questions := make([]Question, len(file.Questions))
	byID := make(map[string]int, len(file.Questions))
	for i, q := range file.Questions {
		if _, dup := byID[q.ID]; dup {
			return nil, errors.Errorf("duplicate question id %q", q.ID)
		}
		byID[q.ID] = i
		if q.Weight == 0 {
			q.Weight = defaultWeight
		}

		switch q.Kind {
		case KindStatement:
			if q.Category == "" {
				return nil, errors.Errorf("statement %q has no category", q.ID)
			}
			if !declared[q.Category] {
				return nil, errors.Errorf("statement %q uses undeclared category %q", q.ID, q.Category)
			}
			if len(q.Options) > 0 {
				return nil, errors.Errorf("statement %q must not declare options", q.ID)
			}
		case KindScenario:
			if len(q.Options) == 0 {
				return nil, errors.Errorf("scenario %q has no options", q.ID)
			}
			if q.Category != "" || q.ReverseScored {
				return nil, errors.Errorf("scenario %q: category and reverse_scored apply to statements only", q.ID)
			}
			seen := make(map[string]bool, len(q.Options))
			opts := make([]ScenarioOption, len(q.Options))
			for j, opt := range q.Options {
				if seen[opt.ID] {
					return nil, errors.Errorf("scenario %q has duplicate option %q", q.ID, opt.ID)
				}
				seen[opt.ID] = true
				touched := make(map[string]bool, len(opt.Categories))
				for _, cat := range opt.Categories {
					if !declared[cat] {
						return nil, errors.Errorf("option %q of scenario %q uses undeclared category %q", opt.ID, q.ID, cat)
					}
					if touched[cat] {
						return nil, errors.Errorf("option %q of scenario %q lists category %q twice", opt.ID, q.ID, cat)
					}
					touched[cat] = true
				}
				if opt.Weight == 0 {
					opt.Weight = defaultWeight
				}
				opt.QuestionID = q.ID
				opts[j] = cloneOption(opt)
			}
			sort.SliceStable(opts, func(a, b int) bool {
				if opts[a].Order != opts[b].Order {
					return opts[a].Order < opts[b].Order
				}
				return opts[a].ID < opts[b].ID
			})
			q.Options = opts
		}
		questions[i] = q
	}

	sort.SliceStable(questions, func(a, b int) bool {
		if questions[a].Order != questions[b].Order {
			return questions[a].Order < questions[b].Order
		}
		return questions[a].ID < questions[b].ID
	})
	for i, q := range questions {
		byID[q.ID] = i
	}

	categories := make([]Category, len(file.Categories))
	copy(categories, file.Categories)
	sort.Slice(categories, func(a, b int) bool { return categories[a].ID < categories[b].ID })

	intake := make([]IntakeField, len(file.Intake))
	copy(intake, file.Intake)

	return &Bank{
		assessmentType: file.Type,
		version:        file.Version,
		title:          file.Title,
		retakeAfter:    time.Duration(file.RetakeAfterDays) * 24 * time.Hour,
		categories:     categories,
		intake:         intake,
		questions:      questions,
		byID:           byID,
	}, nil
}

// withRetakeAfter returns a copy of the bank with a different cooldown.
func (b *Bank) withRetakeAfter(d time.Duration) *Bank {
	clone := *b
	clone.retakeAfter = d
	return &clone
}
