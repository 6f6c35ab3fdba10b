package catalog

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/finquest/finquest/core"
)

var (
	quizQuestionTag  = "quizquestion"
	quizQuestionText = "each question needs a prompt, at least two options and a correct option index within range"
)

// RegisterValidators registers catalog-specific validations.
// Must be called once at startup after core.InitValidators.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(quizStructValidation, NewQuiz{})
	core.RegisterCustomTranslation(validate, translator, quizQuestionTag, quizQuestionText)
}

// quizStructValidation checks every question of a NewQuiz: a prompt, at least
// two options and a correct index pointing at one of them.
func quizStructValidation(sl validator.StructLevel) {
	nq, ok := sl.Current().Interface().(NewQuiz)
	if !ok {
		return
	}
	for i, q := range nq.Questions {
		if q.Prompt == "" || len(q.Options) < 2 || q.Correct < 0 || q.Correct >= len(q.Options) {
			field := fmt.Sprintf("questions[%d]", i)
			sl.ReportError(q, field, field, quizQuestionTag, "")
			return
		}
	}
}
