package practice

import "signs-study-service/internal/domain"

// DefaultDistractors is the number of wrong options per flashcard question.
const DefaultDistractors = 3

// Generate builds one question per card, in input order. Distractors are other
// cards' titles drawn without replacement; with few cards a question simply
// has fewer options.
func Generate(cards []domain.Sign, distractorCount int, rnd Rand) []domain.QuizQuestion {
	if len(cards) == 0 {
		return nil
	}
	if distractorCount < 0 {
		distractorCount = 0
	}

	questions := make([]domain.QuizQuestion, 0, len(cards))
	for i, card := range cards {
		others := make([]string, 0, len(cards)-1)
		seen := map[string]bool{card.Title: true}
		for j, other := range cards {
			if j == i || seen[other.Title] {
				continue
			}
			seen[other.Title] = true
			others = append(others, other.Title)
		}
		shuffle(rnd, others)
		if len(others) > distractorCount {
			others = others[:distractorCount]
		}

		options := append([]string{card.Title}, others...)
		shuffle(rnd, options)

		correct := 0
		for k, opt := range options {
			if opt == card.Title {
				correct = k
				break
			}
		}
		questions = append(questions, domain.QuizQuestion{
			Prompt:        card.Description,
			Options:       options,
			CorrectOption: correct,
			SignID:        card.ID,
		})
	}
	return questions
}
