package cli

import (
	"fmt"

	"signs-study-service/internal/domain"
)

// sampleCatalog is served when no Postgres catalog is configured; swap it for
// the Postgres loader (and import-signs) in production.
func sampleCatalog() domain.Catalog {
	signs := []domain.Sign{
		{ID: 1, CategoryID: 1, Title: "Stop", Description: "Come to a complete stop at the line"},
		{ID: 2, CategoryID: 1, Title: "Yield", Description: "Give way to traffic on the main road"},
		{ID: 3, CategoryID: 1, Title: "No Entry", Description: "Vehicles may not enter this road"},
		{ID: 4, CategoryID: 1, Title: "Speed Limit 50", Description: "Maximum speed is 50 km/h"},
		{ID: 5, CategoryID: 2, Title: "Slippery Road", Description: "Road surface may be slippery"},
		{ID: 6, CategoryID: 2, Title: "Sharp Curve Right", Description: "The road bends sharply to the right"},
		{ID: 7, CategoryID: 2, Title: "Pedestrian Crossing Ahead", Description: "Be ready to stop for pedestrians"},
		{ID: 8, CategoryID: 2, Title: "Deer Crossing", Description: "Wild animals may cross the road"},
		{ID: 9, CategoryID: 3, Title: "Hospital", Description: "A hospital is nearby"},
		{ID: 10, CategoryID: 3, Title: "Parking", Description: "Parking is permitted here"},
	}

	return domain.Catalog{
		Categories: []domain.Category{
			{ID: 1, Key: "regulatory", Title: "Regulatory Signs", Icon: "octagon"},
			{ID: 2, Key: "warning", Title: "Warning Signs", Icon: "triangle"},
			{ID: 3, Key: "information", Title: "Information Signs", Icon: "square"},
		},
		Signs: signs,
		Topics: []domain.Topic{
			{ID: 1, Title: "Getting Started", Order: 1},
			{ID: 2, Title: "Rules of the Road", Order: 2},
		},
		Lessons: []domain.Lesson{
			{ID: 1, TopicID: 1, Title: "How to Use This Guide", Content: "Read each lesson, then take its quiz.", Order: 1},
			{ID: 2, TopicID: 1, Title: "Getting Your Licence", Content: "The knowledge test comes before the road test.", Order: 2},
			{ID: 3, TopicID: 1, Title: "Your Responsibilities", Content: "Drivers must carry licence, registration and insurance.", Order: 3},
			{ID: 4, TopicID: 2, Title: "Right of Way", Content: "Yield to the vehicle on your right at an uncontrolled intersection.", Order: 1},
			{ID: 5, TopicID: 2, Title: "Speed", Content: "Drive at a speed that suits the conditions.", Order: 2},
		},
		LessonQuizzes: map[int64][]domain.QuizQuestion{
			3: {{ID: 1, Prompt: "Which document must you carry while driving?", Options: []string{"Passport", "Driver's licence", "Birth certificate"}, CorrectOption: 1}},
			4: {{ID: 2, Prompt: "At an uncontrolled intersection, yield to the vehicle on your", Options: []string{"Left", "Right"}, CorrectOption: 1}},
			5: {{ID: 3, Prompt: "The posted limit applies", Options: []string{"In ideal conditions", "At all times regardless of weather"}, CorrectOption: 0}},
		},
		TopicQuizzes: map[int64][]domain.QuizQuestion{
			1: {{ID: 1, Prompt: "Which document must you carry while driving?", Options: []string{"Passport", "Driver's licence", "Birth certificate"}, CorrectOption: 1}},
			2: {
				{ID: 2, Prompt: "At an uncontrolled intersection, yield to the vehicle on your", Options: []string{"Left", "Right"}, CorrectOption: 1},
				{ID: 3, Prompt: "The posted limit applies", Options: []string{"In ideal conditions", "At all times regardless of weather"}, CorrectOption: 0},
			},
		},
		MockTests: []domain.MockTest{sampleMockTest(signs)},
	}
}

// sampleMockTest builds a 40-question exam from the signs, rotating the
// correct answer through every option slot.
func sampleMockTest(signs []domain.Sign) domain.MockTest {
	test := domain.MockTest{ID: 1, Title: "Mock Test 1", Description: "40 questions, 32 correct to pass"}
	for i := 0; i < 40; i++ {
		sign := signs[i%len(signs)]
		correct := i % 4
		options := make([]string, 4)
		for slot, offset := 0, 1; slot < 4; slot++ {
			if slot == correct {
				options[slot] = sign.Title
				continue
			}
			options[slot] = signs[(i+offset)%len(signs)].Title
			offset++
		}
		test.Questions = append(test.Questions, domain.QuizQuestion{
			ID:            int64(i + 1),
			Prompt:        fmt.Sprintf("Which sign means: %s?", sign.Description),
			Options:       options,
			CorrectOption: correct,
			SignID:        sign.ID,
		})
	}
	return test
}
