package domain

import (
	"sort"
	"time"
)

// Category groups road signs (warning, regulatory, ...).
type Category struct {
	ID    int64  `json:"id"`
	Key   string `json:"key"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
}

// Sign is immutable reference data for a single road sign.
type Sign struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"categoryId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageRef    string `json:"imageRef"`
}

// SignProgress is the per (user, sign) mastery record.
type SignProgress struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	SignID         int64     `json:"signId"`
	CorrectCount   int       `json:"correctCount"`
	IncorrectCount int       `json:"incorrectCount"`
	Streak         int       `json:"streak"`
	Mastered       bool      `json:"mastered"`
	LastReviewed   time.Time `json:"lastReviewed"`
}

// ChapterProgress tracks lesson completion for one study topic.
type ChapterProgress struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	TopicID          int64     `json:"topicId"`
	CompletedLessons int       `json:"completedLessons"`
	LastAccessed     time.Time `json:"lastAccessed"`
}

// Topic is a chapter of the driving guide.
type Topic struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// Lesson belongs to a topic and is read in Order.
type Lesson struct {
	ID      int64  `json:"id"`
	TopicID int64  `json:"topicId"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// QuizQuestion is a multiple-choice question; CorrectOption indexes Options.
type QuizQuestion struct {
	ID            int64    `json:"id,omitempty"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
	SignID        int64    `json:"signId,omitempty"`
}

// MockTest is a full-length practice exam.
type MockTest struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuizQuestion `json:"questions"`
}

// Catalog bundles all reference content. It is loaded once and cached.
type Catalog struct {
	Categories    []Category               `json:"categories"`
	Signs         []Sign                   `json:"signs"`
	Topics        []Topic                  `json:"topics"`
	Lessons       []Lesson                 `json:"lessons"`
	LessonQuizzes map[int64][]QuizQuestion `json:"lessonQuizzes"`
	TopicQuizzes  map[int64][]QuizQuestion `json:"topicQuizzes"`
	MockTests     []MockTest               `json:"mockTests"`
}

// SignsInCategory returns the signs of a category in catalog order.
func (c Catalog) SignsInCategory(categoryID int64) []Sign {
	var out []Sign
	for _, s := range c.Signs {
		if s.CategoryID == categoryID {
			out = append(out, s)
		}
	}
	return out
}

// LessonsForTopic returns the lessons of a topic sorted by Order.
func (c Catalog) LessonsForTopic(topicID int64) []Lesson {
	var out []Lesson
	for _, l := range c.Lessons {
		if l.TopicID == topicID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Lesson looks up a lesson by ID.
func (c Catalog) Lesson(lessonID int64) Lookup[Lesson] {
	for _, l := range c.Lessons {
		if l.ID == lessonID {
			return Found[Lesson]{Record: l}
		}
	}
	return Absent[Lesson]{}
}

// MockTest looks up an exam by ID.
func (c Catalog) MockTest(testID int64) Lookup[MockTest] {
	for _, t := range c.MockTests {
		if t.ID == testID {
			return Found[MockTest]{Record: t}
		}
	}
	return Absent[MockTest]{}
}
