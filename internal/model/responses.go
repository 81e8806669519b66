package model

import (
	"encoding/json"
	"fmt"
)

// Question types supported by test generation.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeOpenEnded      = "open_ended"
)

// ValidQuestionType reports whether s is a supported question type.
func ValidQuestionType(s string) bool {
	switch s {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeOpenEnded:
		return true
	}
	return false
}

// Example is one worked example inside an explanation.
type Example struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Explanation is the structured result of explanation generation.
type Explanation struct {
	Content           string    `json:"content"`
	Examples          []Example `json:"examples"`
	RelatedTopics     []string  `json:"related_topics"`
	Difficulty        int       `json:"difficulty"`
	EstimatedReadTime int       `json:"estimated_read_time"` // minutes
}

// Answer is a correct answer that may be a single string or a list of
// strings on the wire.
type Answer struct {
	Values []string
	Multi  bool
}

// SingleAnswer builds an Answer holding one string.
func SingleAnswer(s string) Answer {
	return Answer{Values: []string{s}}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		return json.Marshal(a.Values)
	}
	if len(a.Values) == 0 {
		return json.Marshal("")
	}
	return json.Marshal(a.Values[0])
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		a.Values = []string{single}
		a.Multi = false
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		a.Values = list
		a.Multi = true
		return nil
	}

	return fmt.Errorf("correct answer must be a string or a list of strings")
}

// IsEmpty reports whether no answer value is present.
func (a Answer) IsEmpty() bool {
	for _, v := range a.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// GeneratedQuestion is one structured test question.
type GeneratedQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Content       string   `json:"content"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer Answer   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Difficulty    int      `json:"difficulty"`
	Topic         string   `json:"topic"`
	Points        int      `json:"points"`
}

// GeneratedTest is the structured result of test generation.
type GeneratedTest struct {
	Title        string              `json:"title"`
	Subject      string              `json:"subject"`
	Topics       []string            `json:"topics"`
	Questions    []GeneratedQuestion `json:"questions"`
	TimeLimit    int                 `json:"time_limit"` // minutes
	PassingScore int                 `json:"passing_score"`
}

// DailyTask is one study task in a learning plan.
type DailyTask struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Subject       string `json:"subject"`
	Type          string `json:"type"` // lesson|test|practice
	EstimatedTime int    `json:"estimatedTime"`
	Priority      string `json:"priority"` // high|medium|low
	DueDate       string `json:"dueDate,omitempty"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
}

// WeeklyGoal is one target in a learning plan.
type WeeklyGoal struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TargetDate  string `json:"targetDate,omitempty"`
	Progress    int    `json:"progress"`
	Completed   bool   `json:"completed"`
}

// LearningPlan is the structured result of plan generation.
type LearningPlan struct {
	DailyTasks      []DailyTask  `json:"daily_tasks"`
	WeeklyGoals     []WeeklyGoal `json:"weekly_goals"`
	Recommendations []string     `json:"recommendations"`
}

// ConversationMessage is one turn kept in a conversation context window.
type ConversationMessage struct {
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Timestamp string            `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// HealthResponse reports service and dependency status.
type HealthResponse struct {
	Status         string `json:"status"`
	Service        string `json:"service"`
	Version        string `json:"version"`
	EndpointStatus string `json:"endpoint_status"`
	CacheStatus    string `json:"cache_status"`
}
