// Package model defines the request and result records exchanged with
// callers of the generation services.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ExplanationRequest asks for an explanation of a topic.
type ExplanationRequest struct {
	Topic                string   `json:"topic"`
	Subject              string   `json:"subject"`
	StudentLevel         int      `json:"student_level"`
	Context              string   `json:"context,omitempty"`
	PreviousExplanations []string `json:"previous_explanations,omitempty"`
}

func (r *ExplanationRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Subject = strings.TrimSpace(r.Subject)

	if r.Topic == "" || len(r.Topic) > 500 {
		return errors.New("topic is required and must be at most 500 characters")
	}
	if r.Subject == "" || len(r.Subject) > 100 {
		return errors.New("subject is required and must be at most 100 characters")
	}
	if r.StudentLevel < 1 || r.StudentLevel > 12 {
		return errors.New("student_level must be between 1 and 12")
	}
	if len(r.Context) > 2000 {
		return errors.New("context must be at most 2000 characters")
	}
	if len(r.PreviousExplanations) > 5 {
		return errors.New("at most 5 previous explanations are allowed")
	}
	return nil
}

// TestRequest asks for a generated test.
type TestRequest struct {
	Subject       string   `json:"subject"`
	Topics        []string `json:"topics"`
	Difficulty    int      `json:"difficulty"`
	QuestionCount int      `json:"question_count"`
	QuestionTypes []string `json:"question_types,omitempty"`
	StudentLevel  int      `json:"student_level,omitempty"`
}

func (r *TestRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" || len(r.Subject) > 100 {
		return errors.New("subject is required and must be at most 100 characters")
	}

	topics := make([]string, 0, len(r.Topics))
	for _, t := range r.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	r.Topics = topics
	if len(r.Topics) < 1 || len(r.Topics) > 10 {
		return errors.New("between 1 and 10 topics are required")
	}

	if r.Difficulty < 1 || r.Difficulty > 10 {
		return errors.New("difficulty must be between 1 and 10")
	}
	if r.QuestionCount < 1 || r.QuestionCount > 50 {
		return errors.New("question_count must be between 1 and 50")
	}

	if len(r.QuestionTypes) == 0 {
		r.QuestionTypes = []string{QuestionTypeMultipleChoice}
	}
	seen := make(map[string]bool, len(r.QuestionTypes))
	for _, qt := range r.QuestionTypes {
		if !ValidQuestionType(qt) {
			return fmt.Errorf("unknown question type %q", qt)
		}
		if seen[qt] {
			return fmt.Errorf("duplicate question type %q", qt)
		}
		seen[qt] = true
	}

	if r.StudentLevel != 0 && (r.StudentLevel < 1 || r.StudentLevel > 12) {
		return errors.New("student_level must be between 1 and 12")
	}
	return nil
}

// KnowledgeGap is one identified weakness used to steer a learning plan.
type KnowledgeGap struct {
	Subject    string `json:"subject"`
	Topic      string `json:"topic"`
	Severity   string `json:"severity"`
	ErrorCount int    `json:"error_count"`
}

// Performance holds a student's current metrics. Pointers distinguish
// absent fields from zero values when formatting prompts.
type Performance struct {
	OverallScore   *float64           `json:"overall_score,omitempty"`
	SubjectScores  map[string]float64 `json:"subject_scores,omitempty"`
	TestsCompleted *int               `json:"tests_completed,omitempty"`
	StudyTime      *int               `json:"study_time,omitempty"`
}

// LearningPlanRequest asks for a personalized study plan.
type LearningPlanRequest struct {
	StudentID          string         `json:"student_id"`
	StudentLevel       int            `json:"student_level"`
	Subjects           []string       `json:"subjects"`
	ExamType           string         `json:"exam_type,omitempty"`
	ExamDate           string         `json:"exam_date,omitempty"` // YYYY-MM-DD
	KnowledgeGaps      []KnowledgeGap `json:"knowledge_gaps,omitempty"`
	CurrentPerformance *Performance   `json:"current_performance,omitempty"`
	PlanningDays       int            `json:"planning_days,omitempty"`
}

func (r *LearningPlanRequest) Validate() error {
	if strings.TrimSpace(r.StudentID) == "" {
		return errors.New("student_id is required")
	}
	if r.StudentLevel < 1 || r.StudentLevel > 12 {
		return errors.New("student_level must be between 1 and 12")
	}

	subjects := make([]string, 0, len(r.Subjects))
	for _, s := range r.Subjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	r.Subjects = subjects
	if len(r.Subjects) < 1 || len(r.Subjects) > 10 {
		return errors.New("between 1 and 10 subjects are required")
	}

	if r.PlanningDays == 0 {
		r.PlanningDays = 7
	}
	if r.PlanningDays < 1 || r.PlanningDays > 30 {
		return errors.New("planning_days must be between 1 and 30")
	}
	return nil
}

// QuestionResult is the outcome of one answered question in a past test.
type QuestionResult struct {
	Correct bool   `json:"correct"`
	Topic   string `json:"topic"`
}

// TestResult is one completed test used for knowledge-gap analysis.
type TestResult struct {
	Subject         string           `json:"subject"`
	DetailedResults []QuestionResult `json:"detailed_results"`
}

// AnalyzeGapsRequest asks for knowledge gaps derived from test results.
type AnalyzeGapsRequest struct {
	StudentID   string       `json:"student_id"`
	Subjects    []string     `json:"subjects"`
	TestResults []TestResult `json:"test_results"`
}

func (r *AnalyzeGapsRequest) Validate() error {
	if strings.TrimSpace(r.StudentID) == "" {
		return errors.New("student_id is required")
	}
	if len(r.Subjects) == 0 {
		return errors.New("at least one subject is required")
	}
	return nil
}
