// Package prompt renders the message sequences sent upstream for each
// generation flow. Template selection adapts to student grade level;
// the rendered text is otherwise opaque to the rest of the service.
package prompt

import (
	"fmt"
	"strings"

	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/model"
)

// Explanation builds the explanation prompt. Grades 1-5 get the
// simplified variant, grades 9-12 the advanced one.
func Explanation(topic, subject string, studentLevel int, context string) []llm.Message {
	switch {
	case studentLevel <= 5:
		return []llm.Message{
			{Role: llm.RoleSystem, Content: systemSimplification},
			{Role: llm.RoleUser, Content: fmt.Sprintf(userSimplification, studentLevel, topic, subject)},
		}
	case studentLevel >= 9:
		return []llm.Message{
			{Role: llm.RoleSystem, Content: systemAdvanced},
			{Role: llm.RoleUser, Content: fmt.Sprintf(userAdvanced, studentLevel, topic, subject, contextSection(context))},
		}
	default:
		return []llm.Message{
			{Role: llm.RoleSystem, Content: systemExplanation},
			{Role: llm.RoleUser, Content: fmt.Sprintf(userExplanation, studentLevel, topic, subject, contextSection(context))},
		}
	}
}

// Examples builds the standalone example-generation prompt.
func Examples(topic, subject string, studentLevel, numExamples int, context string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemExampleGeneration},
		{Role: llm.RoleUser, Content: fmt.Sprintf(userExampleGeneration,
			numExamples, topic, subject, studentLevel, contextSection(context))},
	}
}

// Conversational builds a follow-up prompt carrying the last 5 turns of
// history.
func Conversational(question string, history []model.ConversationMessage) []llm.Message {
	if len(history) > 5 {
		history = history[len(history)-5:]
	}

	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", titleRole(msg.Role), msg.Content))
	}

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemConversational},
		{Role: llm.RoleUser, Content: fmt.Sprintf(userConversational, strings.Join(lines, "\n"), question)},
	}
}

// Questions builds the prompt for one batch of same-type test questions.
func Questions(questionType string, count int, subject string, topics []string, difficulty, studentLevel int) []llm.Message {
	var format string
	switch questionType {
	case model.QuestionTypeMultipleChoice:
		format = formatMultipleChoice
	case model.QuestionTypeTrueFalse:
		format = formatTrueFalse
	default:
		format = formatOpenEnded
	}

	levelInfo := ""
	if studentLevel > 0 {
		levelInfo = fmt.Sprintf(" for grade %d students", studentLevel)
	}

	user := fmt.Sprintf(userQuestionGeneration,
		count,
		strings.ReplaceAll(questionType, "_", " "),
		subject,
		levelInfo,
		strings.Join(topics, ", "),
		difficulty,
		format,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemQuestionGeneration},
		{Role: llm.RoleUser, Content: user},
	}
}

// PlanParams carries the rendered inputs of a learning-plan prompt.
type PlanParams struct {
	StudentLevel   int
	Subjects       []string
	ExamType       string
	ExamDate       string
	DaysUntilExam  string
	KnowledgeGaps  string
	Performance    string
	PlanningDays   int
	NumWeeklyGoals int
}

// LearningPlan builds the plan-generation prompt.
func LearningPlan(p PlanParams) []llm.Message {
	examType := p.ExamType
	if examType == "" {
		examType = "General assessment"
	}
	examDate := p.ExamDate
	if examDate == "" {
		examDate = "Not specified"
	}
	daysUntil := p.DaysUntilExam
	if daysUntil == "" {
		daysUntil = "Not specified"
	}

	user := fmt.Sprintf(userPlanGeneration,
		p.StudentLevel,
		strings.Join(p.Subjects, ", "),
		examType,
		examDate,
		daysUntil,
		p.KnowledgeGaps,
		p.Performance,
		p.PlanningDays,
		p.NumWeeklyGoals,
	)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: systemPlanGeneration},
		{Role: llm.RoleUser, Content: user},
	}
}

func contextSection(context string) string {
	if context == "" {
		return ""
	}
	return "\nAdditional Context: " + context
}

func titleRole(role string) string {
	if role == "" {
		return role
	}
	return strings.ToUpper(role[:1]) + role[1:]
}
