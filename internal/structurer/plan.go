package structurer

import (
	"encoding/json"

	"github.com/google/uuid"

	"tutorgate-ai/internal/model"
)

// DefaultPlanRecommendations are returned when generated plan text cannot
// be parsed at all.
var DefaultPlanRecommendations = []string{
	"Review fundamental concepts regularly",
	"Practice with varied problem types",
	"Take regular breaks to maintain focus",
}

// Plan parses raw generated text into a learning plan. Missing task and
// goal fields are filled with defaults; unparseable text degrades to an
// empty plan carrying the default recommendations instead of failing.
func Plan(rawText string) model.LearningPlan {
	stripped := StripCodeFence(rawText)

	var plan model.LearningPlan
	if err := json.Unmarshal([]byte(stripped), &plan); err != nil {
		return DefaultPlan()
	}

	for i := range plan.DailyTasks {
		if plan.DailyTasks[i].ID == "" {
			plan.DailyTasks[i].ID = uuid.NewString()
		}
		if plan.DailyTasks[i].Status == "" {
			plan.DailyTasks[i].Status = "pending"
		}
	}
	for i := range plan.WeeklyGoals {
		if plan.WeeklyGoals[i].ID == "" {
			plan.WeeklyGoals[i].ID = uuid.NewString()
		}
	}

	if plan.DailyTasks == nil {
		plan.DailyTasks = []model.DailyTask{}
	}
	if plan.WeeklyGoals == nil {
		plan.WeeklyGoals = []model.WeeklyGoal{}
	}
	if plan.Recommendations == nil {
		plan.Recommendations = []string{}
	}
	return plan
}

// DefaultPlan is the fallback plan used when generation output is
// unusable.
func DefaultPlan() model.LearningPlan {
	return model.LearningPlan{
		DailyTasks:      []model.DailyTask{},
		WeeklyGoals:     []model.WeeklyGoal{},
		Recommendations: append([]string(nil), DefaultPlanRecommendations...),
	}
}
