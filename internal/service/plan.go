package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"tutorgate-ai/internal/cache"
	"tutorgate-ai/internal/fingerprint"
	"tutorgate-ai/internal/llm"
	"tutorgate-ai/internal/model"
	"tutorgate-ai/internal/prompt"
	"tutorgate-ai/internal/structurer"
)

const examDateLayout = "2006-01-02"

// PlanService generates personalized learning plans and derives
// knowledge gaps from past test results.
type PlanService struct {
	llm    llm.Client
	cache  cache.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewPlanService(client llm.Client, store cache.Store, logger *zap.Logger) *PlanService {
	return &PlanService{llm: client, cache: store, logger: logger.Named("plan"), now: time.Now}
}

// GeneratePlan builds a study plan for the request, served from cache
// when the same plan shape was generated within the plan TTL.
// Unparseable upstream output degrades to the default plan rather than
// failing.
func (s *PlanService) GeneratePlan(ctx context.Context, req *model.LearningPlanRequest) (*model.LearningPlan, error) {
	key := fingerprint.LearningPlanKey(req.StudentID, req.Subjects, req.ExamType, req.PlanningDays)

	if raw, ok := s.cache.Get(ctx, key); ok {
		var plan model.LearningPlan
		if err := json.Unmarshal(raw, &plan); err == nil {
			s.logger.Info("learning plan cache hit", zap.String("student_id", req.StudentID))
			return &plan, nil
		}
		s.logger.Warn("discarding undecodable cached plan", zap.String("key", key))
	}

	numWeeklyGoals := req.PlanningDays / 7
	if numWeeklyGoals < 2 {
		numWeeklyGoals = 2
	}

	s.logger.Info("generating learning plan",
		zap.String("student_id", req.StudentID),
		zap.Strings("subjects", req.Subjects),
		zap.Int("planning_days", req.PlanningDays),
	)

	start := time.Now()
	content, err := s.llm.Complete(ctx, &llm.CompletionRequest{
		Messages: prompt.LearningPlan(prompt.PlanParams{
			StudentLevel:   req.StudentLevel,
			Subjects:       req.Subjects,
			ExamType:       req.ExamType,
			ExamDate:       req.ExamDate,
			DaysUntilExam:  s.daysUntilExam(req.ExamDate),
			KnowledgeGaps:  formatKnowledgeGaps(req.KnowledgeGaps),
			Performance:    formatPerformance(req.CurrentPerformance),
			PlanningDays:   req.PlanningDays,
			NumWeeklyGoals: numWeeklyGoals,
		}),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	observeGeneration("learning_plan", start, err)
	if err != nil {
		return nil, fmt.Errorf("generate learning plan: %w", err)
	}

	plan := structurer.Plan(content)

	if b, err := json.Marshal(plan); err == nil {
		s.cache.Set(ctx, key, b, cache.LearningPlanTTL)
	}
	return &plan, nil
}

// AnalyzeKnowledgeGaps derives weak topics from past test results. A
// topic is counted once per incorrectly answered question; gaps are
// ordered by severity, then by descending error count.
func (s *PlanService) AnalyzeKnowledgeGaps(req *model.AnalyzeGapsRequest) []model.KnowledgeGap {
	gaps := []model.KnowledgeGap{}
	if len(req.TestResults) == 0 {
		return gaps
	}

	for _, subject := range req.Subjects {
		errorCounts := map[string]int{}
		var topicOrder []string

		for _, result := range req.TestResults {
			if !strings.EqualFold(result.Subject, subject) {
				continue
			}
			for _, qr := range result.DetailedResults {
				if qr.Correct {
					continue
				}
				topic := qr.Topic
				if topic == "" {
					topic = "Unknown"
				}
				if _, seen := errorCounts[topic]; !seen {
					topicOrder = append(topicOrder, topic)
				}
				errorCounts[topic]++
			}
		}

		for _, topic := range topicOrder {
			gaps = append(gaps, model.KnowledgeGap{
				Subject:    subject,
				Topic:      topic,
				Severity:   gapSeverity(errorCounts[topic]),
				ErrorCount: errorCounts[topic],
			})
		}
	}

	severityRank := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(gaps, func(i, j int) bool {
		if severityRank[gaps[i].Severity] != severityRank[gaps[j].Severity] {
			return severityRank[gaps[i].Severity] < severityRank[gaps[j].Severity]
		}
		return gaps[i].ErrorCount > gaps[j].ErrorCount
	})

	s.logger.Info("identified knowledge gaps",
		zap.String("student_id", req.StudentID),
		zap.Int("gaps", len(gaps)),
	)
	return gaps
}

func gapSeverity(errorCount int) string {
	switch {
	case errorCount >= 3:
		return "high"
	case errorCount >= 2:
		return "medium"
	default:
		return "low"
	}
}

func (s *PlanService) daysUntilExam(examDate string) string {
	if examDate == "" {
		return "Not specified"
	}
	date, err := time.Parse(examDateLayout, examDate)
	if err != nil {
		return "Not specified"
	}

	days := int(date.Sub(s.now()).Hours() / 24)
	if days < 0 {
		return "Exam has passed"
	}
	return strconv.Itoa(days)
}

func formatKnowledgeGaps(gaps []model.KnowledgeGap) string {
	if len(gaps) == 0 {
		return "No specific knowledge gaps identified. Focus on comprehensive coverage."
	}

	if len(gaps) > 10 {
		gaps = gaps[:10]
	}

	lines := make([]string, 0, len(gaps))
	for _, gap := range gaps {
		severity := gap.Severity
		if severity == "" {
			severity = "medium"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (Severity: %s, Errors: %d)",
			orUnknown(gap.Subject), orUnknown(gap.Topic), severity, gap.ErrorCount))
	}
	return strings.Join(lines, "\n")
}

func formatPerformance(perf *model.Performance) string {
	if perf == nil {
		return "No performance data available. Assume beginner level."
	}

	var lines []string
	if perf.OverallScore != nil {
		lines = append(lines, fmt.Sprintf("Overall Score: %g%%", *perf.OverallScore))
	}
	if len(perf.SubjectScores) > 0 {
		lines = append(lines, "\nSubject Scores:")
		subjects := make([]string, 0, len(perf.SubjectScores))
		for subject := range perf.SubjectScores {
			subjects = append(subjects, subject)
		}
		sort.Strings(subjects)
		for _, subject := range subjects {
			lines = append(lines, fmt.Sprintf("- %s: %g%%", subject, perf.SubjectScores[subject]))
		}
	}
	if perf.TestsCompleted != nil {
		lines = append(lines, fmt.Sprintf("\nTests Completed: %d", *perf.TestsCompleted))
	}
	if perf.StudyTime != nil {
		lines = append(lines, fmt.Sprintf("Total Study Time: %d minutes", *perf.StudyTime))
	}

	if len(lines) == 0 {
		return "Limited performance data available."
	}
	return strings.Join(lines, "\n")
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
