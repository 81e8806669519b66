package prompt

// System prompts for the generation flows.
const (
	systemExplanation = `You are an expert AI tutor specializing in explaining complex topics in simple, age-appropriate terms.
Your goal is to help students understand concepts clearly and build their confidence.

Guidelines:
- Adapt your language complexity to the student's grade level
- Use analogies and real-world examples
- Break down complex ideas into smaller, digestible parts
- Be encouraging and supportive
- Include step-by-step explanations when appropriate
- Highlight key concepts and important points`

	systemSimplification = `You are an expert at explaining complex topics to young students (grades 1-5).
Use simple language, fun analogies, and relatable examples. Avoid jargon and technical terms.
Make learning feel like an adventure!`

	systemAdvanced = `You are an expert tutor for advanced high school students (grades 9-12).
Provide detailed, rigorous explanations with proper terminology. Include theoretical foundations,
practical applications, and connections to advanced concepts.`

	systemExampleGeneration = `You are an expert at creating educational examples that illustrate concepts clearly.
Your examples should be practical, relatable, and appropriate for the student's level.

Guidelines:
- Create examples that connect to real-world situations
- Start with simple examples and build complexity
- Show step-by-step solutions
- Explain the reasoning behind each step
- Make examples engaging and memorable`

	systemConversational = `You are an AI tutor engaged in a conversation with a student.
Maintain context from previous messages and build upon what has been discussed.
Be patient, encouraging, and adapt your explanations based on the student's questions.`

	systemQuestionGeneration = `You are an expert educational content creator. Generate high-quality test questions in valid JSON format.`

	systemPlanGeneration = `You are an expert educational planner specializing in creating personalized learning plans.
Your goal is to analyze student knowledge gaps and create effective, achievable daily study plans.

Guidelines:
- Create realistic daily tasks based on available time
- Prioritize weak areas while maintaining overall progress
- Balance different types of activities (lessons, practice, tests)
- Set achievable weekly goals
- Consider exam timeline and urgency
- Adapt difficulty to student level
- Include variety to maintain engagement`
)

// User message templates. Placeholders are filled with fmt.Sprintf.
const (
	userExplanation = `Please explain the following topic to a student in grade %d:

Topic: %s
Subject: %s
%s

Provide a clear, comprehensive explanation that:
1. Introduces the concept in simple terms
2. Explains why it's important or useful
3. Breaks down the key components
4. Includes 2-3 practical examples
5. Suggests related topics for further learning

Format your response as a structured explanation with clear sections.`

	userSimplification = `Explain this topic to a grade %d student in the simplest way possible:

Topic: %s
Subject: %s

Use:
- Very simple words
- Fun comparisons (like comparing things to toys, games, or everyday objects)
- Short sentences
- Encouraging language
- Emojis if helpful (sparingly)`

	userAdvanced = `Provide an advanced explanation of this topic for a grade %d student:

Topic: %s
Subject: %s
%s

Include:
1. Formal definition and theoretical foundation
2. Mathematical or scientific principles (if applicable)
3. Real-world applications and significance
4. Common misconceptions and how to avoid them
5. Connections to advanced topics
6. Practice problems or thought experiments`

	userExampleGeneration = `Create %d detailed example(s) for the following topic:

Topic: %s
Subject: %s
Student Level: Grade %d
%s

For each example:
1. Provide a clear title
2. Present the problem or scenario
3. Show step-by-step solution
4. Explain the reasoning
5. Highlight key takeaways

Make examples progressively more challenging if multiple examples are requested.`

	userConversational = `%s

Student's current question: %s

Provide a helpful response that addresses their question while maintaining the conversation context.`

	userQuestionGeneration = `Generate %d %s questions about %s%s.

Topics to cover: %s
Difficulty level: %d/10

%s

Return ONLY a valid JSON array of questions. Example format:
[
  {
    "content": "Question text here?",
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correct_answer": "Option A",
    "explanation": "Explanation here",
    "topic": "Topic name"
  }
]

Make questions clear, educational, and appropriate for the difficulty level.`

	userPlanGeneration = `Create a personalized learning plan with the following parameters:

Student Information:
- Grade Level: %d
- Subjects: %s
- Exam Type: %s
- Exam Date: %s
- Days Until Exam: %s

Knowledge Gaps Analysis:
%s

Current Performance:
%s

Requirements:
- Generate daily tasks for the next %d days
- Each task should have: title, subject, type (lesson/test/practice), estimated time (minutes), priority (high/medium/low), description
- Create %d weekly goals with clear targets
- Focus on addressing knowledge gaps while maintaining overall progress
- Ensure tasks are age-appropriate and achievable

Return your response as a JSON object with this structure:
{
  "daily_tasks": [
    {
      "title": "Task title",
      "subject": "Subject name",
      "type": "lesson|test|practice",
      "estimatedTime": minutes,
      "priority": "high|medium|low",
      "dueDate": "YYYY-MM-DD",
      "description": "Brief description"
    }
  ],
  "weekly_goals": [
    {
      "title": "Goal title",
      "description": "Detailed description",
      "targetDate": "YYYY-MM-DD",
      "progress": 0
    }
  ],
  "recommendations": ["recommendation1", "recommendation2"]
}`
)

// Per-type output format instructions for question generation.
const (
	formatMultipleChoice = `Each question should have:
- "content": the question text
- "options": array of 4 answer choices
- "correct_answer": the correct option (exact match from options)
- "explanation": why the answer is correct
- "topic": which topic this question covers`

	formatTrueFalse = `Each question should have:
- "content": the statement to evaluate
- "options": ["True", "False"]
- "correct_answer": either "True" or "False"
- "explanation": why the answer is correct
- "topic": which topic this question covers`

	formatOpenEnded = `Each question should have:
- "content": the question text
- "correct_answer": a sample correct answer or key points
- "explanation": what makes a good answer
- "topic": which topic this question covers`
)
