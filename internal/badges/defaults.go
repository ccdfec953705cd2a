package badges

const (
	KeyFirstLesson     = "first_lesson"
	KeyStreak3         = "streak_3"
	KeyStreak7         = "streak_7"
	KeyStreak30        = "streak_30"
	KeyPerfectScore    = "perfect_score"
	KeyAccuracyMaster  = "accuracy_master"
	KeySocialSharer    = "social_sharer"
	KeyCommunityStar   = "community_star"
	KeyAITutorFan      = "ai_tutor_fan"
	KeyProblemSolver   = "problem_solver"
	KeySubjectExplorer = "subject_explorer"
	KeyEarlyBird       = "early_bird"
	KeyNightOwl        = "night_owl"
	KeySpeedLearner    = "speed_learner"
)

func streakAtLeast(days int) func(Snapshot) bool {
	return func(s Snapshot) bool { return s.MaxStreakDays >= days }
}

// Default builds the canonical catalog. Badges without a numeric threshold
// (community_star, ai_tutor_fan, early_bird, night_owl, speed_learner) carry no
// predicate and are only granted through a manual award.
func Default() *Catalog {
	c, err := NewCatalog(
		Badge{
			Key:         KeyFirstLesson,
			Name:        "First Steps",
			Description: "Complete your very first lesson",
			Icon:        "🎯",
			Points:      10,
			Category:    CategoryMilestone,
			Requirement: "Attempt at least one question",
			Eligible:    func(s Snapshot) bool { return s.TotalAttempted >= 1 },
		},
		Badge{
			Key:         KeyStreak3,
			Name:        "On a Roll",
			Description: "Learn three days in a row",
			Icon:        "🔥",
			Points:      25,
			Category:    CategoryStreak,
			Requirement: "3-day streak",
			Eligible:    streakAtLeast(3),
		},
		Badge{
			Key:         KeyStreak7,
			Name:        "Week Warrior",
			Description: "Learn seven days in a row",
			Icon:        "⚡",
			Points:      50,
			Category:    CategoryStreak,
			Requirement: "7-day streak",
			Eligible:    streakAtLeast(7),
		},
		Badge{
			Key:         KeyStreak30,
			Name:        "Unstoppable",
			Description: "Learn thirty days in a row",
			Icon:        "🏆",
			Points:      200,
			Category:    CategoryStreak,
			Requirement: "30-day streak",
			Eligible:    streakAtLeast(30),
		},
		Badge{
			Key:         KeyPerfectScore,
			Name:        "Perfectionist",
			Description: "Answer every question in a lesson correctly",
			Icon:        "💯",
			Points:      30,
			Category:    CategoryPerformance,
			Requirement: "100% on a lesson",
			Eligible:    func(s Snapshot) bool { return s.PerfectLessonRecorded },
		},
		Badge{
			Key:         KeyAccuracyMaster,
			Name:        "Accuracy Master",
			Description: "Score 90% or better on a lesson of at least ten questions",
			Icon:        "🎓",
			Points:      75,
			Category:    CategoryPerformance,
			Requirement: "90% accuracy over 10+ questions",
			Eligible:    func(s Snapshot) bool { return s.HighAccuracyLessonCount >= 1 },
		},
		Badge{
			Key:         KeySocialSharer,
			Name:        "Social Sharer",
			Description: "Share your first piece of content with the community",
			Icon:        "📣",
			Points:      20,
			Category:    CategorySocial,
			Requirement: "Share content once",
			Eligible:    func(s Snapshot) bool { return s.SharesCount >= 1 },
		},
		Badge{
			Key:         KeyCommunityStar,
			Name:        "Community Star",
			Description: "Your shared content is loved by the community",
			Icon:        "⭐",
			Points:      100,
			Category:    CategorySocial,
			Requirement: "Granted by the EduSphere team",
		},
		Badge{
			Key:         KeyAITutorFan,
			Name:        "AI Tutor Fan",
			Description: "Learn with the AI tutor",
			Icon:        "🤖",
			Points:      40,
			Category:    CategoryFeature,
			Requirement: "Use the AI tutor",
		},
		Badge{
			Key:         KeyProblemSolver,
			Name:        "Problem Solver",
			Description: "Answer one hundred questions correctly",
			Icon:        "🧩",
			Points:      60,
			Category:    CategoryMilestone,
			Requirement: "100 correct answers",
			Eligible:    func(s Snapshot) bool { return s.TotalCorrect >= 100 },
		},
		Badge{
			Key:         KeySubjectExplorer,
			Name:        "Subject Explorer",
			Description: "Try lessons in three different subjects",
			Icon:        "🧭",
			Points:      50,
			Category:    CategoryExploration,
			Requirement: "3 subjects tried",
			Eligible:    func(s Snapshot) bool { return s.SubjectsTried >= 3 },
		},
		Badge{
			Key:         KeyEarlyBird,
			Name:        "Early Bird",
			Description: "Study before 8 AM",
			Icon:        "🌅",
			Points:      15,
			Category:    CategoryHabit,
			Requirement: "Session before 8 AM",
		},
		Badge{
			Key:         KeyNightOwl,
			Name:        "Night Owl",
			Description: "Study after 10 PM",
			Icon:        "🦉",
			Points:      15,
			Category:    CategoryHabit,
			Requirement: "Session after 10 PM",
		},
		Badge{
			Key:         KeySpeedLearner,
			Name:        "Speed Learner",
			Description: "Finish several lessons in a single sitting",
			Icon:        "🚀",
			Points:      40,
			Category:    CategoryIntensity,
			Requirement: "Multiple lessons in one session",
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}
