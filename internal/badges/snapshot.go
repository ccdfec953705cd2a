package badges

// Snapshot is the aggregate view of a user's activity that eligibility
// predicates are evaluated against. It is rebuilt on every evaluation.
type Snapshot struct {
	TotalAttempted          int  `json:"total_attempted"`
	TotalCorrect            int  `json:"total_correct"`
	MaxStreakDays           int  `json:"max_streak_days"`
	SubjectsTried           int  `json:"subjects_tried"`
	PerfectLessonRecorded   bool `json:"perfect_lesson_recorded"`
	HighAccuracyLessonCount int  `json:"high_accuracy_lesson_count"`
	SharesCount             int  `json:"shares_count"`
	TotalLikesReceived      int  `json:"total_likes_received"`
}
