package schemas

// Resource kinds are the leaf segment of a partition path. The names match
// the collection names the hosted clients already use.
const (
	KindChats     string = "chats"
	KindSnapshots string = "competencySnapshots"
	KindMentors   string = "mentorProfiles"
	KindAnalytics string = "analytics"
	KindKnowledge string = "knowledgeBase"
)

// UserKinds are the resource kinds a session subscribes to when its
// identity resolves.
var UserKinds = []string{KindChats, KindSnapshots, KindMentors, KindAnalytics}

// Competency keys for snapshot ratings. Ratings are integers 0..5.
const (
	CompetencyStrategicVision    string = "strategicVision"
	CompetencyCommunication      string = "communication"
	CompetencyTeamLeadership     string = "teamLeadership"
	CompetencyEthicalPractice    string = "ethicalPractice"
	CompetencyConflictResolution string = "conflictResolution"
)

// CompetencyKeys lists every rated competency, in presentation order.
var CompetencyKeys = []string{
	CompetencyStrategicVision,
	CompetencyCommunication,
	CompetencyTeamLeadership,
	CompetencyEthicalPractice,
	CompetencyConflictResolution,
}

const (
	RatingMin = 0
	RatingMax = 5
)
