package notifications

// Event type constants prevent typos in event names.
const (
	EventChallengeCreated      = "challenge_created"
	EventChallengeAccepted     = "challenge_accepted"
	EventChallengeProgress     = "challenge_progress"
	EventChallengeCompleted    = "challenge_completed"
	EventChallengeDeleted      = "challenge_deleted"
	EventFriendRequestReceived = "friend_request_received"
	EventFriendRequestAccepted = "friend_request_accepted"
	EventFriendAdded           = "friend_added"
	EventFriendRemoved         = "friend_removed"
)
