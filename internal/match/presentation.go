package match

// Action is the affordance a client shows for a chat status.
type Action string

const (
	ActionReachOut    Action = "reach_out"
	ActionPickTime    Action = "pick_time"
	ActionAwaitPeer   Action = "awaiting_peer"
	ActionShowMeeting Action = "show_meeting"
	ActionNone        Action = "none"
)

func ActionFor(s ChatStatus) Action {
	switch s.Kind {
	case KindPlanning, KindNoResponses:
		return ActionReachOut
	case KindRespondingTo:
		return ActionPickTime
	case KindWaitingOn:
		return ActionAwaitPeer
	case KindChatScheduled:
		return ActionShowMeeting
	default:
		return ActionNone
	}
}
