package types

// TimelineEventType categorizes entries in a case's append-only timeline
type TimelineEventType string

const (
	TimelineMessageReceived TimelineEventType = "message_received"
	TimelineAgentResponded  TimelineEventType = "agent_responded"
	TimelineEscalated       TimelineEventType = "escalated"
	TimelineResolved        TimelineEventType = "resolved"
	TimelinePlaybookStep    TimelineEventType = "playbook_step"
	TimelineVisualSession   TimelineEventType = "visual_session"
)

// String returns the string representation of the timeline event type
func (t TimelineEventType) String() string {
	return string(t)
}
