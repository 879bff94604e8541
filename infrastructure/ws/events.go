package ws

// Wire-level event names. Inbound events arrive from clients over the
// socket; outbound events are pushed by the server, either by the event
// router itself or by the HTTP layer through the Emitter.
const (
	// Inbound
	JoinChatEvent   = "joinChat"
	TypingEvent     = "typing"
	StopTypingEvent = "stopTyping"

	// Outbound
	ConnectedEvent       = "connected"
	SocketErrorEvent     = "socketError"
	NewChatEvent         = "newChat"
	MessageReceivedEvent = "messageReceived"
	MessageDeletedEvent  = "messageDeleted"
	UpdateGroupNameEvent = "updateGroupName"
	LeaveChatEvent       = "leaveChat"
)
