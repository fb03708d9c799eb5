package gateway

import (
	"bookwyrm/pkg/api"
)

// Re-export channel plumbing types from the api package via aliases so
// call sites can stay within this package.
type Channel = api.Channel
type SignalingChannel = api.SignalingChannel
type MessageResponder = api.MessageResponder
type ChannelContext = api.ChannelContext
type UnifiedMessage = api.UnifiedMessage
type SessionContext = api.SessionContext
type MessageHandler = api.MessageHandler
