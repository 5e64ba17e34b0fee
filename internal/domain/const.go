package domain

const (
	RequesterIdCtxKey         = "sw-requesterId"
	RequesterPrivilegedCtxKey = "sw-requesterPrivileged"
	RequesterAuthedCtxKey     = "sw-requesterAuthenticated"
)

const (
	RequesterIdHeader = "sw-requester-id"
)
