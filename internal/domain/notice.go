package domain

import "time"

type NoticeKind string

const (
	NoticeSeatUnavailable NoticeKind = "seat_unavailable"
	NoticeSeatLost        NoticeKind = "seat_lost"
	NoticeHoldExpired     NoticeKind = "hold_expired"
	NoticeHoldFailed      NoticeKind = "hold_failed"
	NoticeReleaseFailed   NoticeKind = "release_failed"
	NoticeExtendFailed    NoticeKind = "extend_failed"
)

type Notice struct {
	Kind    NoticeKind
	SeatID  string
	Message string
	At      time.Time
}
