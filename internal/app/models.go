package app

import (
	"coffeechat-scheduler/internal/match"
	"coffeechat-scheduler/internal/schedule"
)

type createSelectionReq struct {
	Mode    string `json:"mode" binding:"required,oneof=multiple single"`
	MatchID string `json:"match_id"`
}

// slotReq is bound from JSON on POST and from the query string on DELETE.
type slotReq struct {
	Day  string `json:"day" form:"day" binding:"required,weekday"`
	Time string `json:"time" form:"time" binding:"required,clock"`
}

type reachOutReq struct {
	Availabilities []schedule.DaySchedule `json:"availabilities"`
}

// MatchView is a match as one viewer sees it.
type MatchView struct {
	match.Match
	Pair       *match.User      `json:"pair,omitempty"`
	ChatStatus match.ChatStatus `json:"chat_status"`
	Action     match.Action     `json:"action"`
	Slots      []schedule.Slot  `json:"slots"`
}

type saveResult struct {
	Session SessionView `json:"session"`
	Match   *MatchView  `json:"match,omitempty"`
	Saved   bool        `json:"availability_saved"`
}
