package domain

import "time"

// GameRecord is one finished coaching game as archived locally.
type GameRecord struct {
	ID           int64
	SessionUUID  string
	Side         string
	Difficulty   string
	Result       string
	MovesUCI     []string
	ThinkTimesMs []int
	StartedAt    time.Time
	EndedAt      time.Time
	Duration     time.Duration
}
