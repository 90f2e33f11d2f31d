package database

import "time"

// DayLayout is the day-granularity key letters are scheduled and looked up by.
const DayLayout = "02/01/2006"

// Letter is a text written by a user and held back until its delivery date.
type Letter struct {
	ID        int64     `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Text      string    `db:"text"`
	Date      string    `db:"delivery_date"` // DayLayout in the letters time zone
	CreatedAt time.Time `db:"created_at"`
}
