package model

import "time"

// Question keeps the mixed-case column names of the source dataset headers,
// so SQL against the table must quote them ("Show Number", "Air Date", ...).
type Question struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ShowNumber int       `gorm:"column:Show Number;not null"`
	AirDate    time.Time `gorm:"column:Air Date;type:date;not null"`
	Round      string    `gorm:"column:Round;type:varchar(32);not null"`
	Category   string    `gorm:"column:Category;type:varchar(255);not null"`
	Value      *int      `gorm:"column:Value"`
	Question   string    `gorm:"column:Question;type:text;not null"`
	Answer     string    `gorm:"column:Answer;type:text;not null"`
}

func (Question) TableName() string {
	return "questions"
}
