package models

import "time"

type Patron struct {
	ID          uint      `gorm:"primaryKey;column:id" json:"id"`
	Name        string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	PhoneNumber string    `gorm:"column:phone_number;type:varchar(20);not null" json:"phone_number"`
	Address     string    `gorm:"column:address;type:varchar(255);not null" json:"address"`
	InsertDate  time.Time `gorm:"autoCreateTime;column:insert_date" json:"insert_date"`
}

func (Patron) TableName() string { return "patrons" }
