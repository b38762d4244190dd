package models

import "time"

// defining the schema
type Book struct {
	ID              uint      `gorm:"primaryKey;column:id" json:"id"`
	Title           string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Author          string    `gorm:"column:author;type:varchar(255)" json:"author"`
	Pages           int       `gorm:"column:pages;type:integer" json:"pages"`
	Price           float64   `gorm:"column:price;type:float" json:"price"`
	PublicationYear int       `gorm:"column:publication_year;type:integer" json:"publication_year"`
	Available       bool      `gorm:"column:available;not null;default:true" json:"available"`
	InsertDate      time.Time `gorm:"autoCreateTime;column:insert_date" json:"insert_date"`
}

func (Book) TableName() string { return "books" }
