package models

type Category struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Icon         string `gorm:"size:50;default:'💡'" json:"icon"`
	Color        string `gorm:"size:7;default:'#6366f1'" json:"color"`
	IsPredefined bool   `gorm:"not null;default:false" json:"is_predefined"`
}
