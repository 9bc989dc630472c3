package models

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:256;not null;index"`
	Year        int     `json:"year" gorm:"not null;index"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64  `json:"category_id,omitempty" gorm:"index"`

	// computed by the title repository on every read, never stored
	Rating *float64 `json:"rating" gorm:"->;-:migration"`

	// associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genre,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
	Reviews  []Review  `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
