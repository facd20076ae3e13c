package entity

// Config is the user configuration consulted during prompt construction.
type Config struct {
	Id              string `gorm:"primaryKey"`
	Autonomy        string
	SpokenLanguages []string `gorm:"serializer:json"`
	JargonWords     []string `gorm:"serializer:json"`
	SummaryLanguage string
}
