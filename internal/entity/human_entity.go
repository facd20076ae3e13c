package entity

type Human struct {
	Id             string `gorm:"primaryKey"`
	FullName       string
	Email          string
	JobTitle       string
	OrganizationId *string `gorm:"index"`
	IsUser         bool
}

type Organization struct {
	Id          string `gorm:"primaryKey"`
	Name        string
	Description string
}
