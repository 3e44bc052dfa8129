package model

// Business 企业表 — 对应 businesses
type Business struct {
	BusinessID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"business_id"`
	Name       string `gorm:"type:varchar(200);not null"                     json:"name"`
	Country    string `gorm:"type:varchar(100);not null;default:'France'"    json:"country"`
	City       string `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	PostalCode string `gorm:"type:varchar(20)"                               json:"postal_code,omitempty"`
	Address    string `gorm:"type:varchar(255)"                              json:"address,omitempty"`
	Additional string `gorm:"type:varchar(255)"                              json:"additional,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Business) TableName() string { return "businesses" }
