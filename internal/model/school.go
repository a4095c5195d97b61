package model

// School 学校表（租户隔离边界）— 对应 schools
type School struct {
	SchoolID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"school_id"`
	Name     string `gorm:"type:varchar(200);not null"                     json:"name"`
	Timezone string `gorm:"type:varchar(50);not null;default:'Asia/Shanghai'" json:"timezone"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName 指定表名
func (School) TableName() string { return "schools" }
