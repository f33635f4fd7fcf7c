package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID 插入前为空主键生成 uuid
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// All 需要迁移的全部模型
func All() []any {
	return []any{
		&User{},
		&Community{},
		&Membership{},
		&Post{},
		&Vote{},
	}
}

// Migrate 自动建表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
