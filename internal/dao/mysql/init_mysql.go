package mysql

import (
	"fmt"

	"auditlink_chat/internal/config"
	"auditlink_chat/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init opens the MySQL connection, migrates the schema and returns the
// repository aggregate. Fatal on any failure; the service cannot run
// without its store.
func Init() *Repositories {
	conf := config.GetConfig()

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("mysql connect failed", zap.Error(err))
	}

	err = db.AutoMigrate(
		&model.UserInfo{},
		&model.Thread{},
		&model.Message{},
	)
	if err != nil {
		zap.L().Fatal("mysql automigrate failed", zap.Error(err))
	}

	return NewRepositories(db)
}
