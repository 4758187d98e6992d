package app

import (
	"gorm.io/gorm"

	"github.com/buildshare/blueprint-backend/internal/logger"
	"github.com/buildshare/blueprint-backend/internal/repos"
)

type Repos struct {
	User             repos.UserRepo
	UserInfo         repos.UserInfoRepo
	Blueprint        repos.BlueprintRepo
	BlueprintVersion repos.BlueprintVersionRepo
	Comment          repos.CommentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:             repos.NewUserRepo(db, log),
		UserInfo:         repos.NewUserInfoRepo(db, log),
		Blueprint:        repos.NewBlueprintRepo(db, log),
		BlueprintVersion: repos.NewBlueprintVersionRepo(db, log),
		Comment:          repos.NewCommentRepo(db, log),
	}
}
