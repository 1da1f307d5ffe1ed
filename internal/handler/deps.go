package handler

import (
	"rwchat/internal/app/admission"
	"rwchat/internal/app/chat"
	"rwchat/internal/app/user"
	"rwchat/internal/configs"
)

// AppDeps groups the long-lived components the HTTP layer dispatches to.
type AppDeps struct {
	Coordinator *chat.Coordinator
	Gate        *admission.Gate
	Profiles    *chat.ProfileExchange
	Directory   user.Directory
	Config      *configs.AppConfig
}
