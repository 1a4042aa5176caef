package create_checkout

import (
	"github.com/m04kA/SMC-CheckoutService/internal/service/sessions"
)

type SessionRegistry interface {
	Create() *sessions.Session
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
