package delete_checkout

import (
	"github.com/m04kA/SMC-CheckoutService/internal/service/sessions"
)

type SessionRegistry interface {
	Get(id string) (*sessions.Session, error)
	Delete(id string)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
