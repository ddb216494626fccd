package di_test

import "github.com/sghaida/remoteresource/di"

// Shared test types.

type Store struct{ DSN string }

type Logger struct{ Level string }

type Orders struct {
	Store  *Store
	Logger *Logger
}

var (
	storeKey  = di.Key("store")
	loggerKey = di.Key("logger")
)

func newStore() *di.Service[Store] {
	return di.Init(func() *Store { return &Store{DSN: "postgres://"} })
}

func newLogger() *di.Service[Logger] {
	return di.Init(func() *Logger { return &Logger{Level: "info"} })
}

func newOrders() *di.Service[Orders] {
	return di.Init(func() *Orders { return &Orders{} })
}

func bindStore(o *Orders, s *Store)   { o.Store = s }
func bindLogger(o *Orders, l *Logger) { o.Logger = l }
