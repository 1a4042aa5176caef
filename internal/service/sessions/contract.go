package sessions

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Gauge интерфейс для метрики числа живых сессий (prometheus.Gauge)
type Gauge interface {
	Set(float64)
}
