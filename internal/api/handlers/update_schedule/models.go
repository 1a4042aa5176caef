package update_schedule

// UpdateScheduleRequest дата и время начала визита.
// Проверки рабочих часов, горизонта и минимального нотиса выполняются при
// переходе с шага datetime, не здесь.
type UpdateScheduleRequest struct {
	Date      string `json:"date"`      // "2026-09-15"
	StartTime string `json:"startTime"` // "10:00"
}
