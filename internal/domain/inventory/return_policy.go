package inventory

import "time"

// ReturnWindow resultado de evaluar el plazo de devolución de una venta.
type ReturnWindow struct {
	Eligible      bool
	DaysRemaining int
	DelayDays     int
	Deadline      time.Time
	Message       string
}

// CheckReturnWindow plazo = fecha de venta + delayDays. Con delayDays <= 0 ninguna venta es
// devolvible.
func CheckReturnWindow(soldAt, now time.Time, delayDays int) ReturnWindow {
	if delayDays <= 0 {
		return ReturnWindow{
			Eligible:  false,
			DelayDays: delayDays,
			Deadline:  soldAt,
			Message:   "las devoluciones están desactivadas para esta agencia",
		}
	}
	deadline := soldAt.Add(time.Duration(delayDays) * 24 * time.Hour)
	if now.After(deadline) {
		return ReturnWindow{
			Eligible:  false,
			DelayDays: delayDays,
			Deadline:  deadline,
			Message:   "plazo de devolución vencido",
		}
	}
	return ReturnWindow{
		Eligible:      true,
		DaysRemaining: int(deadline.Sub(now).Hours() / 24),
		DelayDays:     delayDays,
		Deadline:      deadline,
		Message:       "venta elegible para devolución",
	}
}
