package services

import (
	"time"

	"sales-order-service/internal/domain"
)

const (
	TestAdmin       = "admin"
	TestSalesperson = "alice"
	TestOther       = "bob"
)

func AdminActor() domain.Actor {
	return domain.Actor{Role: domain.RoleAdmin, Username: TestAdmin, Name: TestAdmin}
}

func SalespersonActor(username string) domain.Actor {
	return domain.Actor{Role: domain.RoleSalesperson, Username: username, Name: username}
}

// TickingClock returns a clock that advances one second per call.
func TickingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}
