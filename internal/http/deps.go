package http

import (
	"github.com/etuitionbd/server/internal/observability"
	"github.com/etuitionbd/server/internal/repo/memory"
	"github.com/etuitionbd/server/internal/repo/mongodb"
)

// MemoryDeps backs every route with process-local maps. Used by tests and STORAGE_DRIVER=memory.
func MemoryDeps() Deps {
	return Deps{
		Users:        memory.NewUsersRepo(),
		Tuitions:     memory.NewTuitionsRepo(),
		Applications: memory.NewApplicationsRepo(),
		Payments:     memory.NewPaymentsRepo(),
	}
}

func MongoDeps(store *mongodb.Store, prom *observability.Prom) Deps {
	return Deps{
		Users:        mongodb.NewUsersRepo(store),
		Tuitions:     mongodb.NewTuitionsRepo(store),
		Applications: mongodb.NewApplicationsRepo(store),
		Payments:     mongodb.NewPaymentsRepo(store),
		Ready:        store,
		Prom:         prom,
	}
}

var (
	_ UserRepo        = (*memory.UsersRepo)(nil)
	_ TuitionRepo     = (*memory.TuitionsRepo)(nil)
	_ ApplicationRepo = (*memory.ApplicationsRepo)(nil)
	_ PaymentRepo     = (*memory.PaymentsRepo)(nil)

	_ UserRepo        = (*mongodb.UsersRepo)(nil)
	_ TuitionRepo     = (*mongodb.TuitionsRepo)(nil)
	_ ApplicationRepo = (*mongodb.ApplicationsRepo)(nil)
	_ PaymentRepo     = (*mongodb.PaymentsRepo)(nil)
)
