package components

import (
	"tidebook/internal/infra/readstore"
	"tidebook/internal/infra/repository"
	"tidebook/internal/infra/uow"
	"tidebook/internal/usecase/queries"
	"tidebook/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewPoolDB,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingViewRepo)),
		),
	),
)

// NewPoolDB exposes the pool under the narrow query interface the read side
// uses; writes always go through the unit of work.
func NewPoolDB(pool *pgxpool.Pool) repository.DB {
	return pool
}
