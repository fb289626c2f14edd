package components

import (
	"tidebook/internal/infra/gateway"
	"tidebook/internal/pkg/clock"
	"tidebook/internal/pkg/config"
	"tidebook/internal/usecase"
	"tidebook/internal/usecase/commands"
	"tidebook/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseValidatorsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		NewRazorpayGateway,
		fx.As(new(commands.PaymentGateway)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewHoldCommands,
		commands.NewPaymentCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewRazorpayGateway(cfg config.Config) *gateway.RazorpayClient {
	return gateway.NewRazorpayClient(cfg.Razorpay)
}
