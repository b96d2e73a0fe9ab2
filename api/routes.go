package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/account"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/admin"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/investment"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/loan"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/risk"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transfer"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
)

const shutdownTimeout = 15 * time.Second

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Storage  *storage.Storage
	Service  *service.Service
	Verifier *auth.Verifier
}

// Handler builds the full HTTP surface: /status plus the versioned API.
func (r *Rest) Handler() http.Handler {
	mux := http.NewServeMux()

	statusHandler := status.NewHandler(r.Storage)
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))

	config := huma.DefaultConfig("Ledger Server", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}
	config.Security = []map[string][]string{{"bearer": {}}}

	api := humago.New(mux, config)
	api.UseMiddleware(logging.Middleware(r.Logger), r.authenticate(api))

	account.NewCreateAccountHandler(r.Service.Account).Register(api)
	account.NewGetAccountHandler(r.Service.Account).Register(api)
	account.NewListAccountsHandler(r.Service.Account).Register(api)

	transfer.NewCreateTransferHandler(r.Service.Transfer).Register(api)
	transfer.NewListEntriesHandler(r.Service.Transfer).Register(api)

	loan.NewRequestLoanHandler(r.Service.Loan).Register(api)
	loan.NewReviewLoanHandler(r.Service.Loan).Register(api)
	loan.NewListLoansHandler(r.Service.Loan).Register(api)

	investment.NewCreateInvestmentHandler(r.Service.Investment).Register(api)
	investment.NewSettleInvestmentHandler(r.Service.Investment).Register(api)
	investment.NewListInvestmentsHandler(r.Service.Investment).Register(api)

	risk.NewDetectRiskHandler(r.Service.Risk).Register(api)

	admin.NewStatsHandler(r.Service.Stats).Register(api)

	return mux
}

// authenticate resolves the bearer token into an Identity. Requests without a token pass
// through unauthenticated, an invalid token is refused outright.
func (r *Rest) authenticate(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if header == "" || r.Verifier == nil {
			next(ctx)
			return
		}

		id, err := r.Verifier.Verify(header)
		if err != nil {
			if logData := logging.GetLogData(ctx.Context()); logData != nil {
				logData.AddData("authError", err.Error())
			}
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		if logData := logging.GetLogData(ctx.Context()); logData != nil {
			logData.AddData("callerID", id.AccountID.String())
			logData.AddData("callerRole", string(id.Role))
		}
		next(huma.WithContext(ctx, auth.WithIdentity(ctx.Context(), id)))
	}
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Handler(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.Logger.WithError(err).Error("HttpServer.Serve.listen error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
