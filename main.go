package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"finmarket/application/order"
	"finmarket/application/portfolio"
	"finmarket/cmd"
	"finmarket/config"
	orderdomain "finmarket/domain/order"
	"finmarket/domain/shared"
	"finmarket/infrastructure/caching"
	"finmarket/infrastructure/identity"

	"github.com/google/uuid"
)

// The quickstart walks one trading day through the framework: a stock is
// listed, read twice (database then cache), repriced (which evicts it), and an
// order is placed and filled. Run it against a local MySQL; enable Redis in
// the config to see the same flow on a shared cache.
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := identity.WithActor(context.Background(), "quickstart")
	app, err := cmd.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("build application: %v", err)
	}
	defer app.Close()

	if err := run(ctx, app); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, app *cmd.App) error {
	// List a stock.
	created := app.Portfolios.RegisterStock(ctx, portfolio.StockRequest{
		Ticker:      "ASML",
		CompanyName: "ASML Holding",
		Sector:      "Technology",
		Price:       70000,
		MarketCap:   280_000_000,
	})
	if !created.IsSuccess() {
		return fmt.Errorf("register stock: %+v", created.Notifications)
	}
	stockID := uuid.MustParse(created.Value.ID)
	fmt.Printf("listed %s at %s\n", created.Value.Ticker, created.Value.Price)

	// Read it twice and show where each answer came from.
	recCtx, recorder := caching.WithRecorder(ctx)
	app.Portfolios.GetStock(recCtx, stockID)
	app.Portfolios.GetStock(recCtx, stockID)
	for _, access := range recorder.Accesses() {
		fmt.Printf("read %-40s from %s\n", access.Key, access.Source)
	}

	// Reprice; the commit evicts the cached stock.
	repriced := app.Portfolios.UpdateMarketData(ctx, stockID, 71250, 285_000_000)
	if !repriced.IsSuccess() {
		return fmt.Errorf("update market data: %+v", repriced.Notifications)
	}
	fmt.Printf("repriced to %s (version %d)\n", repriced.Value.Price, repriced.Value.Version)

	recCtx, recorder = caching.WithRecorder(ctx)
	app.Portfolios.GetStock(recCtx, stockID)
	for _, access := range recorder.Accesses() {
		fmt.Printf("read after reprice from %s\n", access.Source)
	}

	// Place and fill an order.
	placed := app.Orders.PlaceOrder(ctx, order.PlaceOrderRequest{
		CustomerID: "customer-1",
		Type:       "BUY",
		Items:      []order.ItemRequest{{Ticker: "ASML", Quantity: 2, Price: 71250}},
	})
	if !placed.IsSuccess() {
		return fmt.Errorf("place order: %+v", placed.Notifications)
	}
	orderID := uuid.MustParse(placed.Value.ID)

	if res := app.Orders.OpenOrder(ctx, orderID); !res.IsSuccess() {
		return fmt.Errorf("open order: %+v", res.Notifications)
	}
	filled := app.Orders.FillOrder(ctx, orderID)
	if !filled.IsSuccess() {
		return fmt.Errorf("fill order: %+v", filled.Notifications)
	}
	fmt.Printf("order %s filled, total %s\n", filled.Value.ID, filled.Value.TotalValue)

	// Register the venue.
	venue := app.Exchanges.CreateExchange(ctx, "Euronext Amsterdam", "AMS", "Netherlands")
	if !venue.IsSuccess() {
		return fmt.Errorf("create exchange: %+v", venue.Notifications)
	}
	fmt.Printf("venue %s (%s) registered\n", venue.Value.Name, venue.Value.Acronym)

	// The same order lifecycle once more, persisted as an event stream.
	sourced, err := orderdomain.New("customer-1", orderdomain.TypeSell, time.Now().Add(24*time.Hour))
	if err != nil {
		return err
	}
	if err := sourced.AddItem("ASML", 1, shared.NewMoney(71250, "EUR")); err != nil {
		return err
	}
	if err := app.SourcedOrders.Save(ctx, sourced); err != nil {
		return fmt.Errorf("append order stream: %w", err)
	}
	replayed, err := app.SourcedOrders.Load(ctx, sourced.ID)
	if err != nil {
		return fmt.Errorf("replay order stream: %w", err)
	}
	fmt.Printf("replayed order %s from %d events, status %s\n",
		replayed.ID, replayed.StreamVersion(), replayed.Status)
	return nil
}
