// Command demo replays a single console checkout against the default catalog.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/storefront/internal/catalog"
	"github.com/mamadbah2/storefront/internal/domain/models"
	"github.com/mamadbah2/storefront/internal/presentation"
	checkoutsvc "github.com/mamadbah2/storefront/internal/service/checkout"
	"github.com/mamadbah2/storefront/internal/service/session"
	"github.com/mamadbah2/storefront/pkg/logger"
)

func main() {
	baseLogger := logger.Must(logger.New(os.Getenv("LOG_LEVEL")))
	defer func() { _ = baseLogger.Sync() }()

	cat, err := catalog.Seed(catalog.DefaultSeed(), nil)
	if err != nil {
		baseLogger.Fatal("failed to seed catalog", zap.Error(err))
	}

	customer, err := models.NewCustomer("Sondos", decimal.NewFromInt(1000))
	if err != nil {
		baseLogger.Fatal("invalid customer", zap.Error(err))
	}

	svc := checkoutsvc.NewService(checkoutsvc.Options{
		ShippingFee: checkoutsvc.DefaultShippingFee,
		VerifyStock: true,
	}, baseLogger.Named("svc.checkout"))
	sess := session.New(cat, customer, svc, baseLogger.Named("svc.session"))

	for _, line := range []struct {
		name     string
		quantity int
	}{
		{"Cheese 200g", 2},
		{"Biscuits 700g", 1},
		{"Mobile scratch card", 1},
	} {
		if err := sess.AddToCart(line.name, line.quantity); err != nil {
			fmt.Println(presentation.Rejection(err))
		}
	}

	receipt, err := sess.Checkout(context.Background())
	if err != nil {
		fmt.Println(presentation.Rejection(err))
		os.Exit(1)
	}

	if err := presentation.WriteReceipt(os.Stdout, *receipt); err != nil {
		baseLogger.Fatal("failed to print receipt", zap.Error(err))
	}
}
